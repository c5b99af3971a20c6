package generators

// Job titles per family and level.
var titleTemplates = map[string]map[string]string{
	"JF-ENG": {
		"L1": "Software Engineer I", "L2": "Software Engineer II",
		"L3": "Senior Software Engineer", "L4": "Staff Engineer",
		"M1": "Engineering Manager", "M2": "Senior Engineering Manager",
		"D1": "Director of Engineering", "D2": "Senior Director of Engineering",
		"VP": "VP of Engineering", "CX": "CTO",
	},
	"JF-PROD": {
		"L1": "Associate Product Manager", "L2": "Product Manager",
		"L3": "Senior Product Manager", "L4": "Principal Product Manager",
		"M1": "Product Lead", "M2": "Senior Product Lead",
		"D1": "Director of Product", "D2": "Senior Director of Product",
		"VP": "VP of Product", "CX": "CPO",
	},
	"JF-DESIGN": {
		"L1": "UX Designer I", "L2": "UX Designer II",
		"L3": "Senior UX Designer", "L4": "Staff Designer",
		"M1": "Design Manager", "M2": "Senior Design Manager",
		"D1": "Director of Design", "D2": "Senior Director of Design",
		"VP": "VP of Design", "CX": "Chief Design Officer",
	},
	"JF-DATA": {
		"L1": "Data Analyst I", "L2": "Data Analyst II",
		"L3": "Senior Data Scientist", "L4": "Staff Data Scientist",
		"M1": "Data Science Manager", "M2": "Senior Data Manager",
		"D1": "Director of Data", "D2": "Senior Director of Data",
		"VP": "VP of Data", "CX": "Chief Data Officer",
	},
	"JF-SALES": {
		"L1": "Sales Development Rep", "L2": "Account Executive",
		"L3": "Senior Account Executive", "L4": "Enterprise Account Executive",
		"M1": "Sales Manager", "M2": "Senior Sales Manager",
		"D1": "Director of Sales", "D2": "Senior Director of Sales",
		"VP": "VP of Sales", "CX": "CRO",
	},
	"JF-CS": {
		"L1": "Customer Success Associate", "L2": "Customer Success Manager",
		"L3": "Senior CSM", "L4": "Principal CSM",
		"M1": "CS Team Lead", "M2": "Senior CS Manager",
		"D1": "Director of CS", "D2": "Senior Director of CS",
		"VP": "VP of Customer Success", "CX": "Chief Customer Officer",
	},
	"JF-MKTG": {
		"L1": "Marketing Coordinator", "L2": "Marketing Specialist",
		"L3": "Senior Marketing Manager", "L4": "Principal Marketer",
		"M1": "Marketing Manager", "M2": "Senior Marketing Manager",
		"D1": "Director of Marketing", "D2": "Senior Director of Marketing",
		"VP": "VP of Marketing", "CX": "CMO",
	},
	"JF-FIN": {
		"L1": "Financial Analyst I", "L2": "Financial Analyst II",
		"L3": "Senior Financial Analyst", "L4": "Principal Analyst",
		"M1": "Finance Manager", "M2": "Senior Finance Manager",
		"D1": "Director of Finance", "D2": "Senior Director of Finance",
		"VP": "VP of Finance", "CX": "CFO",
	},
	"JF-HR": {
		"L1": "HR Coordinator", "L2": "HR Generalist",
		"L3": "Senior HR Business Partner", "L4": "Principal HRBP",
		"M1": "HR Manager", "M2": "Senior HR Manager",
		"D1": "Director of HR", "D2": "Senior Director of HR",
		"VP": "VP of People", "CX": "CHRO",
	},
	"JF-LEGAL": {
		"L1": "Legal Assistant", "L2": "Paralegal",
		"L3": "Senior Counsel", "L4": "Principal Counsel",
		"M1": "Legal Manager", "M2": "Senior Legal Manager",
		"D1": "Director of Legal", "D2": "Senior Director of Legal",
		"VP": "VP of Legal", "CX": "General Counsel",
	},
	"JF-OPS": {
		"L1": "Operations Analyst I", "L2": "Operations Analyst II",
		"L3": "Senior Operations Analyst", "L4": "Staff Operations",
		"M1": "Operations Manager", "M2": "Senior Operations Manager",
		"D1": "Director of Operations", "D2": "Senior Director of Operations",
		"VP": "VP of Operations", "CX": "COO",
	},
	"JF-EXEC": {
		"L1": "Executive Assistant", "L2": "Senior Executive Assistant",
		"L3": "Chief of Staff", "L4": "Senior Chief of Staff",
		"M1": "Office Manager", "M2": "Senior Office Manager",
		"D1": "Director of Strategy", "D2": "Senior Director of Strategy",
		"VP": "VP of Strategy", "CX": "CEO",
	},
}

// Title returns the job title for a family and level, or fallback when the
// pair has no template.
func Title(family, level, fallback string) string {
	if t, ok := titleTemplates[family][level]; ok {
		return t
	}
	return fallback
}

// Band midpoints in USD.
var levelMidpoints = map[string]float64{
	"L1": 75_000,
	"L2": 95_000,
	"L3": 125_000,
	"L4": 160_000,
	"M1": 145_000,
	"M2": 170_000,
	"D1": 200_000,
	"D2": 235_000,
	"VP": 300_000,
	"CX": 400_000,
}

var familyMultipliers = map[string]float64{
	"JF-ENG":    1.10,
	"JF-DATA":   1.08,
	"JF-PROD":   1.05,
	"JF-SALES":  1.00,
	"JF-DESIGN": 1.00,
	"JF-CS":     0.92,
	"JF-MKTG":   0.95,
	"JF-FIN":    1.00,
	"JF-HR":     0.93,
	"JF-LEGAL":  1.05,
	"JF-OPS":    0.95,
	"JF-EXEC":   1.15,
}

// Annual bonus target as a fraction of base.
var bonusTargets = map[string]float64{
	"L1": 0.05, "L2": 0.08, "L3": 0.10, "L4": 0.12,
	"M1": 0.15, "M2": 0.18, "D1": 0.20, "D2": 0.25,
	"VP": 0.30, "CX": 0.50,
}

// Hire grant shares; levels absent here get no equity.
var equityGrantShares = map[string]int{
	"L4": 500, "M1": 750, "M2": 1000, "D1": 2000,
	"D2": 3000, "VP": 5000, "CX": 10000,
}

var spotBonusAmounts = []int{1000, 2000, 2500, 5000, 10000}

// Midpoint is the family-adjusted salary midpoint for a level.
func Midpoint(level, family string) float64 {
	mid, ok := levelMidpoints[level]
	if !ok {
		mid = 100_000
	}
	mult, ok := familyMultipliers[family]
	if !ok {
		mult = 1.0
	}
	return mid * mult
}

func bonusTarget(level string) float64 {
	if t, ok := bonusTargets[level]; ok {
		return t
	}
	return 0.05
}

func equityEligible(level string) bool {
	_, ok := equityGrantShares[level]
	return ok
}

var interviewTypes = []string{"Phone Screen", "Technical", "Behavioral", "Panel", "Final"}

const (
	StageScreened  = "Screened"
	StagePhone     = "Phone Interview"
	StageTechnical = "Technical Interview"
	StageOnsite    = "Onsite Interview"
	StageHired     = "Hired"
	StageWithdrawn = "Withdrawn"
)

// Where rejected candidates drop out of the funnel.
var (
	rejectionStages  = []string{StageScreened, StagePhone, StageTechnical, StageOnsite, StageWithdrawn}
	rejectionWeights = []float64{0.40, 0.25, 0.20, 0.10, 0.05}
)

var stageInterviews = map[string][]string{
	StageScreened:  {"Phone Screen"},
	StagePhone:     {"Phone Screen"},
	StageTechnical: {"Phone Screen", "Technical"},
	StageOnsite:    {"Phone Screen", "Technical", "Behavioral"},
	StageHired:     interviewTypes,
	StageWithdrawn: nil,
}

var (
	feedbackStrong = []string{
		"Strong candidate. Excellent technical depth.",
		"Very impressive. Clear communicator with strong problem-solving.",
		"Highly recommend. Great culture fit and technical skills.",
		"Outstanding performance in the interview. Hire recommendation.",
	}
	feedbackSolid = []string{
		"Solid candidate. Some areas could be stronger.",
		"Good potential but needs more experience in key areas.",
		"Meets requirements but didn't stand out.",
		"Acceptable performance. Consider for the role.",
	}
	feedbackWeak = []string{
		"Below expectations. Struggled with core concepts.",
		"Not a fit for this role at this time.",
		"Significant gaps in required skills.",
		"Would not recommend moving forward.",
	}
)

// First names by gender. Anyone else gets a name from the faker's shared list.
var firstNamesByGender = map[string][]string{
	"Male": {
		"James", "Michael", "Robert", "David", "William", "Daniel", "Matthew", "Anthony", "Mark", "Steven",
		"Andrew", "Joshua", "Kevin", "Brian", "Ryan", "Jacob", "Nicholas", "Eric", "Jonathan", "Samuel",
		"Benjamin", "Aaron", "Carlos", "Luis", "Wei", "Hiroshi", "Arjun", "Rahul", "Omar", "Kwame",
		"Mateo", "Diego", "Ethan", "Noah", "Liam", "Lucas", "Tyler", "Marcus", "Jamal", "Victor",
	},
	"Female": {
		"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Susan", "Jessica", "Sarah", "Karen", "Emily",
		"Michelle", "Amanda", "Melissa", "Stephanie", "Rebecca", "Laura", "Rachel", "Hannah", "Olivia", "Sophia",
		"Emma", "Grace", "Maria", "Sofia", "Mei", "Yuki", "Priya", "Ananya", "Fatima", "Amara",
		"Valentina", "Camila", "Chloe", "Zoe", "Nia", "Aisha", "Natalie", "Claire", "Julia", "Isabel",
	},
}

var candidateEmailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "proton.me"}

var goalTemplates = map[string][]string{
	"JF-ENG": {
		"Deliver {feature} by end of {period}",
		"Reduce system latency by {pct}%",
		"Improve code coverage to {pct}%",
		"Lead architecture review for {component}",
		"Mentor {count} junior engineers",
	},
	"JF-PROD": {
		"Launch {feature} to {pct}% of users",
		"Increase user engagement by {pct}%",
		"Complete competitive analysis for {domain}",
		"Define and validate product roadmap for {period}",
	},
	"JF-SALES": {
		"Achieve {pct}% of quarterly quota",
		"Close {count} enterprise deals",
		"Expand existing accounts by {pct}%",
		"Build pipeline of ${amount}M",
	},
	"default": {
		"Complete {project} initiative by {period}",
		"Improve team process efficiency by {pct}%",
		"Develop expertise in {skill}",
		"Successfully onboard {count} new team members",
	},
}

var strengths = []string{
	"Strong technical skills and problem-solving ability",
	"Excellent communication and collaboration",
	"Consistent delivery against deadlines",
	"Proactive approach to identifying issues",
	"Great mentoring and team building",
	"Creative thinking and innovation",
	"Strong attention to detail",
	"Effective stakeholder management",
	"Demonstrated leadership in cross-functional projects",
	"Deep domain expertise and knowledge sharing",
}

var developmentAreas = []string{
	"Could improve documentation practices",
	"Should focus on broader strategic thinking",
	"Needs to delegate more effectively",
	"Would benefit from stronger presentation skills",
	"Should seek more cross-functional exposure",
	"Could improve time management and prioritization",
	"Needs more experience with system design at scale",
	"Should develop stronger data-driven decision making",
	"Would benefit from more proactive communication",
	"Needs to build stronger external network",
}

// Skill categories relevant to each job family.
var familySkillCategories = map[string][]string{
	"JF-ENG":    {"Technical", "Leadership"},
	"JF-DATA":   {"Technical", "Data", "Leadership"},
	"JF-PROD":   {"Product", "Leadership", "Business"},
	"JF-DESIGN": {"Design", "Product"},
	"JF-SALES":  {"Business", "Leadership"},
	"JF-CS":     {"Business", "Leadership"},
	"JF-MKTG":   {"Business", "Data"},
	"JF-FIN":    {"Business", "Data"},
	"JF-HR":     {"Business", "Leadership"},
	"JF-LEGAL":  {"Business"},
	"JF-OPS":    {"Technical", "Business"},
	"JF-EXEC":   {"Leadership", "Business"},
}

// SkillCategories returns the categories a job family draws skills from.
func SkillCategories(family string) []string {
	if c, ok := familySkillCategories[family]; ok {
		return c
	}
	return []string{"Business", "Leadership"}
}
