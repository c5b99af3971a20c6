package profile

import "time"

const (
	ExecutiveDepartmentID = "DEPT-020"
	ExecutiveFamilyID     = "JF-EXEC"
	CEOLevelID            = "CX"
	VPLevelID             = "VP"
)

// Default returns the Meridian Technologies profile.
func Default() *Profile {
	return &Profile{
		Company: Company{
			Name:               "Meridian Technologies",
			Industry:           "Technology",
			EmailDomain:        "meridiantech.com",
			Founded:            NewDate(2010, time.March, 15),
			TotalEmployees:     750,
			AnnualTurnoverRate: 0.15,
			DataStart:          NewDate(2023, time.January, 1),
			DataEnd:            NewDate(2025, time.December, 31),
		},
		Locations: []Location{
			{ID: "LOC-001", Name: "San Francisco HQ", City: "San Francisco", Country: "US", IsHQ: true, Weight: 0.40},
			{ID: "LOC-002", Name: "New York Office", City: "New York", Country: "US", Weight: 0.20},
			{ID: "LOC-003", Name: "London Office", City: "London", Country: "UK", Weight: 0.15},
			{ID: "LOC-004", Name: "Remote", City: "Remote", Country: "US", Weight: 0.25},
		},
		Divisions: []Division{
			{ID: "DIV-ENG", Name: "Engineering"},
			{ID: "DIV-PROD", Name: "Product"},
			{ID: "DIV-SALES", Name: "Sales"},
			{ID: "DIV-OPS", Name: "Operations"},
			{ID: "DIV-CORP", Name: "Corporate"},
		},
		Departments: []Department{
			{ID: "DEPT-001", Name: "Backend Engineering", DivisionID: "DIV-ENG", JobFamilyID: "JF-ENG", HeadcountPct: 0.12},
			{ID: "DEPT-002", Name: "Frontend Engineering", DivisionID: "DIV-ENG", JobFamilyID: "JF-ENG", HeadcountPct: 0.10},
			{ID: "DEPT-003", Name: "Data Engineering", DivisionID: "DIV-ENG", JobFamilyID: "JF-DATA", HeadcountPct: 0.06},
			{ID: "DEPT-004", Name: "DevOps & Infrastructure", DivisionID: "DIV-ENG", JobFamilyID: "JF-ENG", HeadcountPct: 0.05},
			{ID: "DEPT-005", Name: "QA & Testing", DivisionID: "DIV-ENG", JobFamilyID: "JF-ENG", HeadcountPct: 0.04},
			{ID: "DEPT-006", Name: "Product Management", DivisionID: "DIV-PROD", JobFamilyID: "JF-PROD", HeadcountPct: 0.05},
			{ID: "DEPT-007", Name: "UX Design", DivisionID: "DIV-PROD", JobFamilyID: "JF-DESIGN", HeadcountPct: 0.04},
			{ID: "DEPT-008", Name: "Data Science & Analytics", DivisionID: "DIV-PROD", JobFamilyID: "JF-DATA", HeadcountPct: 0.04},
			{ID: "DEPT-009", Name: "Enterprise Sales", DivisionID: "DIV-SALES", JobFamilyID: "JF-SALES", HeadcountPct: 0.08},
			{ID: "DEPT-010", Name: "SMB Sales", DivisionID: "DIV-SALES", JobFamilyID: "JF-SALES", HeadcountPct: 0.06},
			{ID: "DEPT-011", Name: "Sales Engineering", DivisionID: "DIV-SALES", JobFamilyID: "JF-SALES", HeadcountPct: 0.04},
			{ID: "DEPT-012", Name: "Customer Success", DivisionID: "DIV-SALES", JobFamilyID: "JF-CS", HeadcountPct: 0.06},
			{ID: "DEPT-013", Name: "IT Operations", DivisionID: "DIV-OPS", JobFamilyID: "JF-OPS", HeadcountPct: 0.04},
			{ID: "DEPT-014", Name: "Security", DivisionID: "DIV-OPS", JobFamilyID: "JF-OPS", HeadcountPct: 0.03},
			{ID: "DEPT-015", Name: "Facilities & Office Management", DivisionID: "DIV-OPS", JobFamilyID: "JF-OPS", HeadcountPct: 0.02},
			{ID: "DEPT-016", Name: "Human Resources", DivisionID: "DIV-CORP", JobFamilyID: "JF-HR", HeadcountPct: 0.04},
			{ID: "DEPT-017", Name: "Finance & Accounting", DivisionID: "DIV-CORP", JobFamilyID: "JF-FIN", HeadcountPct: 0.04},
			{ID: "DEPT-018", Name: "Legal & Compliance", DivisionID: "DIV-CORP", JobFamilyID: "JF-LEGAL", HeadcountPct: 0.03},
			{ID: "DEPT-019", Name: "Marketing", DivisionID: "DIV-CORP", JobFamilyID: "JF-MKTG", HeadcountPct: 0.04},
			{ID: ExecutiveDepartmentID, Name: "Executive Office", DivisionID: "DIV-CORP", JobFamilyID: ExecutiveFamilyID, HeadcountPct: 0.02},
		},
		Levels: []Level{
			{ID: "L1", Name: "Individual Contributor I", Rank: 1, Weight: 0.20},
			{ID: "L2", Name: "Individual Contributor II", Rank: 2, Weight: 0.25},
			{ID: "L3", Name: "Senior Individual Contributor", Rank: 3, Weight: 0.20},
			{ID: "L4", Name: "Staff / Lead", Rank: 4, Weight: 0.10},
			{ID: "M1", Name: "Manager", Rank: 5, Weight: 0.10},
			{ID: "M2", Name: "Senior Manager", Rank: 6, Weight: 0.05},
			{ID: "D1", Name: "Director", Rank: 7, Weight: 0.04},
			{ID: "D2", Name: "Senior Director", Rank: 8, Weight: 0.03},
			{ID: VPLevelID, Name: "Vice President", Rank: 9, Weight: 0.02},
			{ID: CEOLevelID, Name: "C-Suite", Rank: 10, Weight: 0.01},
		},
		JobFamilies: []JobFamily{
			{ID: "JF-ENG", Name: "Engineering"},
			{ID: "JF-PROD", Name: "Product"},
			{ID: "JF-DESIGN", Name: "Design"},
			{ID: "JF-DATA", Name: "Data & Analytics"},
			{ID: "JF-SALES", Name: "Sales"},
			{ID: "JF-CS", Name: "Customer Success"},
			{ID: "JF-MKTG", Name: "Marketing"},
			{ID: "JF-FIN", Name: "Finance"},
			{ID: "JF-HR", Name: "Human Resources"},
			{ID: "JF-LEGAL", Name: "Legal"},
			{ID: "JF-OPS", Name: "Operations"},
			{ID: ExecutiveFamilyID, Name: "Executive"},
		},
		Skills: []Skill{
			{ID: "SK-001", Name: "Python", Category: "Technical"},
			{ID: "SK-002", Name: "JavaScript", Category: "Technical"},
			{ID: "SK-003", Name: "SQL", Category: "Technical"},
			{ID: "SK-004", Name: "Cloud Architecture", Category: "Technical"},
			{ID: "SK-005", Name: "Machine Learning", Category: "Technical"},
			{ID: "SK-006", Name: "System Design", Category: "Technical"},
			{ID: "SK-007", Name: "API Design", Category: "Technical"},
			{ID: "SK-008", Name: "Data Modeling", Category: "Technical"},
			{ID: "SK-009", Name: "DevOps", Category: "Technical"},
			{ID: "SK-010", Name: "Security Engineering", Category: "Technical"},
			{ID: "SK-011", Name: "Product Strategy", Category: "Product"},
			{ID: "SK-012", Name: "User Research", Category: "Product"},
			{ID: "SK-013", Name: "UX Design", Category: "Design"},
			{ID: "SK-014", Name: "Data Analysis", Category: "Data"},
			{ID: "SK-015", Name: "A/B Testing", Category: "Data"},
			{ID: "SK-016", Name: "Sales Strategy", Category: "Business"},
			{ID: "SK-017", Name: "Account Management", Category: "Business"},
			{ID: "SK-018", Name: "Financial Analysis", Category: "Business"},
			{ID: "SK-019", Name: "Contract Negotiation", Category: "Business"},
			{ID: "SK-020", Name: "Project Management", Category: "Business"},
			{ID: "SK-021", Name: "People Management", Category: "Leadership"},
			{ID: "SK-022", Name: "Strategic Planning", Category: "Leadership"},
			{ID: "SK-023", Name: "Cross-functional Collaboration", Category: "Leadership"},
			{ID: "SK-024", Name: "Stakeholder Management", Category: "Leadership"},
			{ID: "SK-025", Name: "Change Management", Category: "Leadership"},
		},
		Genders: []Weighted{
			{Value: "Male", Weight: 0.58},
			{Value: "Female", Weight: 0.38},
			{Value: "Non-binary", Weight: 0.04},
		},
		Ethnicities: []Weighted{
			{Value: "White", Weight: 0.45},
			{Value: "Asian", Weight: 0.30},
			{Value: "Hispanic/Latino", Weight: 0.10},
			{Value: "Black/African American", Weight: 0.08},
			{Value: "Two or More Races", Weight: 0.05},
			{Value: "Other", Weight: 0.02},
		},
		TerminationReasons: []Weighted{
			{Value: "Voluntary - Better Opportunity", Weight: 0.35},
			{Value: "Voluntary - Relocation", Weight: 0.10},
			{Value: "Voluntary - Career Change", Weight: 0.10},
			{Value: "Voluntary - Compensation", Weight: 0.15},
			{Value: "Voluntary - Work-Life Balance", Weight: 0.10},
			{Value: "Involuntary - Performance", Weight: 0.10},
			{Value: "Involuntary - Restructuring", Weight: 0.05},
			{Value: "Involuntary - Policy Violation", Weight: 0.03},
			{Value: "Retirement", Weight: 0.02},
		},
		CandidateSources: []Weighted{
			{Value: "LinkedIn", Weight: 0.30},
			{Value: "Employee Referral", Weight: 0.25},
			{Value: "Job Board (Indeed)", Weight: 0.15},
			{Value: "Job Board (Glassdoor)", Weight: 0.08},
			{Value: "Company Website", Weight: 0.10},
			{Value: "Recruiter", Weight: 0.07},
			{Value: "University/Campus", Weight: 0.05},
		},
	}
}
