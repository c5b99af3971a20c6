package graph

var nodeColors = map[string]string{
	"Employee":          "#4A90D9",
	"Candidate":         "#9B59B6",
	"Department":        "#E67E22",
	"Division":          "#D35400",
	"Location":          "#1ABC9C",
	"Position":          "#3498DB",
	"JobFamily":         "#2980B9",
	"JobLevel":          "#2471A3",
	"Skill":             "#27AE60",
	"Requisition":       "#F39C12",
	"Application":       "#F1C40F",
	"Interview":         "#E74C3C",
	"Offer":             "#2ECC71",
	"PerformanceReview": "#8E44AD",
	"Goal":              "#16A085",
	"SalaryBand":        "#D4AC0D",
	"BaseSalary":        "#28B463",
	"Bonus":             "#1E8449",
	"EquityGrant":       "#117A65",
	"PerformanceCycle":  "#7D3C98",
	"SourceChannel":     "#CA6F1E",
	"TemporalEvent":     "#95A5A6",
}

var nodeSizes = map[string]int{
	"Employee":          20,
	"Candidate":         15,
	"Department":        30,
	"Division":          35,
	"Location":          25,
	"Position":          12,
	"JobFamily":         25,
	"JobLevel":          20,
	"Skill":             18,
	"Requisition":       15,
	"Application":       10,
	"Interview":         10,
	"Offer":             12,
	"PerformanceReview": 12,
	"Goal":              10,
	"SalaryBand":        15,
	"BaseSalary":        10,
	"Bonus":             10,
	"EquityGrant":       10,
	"PerformanceCycle":  20,
	"SourceChannel":     20,
	"TemporalEvent":     10,
}

var edgeColors = map[string]string{
	"REPORTS_TO":              "#34495E",
	"BELONGS_TO":              "#E67E22",
	"PART_OF":                 "#D35400",
	"LOCATED_AT":              "#1ABC9C",
	"HOLDS_POSITION":          "#3498DB",
	"POSITION_IN":             "#2980B9",
	"IN_JOB_FAMILY":           "#2471A3",
	"AT_LEVEL":                "#1F618D",
	"HAS_SKILL":               "#27AE60",
	"REQUIRES_SKILL":          "#229954",
	"DEMONSTRATES_COMPETENCY": "#1E8449",
	"APPLIED_FOR":             "#F39C12",
	"HAS_APPLICATION":         "#F1C40F",
	"APPLICATION_FOR":         "#D4AC0D",
	"HAS_INTERVIEW":           "#E74C3C",
	"INTERVIEWED_BY":          "#CB4335",
	"HAS_OFFER":               "#2ECC71",
	"FILLS_REQUISITION":       "#28B463",
	"SOURCED_FROM":            "#CA6F1E",
	"REQUISITION_FOR":         "#BA4A00",
	"REVIEWED_IN":             "#8E44AD",
	"REVIEWED_BY":             "#7D3C98",
	"SET_GOAL":                "#16A085",
	"PART_OF_CYCLE":           "#6C3483",
	"GOAL_IN_CYCLE":           "#148F77",
	"EARNS_BASE":              "#28B463",
	"RECEIVED_BONUS":          "#1E8449",
	"GRANTED_EQUITY":          "#117A65",
	"IN_SALARY_BAND":          "#D4AC0D",
	"EXPERIENCED_EVENT":       "#95A5A6",
}

const (
	defaultNodeColor = "#95A5A6"
	defaultEdgeColor = "#BDC3C7"
	defaultNodeSize  = 15
)

func nodeColor(label string) string {
	if c, ok := nodeColors[label]; ok {
		return c
	}
	return defaultNodeColor
}

func nodeSize(label string) int {
	if s, ok := nodeSizes[label]; ok {
		return s
	}
	return defaultNodeSize
}

func edgeColor(typ string) string {
	if c, ok := edgeColors[typ]; ok {
		return c
	}
	return defaultEdgeColor
}

// compaColor buckets a salary's compa-ratio (percent of band midpoint).
func compaColor(ratio float64) string {
	switch {
	case ratio >= 110:
		return "#27AE60"
	case ratio >= 95:
		return "#3498DB"
	case ratio >= 85:
		return "#F39C12"
	default:
		return "#E74C3C"
	}
}
