package domain

// Classification is the risk tier derived from the final score.
type Classification string

const (
	Legitimate Classification = "Legitimate"
	Suspicious Classification = "Suspicious"
	Fake       Classification = "Fake"
)

// Result is the outcome of one analysis call. Flags appear in rule
// evaluation order and may be empty.
type Result struct {
	RiskScore      int            `json:"risk_score"`
	Classification Classification `json:"classification"`
	Flags          []Flag         `json:"flags"`
}
