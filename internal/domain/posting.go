package domain

// Posting holds the fields of a job offer submitted for analysis.
// Website and Salary are optional; empty string means "not provided".
type Posting struct {
	CompanyName string
	JobTitle    string
	Description string
	Email       string
	Website     string
	Salary      string
}

// Severity ranks how strongly a single indicator points at fraud.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Flag is one detected fraud indicator. Immutable once produced.
type Flag struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}
