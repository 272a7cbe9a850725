package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobshield-engine/internal/domain"
)

var ErrNotFound = errors.New("analysis not found")

// Analysis is one persisted analysis record plus its flags.
type Analysis struct {
	ID             int64      `json:"id"`
	CompanyName    string     `json:"company_name"`
	JobTitle       string     `json:"job_title"`
	Description    string     `json:"description"`
	Email          string     `json:"email"`
	Website        string     `json:"website,omitempty"`
	Salary         string     `json:"salary,omitempty"`
	RiskScore      int        `json:"risk_score"`
	Classification string     `json:"classification"`
	CreatedAt      time.Time  `json:"created_at"`
	Flags          []FlagRow  `json:"flags"`
}

type FlagRow struct {
	ID          int64           `json:"id"`
	AnalysisID  int64           `json:"analysis_id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InsertAnalysis stores the posting, its result and its flags in one
// transaction and returns the new record id.
func InsertAnalysis(ctx context.Context, db *sql.DB, p domain.Posting, res domain.Result) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	r, err := tx.ExecContext(ctx, `
INSERT INTO analyses(company_name, job_title, description, email, website, salary, risk_score, classification, created_at)
VALUES(?,?,?,?,?,?,?,?,?);`,
		p.CompanyName, p.JobTitle, p.Description, p.Email, p.Website, p.Salary,
		res.RiskScore, string(res.Classification), now)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, f := range res.Flags {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO flags(analysis_id, flag_type, description, severity, created_at)
VALUES(?,?,?,?,?);`,
			id, f.Type, f.Description, string(f.Severity), now); err != nil {
			return 0, fmt.Errorf("insert flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetAnalysis loads one record with its flags. Returns ErrNotFound when
// the id does not exist.
func GetAnalysis(ctx context.Context, db *sql.DB, id int64) (Analysis, error) {
	var a Analysis
	var createdStr string
	err := db.QueryRowContext(ctx, `
SELECT id, company_name, job_title, description, email, website, salary, risk_score, classification, created_at
FROM analyses WHERE id = ?;`, id).Scan(
		&a.ID, &a.CompanyName, &a.JobTitle, &a.Description, &a.Email,
		&a.Website, &a.Salary, &a.RiskScore, &a.Classification, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)

	rows, err := db.QueryContext(ctx, `
SELECT id, analysis_id, flag_type, description, severity, created_at
FROM flags WHERE analysis_id = ? ORDER BY id;`, id)
	if err != nil {
		return Analysis{}, err
	}
	defer rows.Close()

	a.Flags = make([]FlagRow, 0, 4)
	for rows.Next() {
		var f FlagRow
		var fc string
		if err := rows.Scan(&f.ID, &f.AnalysisID, &f.Type, &f.Description, &f.Severity, &fc); err != nil {
			return Analysis{}, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, fc)
		a.Flags = append(a.Flags, f)
	}
	return a, rows.Err()
}

type ListOpts struct {
	Classification string // Legitimate | Suspicious | Fake | "" (all)
	Sort           string // created_at | risk_score | company
	Order          string // asc | desc
	Limit          int
}

// ListAnalyses returns recent records without their flags.
func ListAnalyses(ctx context.Context, db *sql.DB, opts ListOpts) ([]Analysis, error) {
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 100
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol := map[string]string{
		"created_at": "created_at",
		"risk_score": "risk_score",
		"company":    "company_name",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "created_at"
	}
	dir := "DESC"
	if opts.Order == "asc" {
		dir = "ASC"
	}

	q := `
SELECT id, company_name, job_title, description, email, website, salary, risk_score, classification, created_at
FROM analyses`
	var args []any
	if opts.Classification != "" {
		q += ` WHERE classification = ?`
		args = append(args, opts.Classification)
	}
	q += fmt.Sprintf(` ORDER BY %s %s LIMIT ?;`, sortCol, dir)
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0, 16)
	for rows.Next() {
		var a Analysis
		var createdStr string
		if err := rows.Scan(&a.ID, &a.CompanyName, &a.JobTitle, &a.Description, &a.Email,
			&a.Website, &a.Salary, &a.RiskScore, &a.Classification, &createdStr); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		out = append(out, a)
	}
	return out, rows.Err()
}
