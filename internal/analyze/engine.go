// Package analyze implements the rule-based fraud scoring engine for
// job postings: a fixed catalog of independent heuristics, an additive
// score capped at 100, and a three-tier classification.
package analyze

import (
	"errors"
	"strings"

	"jobshield-engine/internal/config"
	"jobshield-engine/internal/domain"
)

// ErrMalformedEmail is returned when the contact email has no
// @-delimited domain part. The engine refuses to guess a domain;
// callers validate the address shape before submitting.
var ErrMalformedEmail = errors.New("contact email has no domain part")

const maxScore = 100

// Engine evaluates the rule catalog against one posting at a time. It
// carries only the read-only lookup tables, so a single instance is
// safe for unlimited concurrent calls; all per-call state (score, flag
// list) is local to Analyze.
type Engine struct {
	tables      config.RuleTables
	freeDomains map[string]bool
}

func New(tables config.RuleTables) *Engine {
	free := make(map[string]bool, len(tables.FreeEmailDomains))
	for _, d := range tables.FreeEmailDomains {
		free[strings.ToLower(d)] = true
	}
	return &Engine{tables: tables, freeDomains: free}
}

// snapshot is the normalized, immutable view of one posting that every
// rule reads from. It is built once per call so all rules see the same
// input regardless of evaluation order.
type snapshot struct {
	posting      domain.Posting
	emailDomain  string
	descLower    string
	companyLower string

	// keyword scan output, keyed by category; values keep table order
	matches map[string][]string

	// salary sub-routine output; salaryOK is false when the salary text
	// is absent or has no parsable numeric token
	salaryOK    bool
	salaryValue int
	bandName    string
	band        config.SalaryBand
}

func (e *Engine) snapshot(p domain.Posting) (*snapshot, error) {
	_, dom, ok := strings.Cut(p.Email, "@")
	if !ok {
		return nil, ErrMalformedEmail
	}

	s := &snapshot{
		posting:      p,
		emailDomain:  strings.ToLower(dom),
		descLower:    strings.ToLower(p.Description),
		companyLower: strings.ToLower(p.CompanyName),
		matches:      make(map[string][]string, len(e.tables.Keywords)),
	}

	for cat, phrases := range e.tables.Keywords {
		for _, kw := range phrases {
			if strings.Contains(s.descLower, kw) {
				s.matches[cat] = append(s.matches[cat], kw)
			}
		}
	}

	if strings.TrimSpace(p.Salary) != "" {
		if v, parsed := parseSalary(p.Salary); parsed {
			name := jobLevelBand(p.JobTitle)
			if band, known := e.tables.SalaryBands[name]; known {
				s.salaryOK = true
				s.salaryValue = v
				s.bandName = name
				s.band = band
			}
		}
	}

	return s, nil
}

// Analyze runs every catalog rule against one posting and returns the
// capped score, its tier and the flags in evaluation order. It either
// returns a complete result or fails outright; there is no partial
// result.
func (e *Engine) Analyze(p domain.Posting) (domain.Result, error) {
	s, err := e.snapshot(p)
	if err != nil {
		return domain.Result{}, err
	}

	score := 0
	flags := make([]domain.Flag, 0, 4)
	for _, r := range catalog {
		fired, desc := r.check(e, s)
		if !fired {
			continue
		}
		flags = append(flags, domain.Flag{Type: r.flagType, Description: desc, Severity: r.severity})
		score += r.impact
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		// impacts are non-negative today; floor kept as a safety
		// invariant for future negative-impact rules
		score = 0
	}

	return domain.Result{
		RiskScore:      score,
		Classification: Classify(score),
		Flags:          flags,
	}, nil
}

// Classify maps a capped score to its risk tier. Boundary values belong
// to the higher tier: 30 is Suspicious, 70 is Fake.
func Classify(score int) domain.Classification {
	switch {
	case score < 30:
		return domain.Legitimate
	case score < 70:
		return domain.Suspicious
	default:
		return domain.Fake
	}
}
