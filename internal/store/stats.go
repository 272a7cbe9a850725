package store

import (
	"context"
	"database/sql"
	"math"
)

// Stats aggregates analysis counts per tier plus the mean risk score.
type Stats struct {
	TotalAnalyses    int     `json:"total_analyses"`
	Legitimate       int     `json:"legitimate"`
	Suspicious       int     `json:"suspicious"`
	Fake             int     `json:"fake"`
	AverageRiskScore float64 `json:"average_risk_score"`
}

func GetStats(ctx context.Context, db *sql.DB) (Stats, error) {
	var s Stats
	var avg sql.NullFloat64

	err := db.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(SUM(classification = 'Legitimate'), 0),
  COALESCE(SUM(classification = 'Suspicious'), 0),
  COALESCE(SUM(classification = 'Fake'), 0),
  AVG(risk_score)
FROM analyses;`).Scan(&s.TotalAnalyses, &s.Legitimate, &s.Suspicious, &s.Fake, &avg)
	if err != nil {
		return Stats{}, err
	}

	if avg.Valid {
		s.AverageRiskScore = math.Round(avg.Float64*100) / 100
	}
	return s, nil
}
