package assistant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nicolasimarinw/hr-ontology/modules/graph"
)

// Overview holds the headline workforce metrics. A nil field means the
// source behind it was unavailable; an empty Diversity means the lake
// answered with no active employees.
type Overview struct {
	Headcount   *int64           `json:"headcount"`
	TurnoverPct *float64         `json:"turnover_pct"`
	AvgRating   *float64         `json:"avg_rating"`
	OpenReqs    *int64           `json:"open_reqs"`
	Diversity   map[string]int64 `json:"diversity"`
}

type OverviewService struct {
	graph graph.Runner
	lake  LakeQuerier
	log   logrus.FieldLogger
}

func NewOverviewService(runner graph.Runner, lakeQuerier LakeQuerier, log logrus.FieldLogger) *OverviewService {
	return &OverviewService{graph: runner, lake: lakeQuerier, log: log}
}

// Overview never fails; each metric whose query errors is left empty and
// logged.
func (s *OverviewService) Overview(ctx context.Context) *Overview {
	out := &Overview{}

	if s.graph != nil {
		if row := s.graphRow(ctx, `MATCH (e:Employee) WHERE e.status = 'Active' RETURN count(e) AS count`); row != nil {
			out.Headcount = intPtr(row["count"])
		}
		if row := s.graphRow(ctx, `MATCH (e:Employee)
RETURN count(e) AS total, sum(CASE WHEN e.status = 'Terminated' THEN 1 ELSE 0 END) AS termed`); row != nil {
			total, _ := toFloat(row["total"])
			termed, _ := toFloat(row["termed"])
			if total > 0 {
				pct, _ := decimal.NewFromFloat(termed / total * 100).Round(1).Float64()
				out.TurnoverPct = &pct
			}
		}
		if row := s.graphRow(ctx, `MATCH (r:Requisition) WHERE r.status = 'Open' RETURN count(r) AS count`); row != nil {
			out.OpenReqs = intPtr(row["count"])
		}
	}

	if s.lake != nil {
		if res, ok := s.lakeRows(ctx, `SELECT round(avg(rating), 2) AS avg_rating FROM performance_reviews`); ok && len(res) > 0 {
			if v, ok := toFloat(res[0]["avg_rating"]); ok {
				out.AvgRating = &v
			}
		}
		if rows, ok := s.lakeRows(ctx, `SELECT gender, count(*) AS count FROM employees
WHERE status = 'Active' GROUP BY gender ORDER BY count DESC`); ok {
			out.Diversity = make(map[string]int64, len(rows))
			for _, r := range rows {
				if n, ok := toFloat(r["count"]); ok {
					out.Diversity[fmt.Sprint(r["gender"])] = int64(n)
				}
			}
		}
	}
	return out
}

func (s *OverviewService) graphRow(ctx context.Context, cypher string) map[string]any {
	rows, err := s.graph.Read(ctx, cypher, nil)
	if err != nil {
		s.log.WithError(err).Warn("overview graph query failed")
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func (s *OverviewService) lakeRows(ctx context.Context, query string) ([]map[string]any, bool) {
	res, err := s.lake.Query(ctx, query, 0)
	if err != nil {
		s.log.WithError(err).Warn("overview lake query failed")
		return nil, false
	}
	if res == nil {
		return nil, true
	}
	return res.Rows, true
}

func intPtr(v any) *int64 {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
