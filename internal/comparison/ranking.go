package comparison

import (
	"math"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// Tolerance is the relative difference under which two metric values tie.
const Tolerance = 1e-9

// Ranking is the verdict for one metric
type Ranking struct {
	Metric   types.MetricName  `json:"metric"`
	Best     []types.Algorithm `json:"best"`      // every algorithm tied for the best value, selection order
	Value    float64           `json:"value"`     // the best value
	AllEqual bool              `json:"all_equal"` // at least two runs and all of them tie
}

// Equal reports whether a and b tie under Tolerance
func Equal(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= Tolerance*scale
}

// better reports whether a strictly beats b for metric
func better(metric types.MetricName, a, b float64) bool {
	if Equal(a, b) {
		return false
	}
	if metric.HigherIsBetter() {
		return a > b
	}
	return a < b
}

// Rank ranks the successful outcomes for every metric in types.RankedMetrics.
// Failed outcomes are skipped; with no successful outcome the result is empty.
func Rank(outcomes []Outcome) []Ranking {
	var ok []Outcome
	for _, o := range outcomes {
		if o.OK() {
			ok = append(ok, o)
		}
	}
	if len(ok) == 0 {
		return nil
	}

	rankings := make([]Ranking, 0, len(types.RankedMetrics))
	for _, metric := range types.RankedMetrics {
		best := ok[0].Run.Metrics.Value(metric)
		for _, o := range ok[1:] {
			if v := o.Run.Metrics.Value(metric); better(metric, v, best) {
				best = v
			}
		}

		r := Ranking{Metric: metric, Value: best}
		for _, o := range ok {
			if Equal(o.Run.Metrics.Value(metric), best) {
				r.Best = append(r.Best, o.Algorithm)
			}
		}
		r.AllEqual = len(ok) > 1 && len(r.Best) == len(ok)
		rankings = append(rankings, r)
	}
	return rankings
}

// Ratio expresses how far v is from the best value of metric, as a factor
// that is >= 1 for every non-best value. It returns 0 when undefined.
func Ratio(metric types.MetricName, best, v float64) float64 {
	if metric.HigherIsBetter() {
		if v == 0 {
			return 0
		}
		return best / v
	}
	if best == 0 {
		return 0
	}
	return v / best
}
