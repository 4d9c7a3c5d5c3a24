package anomaly

import (
	"fmt"

	"github.com/restalytics/restalytics/internal/models"
)

// Default rule thresholds, used when the config leaves them unset.
const (
	// DefaultRegressionFactor flags the overall prep-time mean when it
	// exceeds the trailing-30-day mean by more than 25%.
	DefaultRegressionFactor = 1.25
	// DefaultSalesFloor is the unit count below which a top product is
	// reported as underperforming.
	DefaultSalesFloor = 50
)

// Evaluator applies fixed threshold rules over a metrics snapshot.
type Evaluator struct {
	regressionFactor float64
	salesFloor       int
}

func NewEvaluator(regressionFactor float64, salesFloor int) *Evaluator {
	if regressionFactor <= 0 {
		regressionFactor = DefaultRegressionFactor
	}
	if salesFloor <= 0 {
		salesFloor = DefaultSalesFloor
	}
	return &Evaluator{
		regressionFactor: regressionFactor,
		salesFloor:       salesFloor,
	}
}

// Evaluate returns human-readable alerts in rule-evaluation order. An empty
// slice means no anomalies, which callers render as a positive confirmation.
//
// A 30-day mean of 0 means there is no baseline: the regression rule is
// suppressed rather than compared against zero.
func (e *Evaluator) Evaluate(metrics models.AggregatedMetrics) []string {
	alerts := []string{}

	if metrics.AvgPrep30dSeconds > 0 &&
		float64(metrics.AvgPrepSeconds) > float64(metrics.AvgPrep30dSeconds)*e.regressionFactor {
		alerts = append(alerts, fmt.Sprintf("Tempo médio de preparo acima da média histórica (+%.0f%%).", (e.regressionFactor-1)*100))
	}

	for _, product := range metrics.TopProducts {
		if product.Sold < e.salesFloor {
			alerts = append(alerts, fmt.Sprintf("Vendas do prato %s estão abaixo do esperado.", product.Name))
		}
	}

	return alerts
}
