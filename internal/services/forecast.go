package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"revenue-forecast/internal/errors"
	"revenue-forecast/internal/models"
	"revenue-forecast/internal/validator"
)

// Forecast projects monthly revenue for the scenario's horizon, starting the
// month after the last observed one. Each product's baseline (trailing-window
// mean monthly revenue) is scaled by its price multiplier under a fixed
// quantity assumption; products without a multiplier keep their current
// price. Per-month revenue is the sum across products.
func (e *Engine) Forecast(req models.ForecastRequest) (models.ForecastResult, error) {
	if err := validateScenario(req); err != nil {
		return models.ForecastResult{}, err
	}
	if req.HorizonMonths > e.cfg.MaxHorizon {
		return models.ForecastResult{}, errors.InvalidScenario(
			fmt.Sprintf("horizon_months must be at most %d, got %d", e.cfg.MaxHorizon, req.HorizonMonths))
	}

	d := e.snapshot()

	var unknown []string
	for product := range req.PriceMultipliers {
		if !d.hasProduct(product) {
			unknown = append(unknown, product)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return models.ForecastResult{}, errors.InvalidScenario(
			fmt.Sprintf("unknown products in price_multipliers: %s", strings.Join(unknown, ", ")))
	}

	result := models.ForecastResult{Points: []models.ForecastPoint{}}
	if d.empty() {
		return result, nil
	}

	baselines, window := d.baselineRevenue(e.cfg.BaselineMonths)

	monthly := decimal.Zero
	for product, baseline := range baselines {
		multiplier := decimal.NewFromInt(1)
		if m, ok := req.PriceMultipliers[product]; ok {
			multiplier = decimal.NewFromFloat(m)
		}
		monthly = monthly.Add(baseline.Mul(multiplier))
	}

	month := d.lastMonth
	total := decimal.Zero
	for i := 0; i < req.HorizonMonths; i++ {
		month = month.Next()
		result.Points = append(result.Points, models.ForecastPoint{
			Month:   month.String(),
			Revenue: monthly.InexactFloat64(),
		})
		total = total.Add(monthly)
	}
	result.TotalRevenue = total.InexactFloat64()

	e.logger.Debug("forecast computed",
		"products", len(baselines),
		"baseline_window", window,
		"horizon", req.HorizonMonths,
	)
	return result, nil
}

func validateScenario(req models.ForecastRequest) error {
	if err := validator.ValidateRequest(req); err != nil {
		return errors.InvalidScenarioWrap(err, "invalid forecast scenario")
	}
	return nil
}
