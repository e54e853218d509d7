package services

import (
	"math"
	"strings"
	"testing"

	"revenue-forecast/internal/config"
	"revenue-forecast/internal/errors"
	"revenue-forecast/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Worked example: product A with monthly revenue 100, 200, 300 has a
// baseline mean of 200; a 1.2 multiplier over a 2-month horizon projects
// 240 per month, 480 total.
func TestEngine_Forecast_Example(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-01-15", 10, 10),
		tx("A", "2023-02-15", 20, 10),
		tx("A", "2023-03-15", 30, 10),
	})

	result, err := e.Forecast(models.ForecastRequest{
		PriceMultipliers: map[string]float64{"A": 1.2},
		HorizonMonths:    2,
	})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	want := []models.ForecastPoint{
		{Month: "2023-04", Revenue: 240},
		{Month: "2023-05", Revenue: 240},
	}
	if len(result.Points) != len(want) {
		t.Fatalf("Forecast() returned %d points, want %d", len(result.Points), len(want))
	}
	for i, p := range result.Points {
		if p.Month != want[i].Month || !almostEqual(p.Revenue, want[i].Revenue) {
			t.Errorf("Forecast()[%d] = %+v, want %+v", i, p, want[i])
		}
	}
	if !almostEqual(result.TotalRevenue, 480) {
		t.Errorf("TotalRevenue = %v, want 480", result.TotalRevenue)
	}
}

func TestEngine_Forecast_UnitMultiplierIsBaseline(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-01-15", 10, 10),
		tx("A", "2023-02-15", 20, 10),
		tx("B", "2023-02-20", 5, 40),
	})

	baseline, err := e.Forecast(models.ForecastRequest{HorizonMonths: 3})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	explicit, err := e.Forecast(models.ForecastRequest{
		PriceMultipliers: map[string]float64{"A": 1.0, "B": 1.0},
		HorizonMonths:    3,
	})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	for i := range baseline.Points {
		if !almostEqual(baseline.Points[i].Revenue, explicit.Points[i].Revenue) {
			t.Errorf("point %d: multiplier 1.0 should reproduce the baseline", i)
		}
	}
	if !almostEqual(baseline.TotalRevenue, explicit.TotalRevenue) {
		t.Error("multiplier 1.0 should reproduce the baseline total")
	}
}

func TestEngine_Forecast_MultiplierScalesSingleProduct(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-01-15", 10, 10),
		tx("A", "2023-02-15", 30, 10),
	})

	baseline, err := e.Forecast(models.ForecastRequest{HorizonMonths: 4})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	scaled, err := e.Forecast(models.ForecastRequest{
		PriceMultipliers: map[string]float64{"A": 1.5},
		HorizonMonths:    4,
	})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	for i := range baseline.Points {
		if !almostEqual(scaled.Points[i].Revenue, baseline.Points[i].Revenue*1.5) {
			t.Errorf("point %d: %v not scaled by 1.5 from %v",
				i, scaled.Points[i].Revenue, baseline.Points[i].Revenue)
		}
	}
}

func TestEngine_Forecast_MonthsContinueFromLastObserved(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-11-15", 10, 10),
		tx("A", "2023-12-15", 10, 10),
	})

	result, err := e.Forecast(models.ForecastRequest{HorizonMonths: 3})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	wantMonths := []string{"2024-01", "2024-02", "2024-03"}
	for i, p := range result.Points {
		if p.Month != wantMonths[i] {
			t.Errorf("point %d month = %s, want %s", i, p.Month, wantMonths[i])
		}
	}
}

func TestEngine_Forecast_BaselineWindowCapped(t *testing.T) {
	// 14 months of history; only the trailing 12 feed the baseline. The two
	// oldest months carry revenue 1200 each, the last 12 carry 120 each, so
	// an uncapped mean would differ.
	e := NewEngine(config.ForecastConfig{BaselineMonths: 12, MaxHorizon: 60}, nil)

	records := []models.Transaction{
		tx("A", "2022-01-15", 120, 10),
		tx("A", "2022-02-15", 120, 10),
	}
	months := []string{
		"2022-03-15", "2022-04-15", "2022-05-15", "2022-06-15",
		"2022-07-15", "2022-08-15", "2022-09-15", "2022-10-15",
		"2022-11-15", "2022-12-15", "2023-01-15", "2023-02-15",
	}
	for _, m := range months {
		records = append(records, tx("A", m, 12, 10))
	}
	e.LoadRecords(records)

	result, err := e.Forecast(models.ForecastRequest{HorizonMonths: 1})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	// Trailing 12 months sum to 12*120 = 1440, mean 120.
	if !almostEqual(result.Points[0].Revenue, 120) {
		t.Errorf("baseline revenue = %v, want 120 (trailing window only)", result.Points[0].Revenue)
	}
}

func TestEngine_Forecast_ZeroRevenueProduct(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-01-15", 10, 10),
		tx("B", "2023-01-20", 0, 50), // present in catalog, zero revenue
	})

	result, err := e.Forecast(models.ForecastRequest{
		PriceMultipliers: map[string]float64{"B": 1.5},
		HorizonMonths:    2,
	})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}

	// B contributes zero regardless of its multiplier.
	for i, p := range result.Points {
		if !almostEqual(p.Revenue, 100) {
			t.Errorf("point %d revenue = %v, want 100", i, p.Revenue)
		}
	}
}

func TestEngine_Forecast_InvalidScenario(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-01-15", 10, 10),
	})

	tests := []struct {
		name string
		req  models.ForecastRequest
	}{
		{
			name: "zero horizon",
			req:  models.ForecastRequest{HorizonMonths: 0},
		},
		{
			name: "negative horizon",
			req:  models.ForecastRequest{HorizonMonths: -3},
		},
		{
			name: "horizon above maximum",
			req:  models.ForecastRequest{HorizonMonths: 61},
		},
		{
			name: "multiplier below range",
			req: models.ForecastRequest{
				PriceMultipliers: map[string]float64{"A": 0.3},
				HorizonMonths:    2,
			},
		},
		{
			name: "multiplier above range",
			req: models.ForecastRequest{
				PriceMultipliers: map[string]float64{"A": 2.0},
				HorizonMonths:    2,
			},
		},
		{
			name: "unknown product",
			req: models.ForecastRequest{
				PriceMultipliers: map[string]float64{"ZZZ": 1.1},
				HorizonMonths:    2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Forecast(tt.req)
			if err == nil {
				t.Fatal("Forecast() should reject the scenario")
			}
			if !errors.IsCode(err, errors.CodeInvalidScenario) {
				t.Errorf("Forecast() error code = %v, want INVALID_SCENARIO", err)
			}
		})
	}
}

func TestEngine_Forecast_UnknownProductNamesAllOffenders(t *testing.T) {
	e := newTestEngine()
	e.LoadRecords([]models.Transaction{
		tx("A", "2023-01-15", 10, 10),
	})

	_, err := e.Forecast(models.ForecastRequest{
		PriceMultipliers: map[string]float64{"X": 1.1, "Y": 1.1},
		HorizonMonths:    2,
	})
	if err == nil {
		t.Fatal("Forecast() should reject unknown products")
	}
	if !strings.Contains(err.Error(), "X") || !strings.Contains(err.Error(), "Y") {
		t.Errorf("error %q should name the unknown products", err.Error())
	}
}

func TestEngine_Forecast_EmptyStore(t *testing.T) {
	e := newTestEngine()

	result, err := e.Forecast(models.ForecastRequest{HorizonMonths: 6})
	if err != nil {
		t.Fatalf("Forecast() on empty store should not error, got: %v", err)
	}
	if result.Points == nil || len(result.Points) != 0 {
		t.Errorf("Forecast() points = %v, want empty slice", result.Points)
	}
	if result.TotalRevenue != 0 {
		t.Errorf("TotalRevenue = %v, want 0", result.TotalRevenue)
	}

	// A multiplier for any product is still unknown against an empty catalog.
	if _, err := e.Forecast(models.ForecastRequest{
		PriceMultipliers: map[string]float64{"A": 1.2},
		HorizonMonths:    6,
	}); err == nil {
		t.Error("Forecast() with multipliers on empty store should fail")
	}
}
