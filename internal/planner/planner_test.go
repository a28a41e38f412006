package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

type fakeCompleter struct {
	response string
	err      error
	called   bool
}

func (f *fakeCompleter) Configured() bool { return true }

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.called = true
	return f.response, f.err
}

type fakeFlights struct {
	flights []models.Flight
	err     error
}

func (f *fakeFlights) Configured() bool { return true }

func (f *fakeFlights) SearchFlights(_ context.Context, _, _, _, _ string) ([]models.Flight, error) {
	return f.flights, f.err
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func testRequest() models.TripRequest {
	return models.TripRequest{
		Destination: "Paris",
		NumDays:     3,
		Budget:      2000,
		Mode:        models.ModePriceOptimal,
	}
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	tests := []struct {
		name string
		req  models.TripRequest
	}{
		{"empty destination", models.TripRequest{NumDays: 3, Budget: 100, Mode: models.ModeBalanced}},
		{"zero days", models.TripRequest{Destination: "Paris", Budget: 100, Mode: models.ModeBalanced}},
		{"too many days", models.TripRequest{Destination: "Paris", NumDays: 31, Budget: 100, Mode: models.ModeBalanced}},
		{"bad mode", models.TripRequest{Destination: "Paris", NumDays: 3, Budget: 100, Mode: "cheapest"}},
		{"negative budget", models.TripRequest{Destination: "Paris", NumDays: 3, Budget: -1, Mode: models.ModeBalanced}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Generate(context.Background(), tt.req, "")
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestGenerateAllFallback(t *testing.T) {
	// No providers, no model: the run must still deliver a complete plan.
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	it, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, "Paris", it.Destination)
	require.Len(t, it.Days, 3)
	for _, cat := range models.Categories {
		assert.Equal(t, models.OutcomeFallback, it.DataSources[cat], string(cat))
	}
	assert.NotEmpty(t, it.Flights)
	assert.NotEmpty(t, it.Hotels)
	assert.Greater(t, it.TotalCost, 0.0)
	assert.Greater(t, it.TotalEmissions, 0.0)
	assert.GreaterOrEqual(t, it.EcoScore, 0.0)
	assert.LessOrEqual(t, it.EcoScore, 100.0)
}

func TestGenerateDatesAscendingAndSlotsFilled(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	req := testRequest()
	req.NumDays = 5
	req.StartDate = "2026-09-28"

	it, err := p.Generate(context.Background(), req, "")
	require.NoError(t, err)
	require.Len(t, it.Days, 5)

	for i, d := range it.Days {
		want := time.Date(2026, 9, 28+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		assert.Equal(t, want, d.Date)
		assert.NotEmpty(t, d.Morning.Activity)
		assert.NotEmpty(t, d.Afternoon.Activity)
		assert.NotEmpty(t, d.Evening.Activity)
	}
}

func TestGenerateDefaultStartThirtyDaysOut(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	it, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-28", it.Days[0].Date)
}

func TestGenerateProviderFailureMarksFailed(t *testing.T) {
	p := New(Options{
		Flights: &fakeFlights{err: errors.New("boom")},
		Logger:  logger.NewTestLogger(t),
		Now:     fixedNow,
	})

	it, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeFailed, it.DataSources[models.CategoryFlights])
	assert.NotEmpty(t, it.Flights, "failed category still gets sample data")
}

func TestGenerateProviderLiveData(t *testing.T) {
	live := []models.Flight{{Airline: "Air France", Price: 645.30, EmissionsKg: 310}}
	p := New(Options{
		Flights: &fakeFlights{flights: live},
		Logger:  logger.NewTestLogger(t),
		Now:     fixedNow,
	})

	it, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeLive, it.DataSources[models.CategoryFlights])
	assert.Equal(t, live, it.Flights)
}

func TestGenerateUsesModelDays(t *testing.T) {
	model := &fakeCompleter{response: `{
		"days": [
			{"day": 1, "morning": "Walk the Seine", "afternoon": "Louvre Museum", "evening": "Dinner in Le Marais"},
			{"day": 2, "morning": "Jardin du Luxembourg", "afternoon": "Musée d'Orsay", "evening": "Seine river cruise"},
			{"day": 3, "morning": "Montmartre walk", "afternoon": "Local market tour", "evening": "Farewell dinner"}
		],
		"totals": {"cost": 1800, "emissions_kg": 260},
		"rationale": "Balanced culture and outdoor time."
	}`}

	p := New(Options{LLM: model, Logger: logger.NewTestLogger(t), Now: fixedNow})

	it, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)

	assert.True(t, model.called)
	assert.Equal(t, "Walk the Seine", it.Days[0].Morning.Activity)
	assert.Equal(t, "Balanced culture and outdoor time.", it.Rationale)
	assert.NotEqual(t, 1800.0, it.TotalCost, "totals come from candidate data, not the model")
}

func TestGenerateModelBadShapeFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I suggest a lovely trip to Paris!"},
		{"wrong day count", `{"days":[{"day":1,"morning":"a","afternoon":"b","evening":"c"}],"totals":{"cost":1,"emissions_kg":1},"rationale":"r"}`},
		{"empty slot", `{"days":[
			{"day":1,"morning":"a","afternoon":"b","evening":"c"},
			{"day":2,"morning":"","afternoon":"b","evening":"c"},
			{"day":3,"morning":"a","afternoon":"b","evening":"c"}
		],"totals":{"cost":1,"emissions_kg":1},"rationale":"r"}`},
		{"missing totals", `{"days":[
			{"day":1,"morning":"a","afternoon":"b","evening":"c"},
			{"day":2,"morning":"a","afternoon":"b","evening":"c"},
			{"day":3,"morning":"a","afternoon":"b","evening":"c"}
		],"rationale":"r"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{
				LLM:    &fakeCompleter{response: tt.response},
				Logger: logger.NewTestLogger(t),
				Now:    fixedNow,
			})

			it, err := p.Generate(context.Background(), testRequest(), "")
			require.NoError(t, err, "shape failures degrade, never fail the run")
			require.Len(t, it.Days, 3)
			for _, d := range it.Days {
				assert.NotEmpty(t, d.Morning.Activity)
				assert.NotEmpty(t, d.Afternoon.Activity)
				assert.NotEmpty(t, d.Evening.Activity)
			}
		})
	}
}

func TestGenerateModelErrorFallsBack(t *testing.T) {
	p := New(Options{
		LLM:    &fakeCompleter{err: errors.New("rate limited")},
		Logger: logger.NewTestLogger(t),
		Now:    fixedNow,
	})

	it, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)
	require.Len(t, it.Days, 3)
}

func TestGenerateCancelledContext(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, testRequest(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateDeterministicWithoutModel(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	a, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)
	b, err := p.Generate(context.Background(), testRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerateCostWithinBudgetForSampleData(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t), Now: fixedNow})

	req := testRequest()
	req.Budget = 5000

	it, err := p.Generate(context.Background(), req, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, it.TotalCost, req.Budget)
}
