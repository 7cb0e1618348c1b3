package match

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/engine/keyword"
)

// stubSource returns canned attributes per listing ID and records calls.
type stubSource struct {
	attrs map[string]*domain.VehicleAttributes
	err   error
	calls int
}

func (s *stubSource) Resolve(_ context.Context, listingID string) (*domain.VehicleAttributes, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.attrs[listingID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func intPtr(v int) *int { return &v }

func TestEffectiveFromBackfillsFromQuery(t *testing.T) {
	ex := keyword.NewVocabExtractor()

	c := domain.Criteria{Query: "CLS63 Mercedes 2014"}
	eff := EffectiveFrom(c, ex)
	if eff.Make != "MERCEDES" || eff.Model != "CLS63" {
		t.Errorf("got make=%q model=%q, want MERCEDES/CLS63", eff.Make, eff.Model)
	}

	// Explicit fields win over extraction.
	c = domain.Criteria{Query: "CLS63 Mercedes", Make: "HONDA", Model: "CIVIC"}
	eff = EffectiveFrom(c, ex)
	if eff.Make != "HONDA" || eff.Model != "CIVIC" {
		t.Errorf("explicit fields overridden: make=%q model=%q", eff.Make, eff.Model)
	}

	// Partial backfill: explicit make kept, model taken from query.
	c = domain.Criteria{Query: "CLS63 coupe", Make: "MERCEDES"}
	eff = EffectiveFrom(c, ex)
	if eff.Make != "MERCEDES" || eff.Model != "CLS63" {
		t.Errorf("partial backfill: make=%q model=%q", eff.Make, eff.Model)
	}
}

func TestNeedsDetails(t *testing.T) {
	tests := []struct {
		name string
		sig  Signal
		eff  Effective
		want bool
	}{
		{
			name: "mileage bound always needs details",
			sig:  Signal{HasMake: true, HasModel: true, HasYear: true},
			eff:  Effective{Make: "HONDA", Model: "CIVIC", Year: 2015, MaxMiles: intPtr(50000)},
			want: true,
		},
		{
			name: "title satisfied everything, no bounds",
			sig:  Signal{HasMake: true, HasModel: true, HasYear: true},
			eff:  Effective{Make: "HONDA", Model: "CIVIC", Year: 2015},
			want: false,
		},
		{
			name: "title missed make",
			sig:  Signal{HasModel: true},
			eff:  Effective{Make: "HONDA", Model: "CIVIC"},
			want: true,
		},
		{
			name: "title missed model",
			sig:  Signal{HasMake: true},
			eff:  Effective{Make: "HONDA", Model: "CIVIC"},
			want: true,
		},
		{
			name: "title missed year",
			sig:  Signal{HasMake: true, HasModel: true},
			eff:  Effective{Make: "HONDA", Model: "CIVIC", Year: 2015},
			want: true,
		},
		{
			name: "no constraints",
			sig:  Signal{},
			eff:  Effective{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsDetails(tt.sig, tt.eff); got != tt.want {
				t.Errorf("NeedsDetails() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluatePartsExcludedUnconditionally(t *testing.T) {
	src := &stubSource{attrs: map[string]*domain.VehicleAttributes{
		"p1": {Year: 2014, Make: "MERCEDES", Model: "CLS63", Miles: intPtr(20000)},
	}}
	e := NewEvaluator(src, testLogger())
	l := &domain.Listing{ID: "p1", Title: "2014 Mercedes CLS63 OEM bumper"}
	eff := Effective{Make: "MERCEDES", Model: "CLS63", Year: 2014}

	if e.Evaluate(context.Background(), l, eff) {
		t.Error("parts listing accepted despite matching all constraints")
	}
	if src.calls != 0 {
		t.Error("parts exclusion should short-circuit before resolving details")
	}
}

func TestEvaluateNoConstraintsAcceptsAll(t *testing.T) {
	e := NewEvaluator(&stubSource{}, testLogger())
	l := &domain.Listing{ID: "x", Title: "random project car runs great"}

	if !e.Evaluate(context.Background(), l, Effective{}) {
		t.Error("listing rejected with no constraints active")
	}
}

func TestEvaluateMileageBound(t *testing.T) {
	src := &stubSource{attrs: map[string]*domain.VehicleAttributes{
		"over":  {Year: 2015, Make: "HONDA", Model: "CIVIC", Miles: intPtr(45000)},
		"under": {Year: 2015, Make: "HONDA", Model: "CIVIC", Miles: intPtr(25000)},
		"none":  {Year: 2015, Make: "HONDA", Model: "CIVIC"},
	}}
	e := NewEvaluator(src, testLogger())
	eff := Effective{Make: "HONDA", Model: "CIVIC", MaxMiles: intPtr(30000)}

	over := &domain.Listing{ID: "over", Title: "2015 Honda Civic EX"}
	if e.Evaluate(context.Background(), over, eff) {
		t.Error("accepted listing with 45000 miles against 30000 cap")
	}

	under := &domain.Listing{ID: "under", Title: "2015 Honda Civic EX"}
	if !e.Evaluate(context.Background(), under, eff) {
		t.Error("rejected listing within mileage cap")
	}

	// Unresolvable mileage cannot exclude the listing.
	none := &domain.Listing{ID: "none", Title: "2015 Honda Civic EX"}
	if !e.Evaluate(context.Background(), none, eff) {
		t.Error("rejected listing whose mileage is unknown")
	}
}

func TestEvaluateMinMileageBound(t *testing.T) {
	src := &stubSource{attrs: map[string]*domain.VehicleAttributes{
		"low": {Make: "HONDA", Model: "CIVIC", Miles: intPtr(5000)},
	}}
	e := NewEvaluator(src, testLogger())
	eff := Effective{Make: "HONDA", Model: "CIVIC", MinMiles: intPtr(10000)}

	l := &domain.Listing{ID: "low", Title: "2015 Honda Civic EX"}
	if e.Evaluate(context.Background(), l, eff) {
		t.Error("accepted listing below the mileage floor")
	}
}

func TestEvaluateZeroMilesIsARealReading(t *testing.T) {
	src := &stubSource{attrs: map[string]*domain.VehicleAttributes{
		"zero": {Make: "HONDA", Model: "CIVIC", Miles: intPtr(0)},
	}}
	e := NewEvaluator(src, testLogger())
	eff := Effective{Make: "HONDA", Model: "CIVIC", MinMiles: intPtr(10000)}

	// A resolved zero is a reported value, not missing data, and violates
	// the floor.
	l := &domain.Listing{ID: "zero", Title: "2024 Honda Civic, brand new"}
	if e.Evaluate(context.Background(), l, eff) {
		t.Error("accepted zero-mile listing against a mileage floor")
	}
}

func TestEvaluateFetchFailureFallsBackToTitle(t *testing.T) {
	src := &stubSource{err: errors.New("upstream 503")}
	e := NewEvaluator(src, testLogger())

	// Title carries make, model, and year; attribute failure is benign.
	l := &domain.Listing{ID: "a", Title: "2014 Mercedes-Benz CLS63 AMG"}
	eff := Effective{Make: "MERCEDES", Model: "CLS63", Year: 2014}
	if !e.Evaluate(context.Background(), l, eff) {
		t.Error("rejected despite full title evidence")
	}

	// Title misses the model and the fetch failed: nothing establishes it.
	l2 := &domain.Listing{ID: "b", Title: "2014 Mercedes-Benz AMG"}
	if e.Evaluate(context.Background(), l2, eff) {
		t.Error("accepted with model unestablished by any evidence")
	}
}

func TestEvaluateSpacedTitleSpellingSurvivesFetchFailure(t *testing.T) {
	src := &stubSource{err: errors.New("upstream 503")}
	e := NewEvaluator(src, testLogger())

	// The title spells the model "CLS 63" while the request says "CLS63".
	// Every field is on the title, so the failed fetch cannot matter and no
	// fetch should even be attempted.
	l := &domain.Listing{ID: "a", Title: "2014 Mercedes-Benz CLS 63 AMG"}
	eff := Effective{Make: "MERCEDES", Model: "CLS63", Year: 2014}
	if !e.Evaluate(context.Background(), l, eff) {
		t.Error("rejected despite full title evidence in a spaced spelling")
	}
	if src.calls != 0 {
		t.Errorf("resolved %d times with the title fully satisfied", src.calls)
	}
}

func TestEvaluateAttributesRescueTitleMiss(t *testing.T) {
	src := &stubSource{attrs: map[string]*domain.VehicleAttributes{
		"r1": {Year: 2014, Make: "Mercedes-Benz", Model: "CLS 63", Miles: intPtr(30000)},
	}}
	e := NewEvaluator(src, testLogger())

	l := &domain.Listing{ID: "r1", Title: "Gorgeous AMG coupe, must see"}
	eff := Effective{Make: "MERCEDES", Model: "CLS63", Year: 2014}
	if !e.Evaluate(context.Background(), l, eff) {
		t.Error("rejected listing whose attributes match every constraint")
	}
	if l.Attributes == nil {
		t.Error("resolved attributes were not attached to the listing")
	}
}

func TestEvaluateYearStrictOnlyWithResolvedYear(t *testing.T) {
	src := &stubSource{attrs: map[string]*domain.VehicleAttributes{
		"wrongyear": {Year: 2012, Make: "HONDA", Model: "CIVIC"},
		"noyear":    {Make: "HONDA", Model: "CIVIC"},
	}}
	e := NewEvaluator(src, testLogger())
	eff := Effective{Make: "HONDA", Model: "CIVIC", Year: 2015}

	// Resolved year contradicts the request: strict rejection.
	l := &domain.Listing{ID: "wrongyear", Title: "Honda Civic EX low miles"}
	if e.Evaluate(context.Background(), l, eff) {
		t.Error("accepted listing whose resolved year contradicts the request")
	}

	// No year anywhere: make/model evidence alone carries it.
	l2 := &domain.Listing{ID: "noyear", Title: "Honda Civic EX low miles"}
	if !e.Evaluate(context.Background(), l2, eff) {
		t.Error("rejected listing whose year is simply unknown")
	}
}

func TestEvaluateReusesAttachedAttributes(t *testing.T) {
	src := &stubSource{}
	e := NewEvaluator(src, testLogger())

	l := &domain.Listing{
		ID:    "pre",
		Title: "Clean sedan",
		Attributes: &domain.VehicleAttributes{
			Year: 2015, Make: "HONDA", Model: "CIVIC", Miles: intPtr(20000),
		},
	}
	eff := Effective{Make: "HONDA", Model: "CIVIC", Year: 2015}

	if !e.Evaluate(context.Background(), l, eff) {
		t.Error("rejected listing with matching pre-attached attributes")
	}
	if src.calls != 0 {
		t.Errorf("resolved %d times despite attached attributes", src.calls)
	}
}

func TestEvaluateNilSourceIsTitleOnly(t *testing.T) {
	e := NewEvaluator(nil, testLogger())
	l := &domain.Listing{ID: "t", Title: "2015 Honda Civic EX"}
	eff := Effective{Make: "HONDA", Model: "CIVIC", Year: 2015}

	if !e.Evaluate(context.Background(), l, eff) {
		t.Error("rejected on full title evidence with no attribute source")
	}
}

func TestDecideFullAttributeDisagreementFallsThrough(t *testing.T) {
	// Fully resolved attributes disagree on model, but the title carries it.
	var p EvidencePolicy
	sig := Signal{HasMake: true, HasModel: true}
	attrs := &domain.VehicleAttributes{Year: 2015, Make: "HONDA", Model: "ACCORD"}
	eff := Effective{Make: "HONDA", Model: "CIVIC"}

	if !p.Decide(sig, attrs, eff) {
		t.Error("title evidence should carry despite attribute disagreement")
	}
}
