package match

import (
	"context"
	"log/slog"
	"strings"

	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/engine/keyword"
)

// Effective is the constraint set actually checked per listing: explicit
// criteria fields, backfilled from the keyword extractor where absent.
type Effective struct {
	Make     string
	Model    string
	Year     int
	MinMiles *int
	MaxMiles *int
}

// Active reports whether any vehicle constraint is in force. With none
// active, every non-part listing passes (no-filter mode).
func (e Effective) Active() bool {
	return e.Make != "" || e.Model != "" || e.Year != 0 ||
		e.MinMiles != nil || e.MaxMiles != nil
}

// EffectiveFrom builds the effective constraints for a search: explicit
// make/model win; missing ones are inferred from the query text.
func EffectiveFrom(c domain.Criteria, ex keyword.Extractor) Effective {
	eff := Effective{
		Make:     c.Make,
		Model:    c.Model,
		Year:     c.Year,
		MinMiles: c.MinMiles,
		MaxMiles: c.MaxMiles,
	}
	if (eff.Make == "" || eff.Model == "") && c.Query != "" && ex != nil {
		qMake, qModel := ex.Extract(c.Query)
		if eff.Make == "" {
			eff.Make = qMake
		}
		if eff.Model == "" {
			eff.Model = qModel
		}
	}
	return eff
}

// NeedsDetails is the resolver's fetch gate: a detail fetch is warranted
// only when a mileage bound is in force (mileage never appears in titles)
// or when the title missed a requested make, model, or year that resolved
// attributes might still rescue.
func NeedsDetails(sig Signal, eff Effective) bool {
	switch {
	case eff.MinMiles != nil || eff.MaxMiles != nil:
		return true
	case (eff.Make != "" && !sig.HasMake) || (eff.Model != "" && !sig.HasModel):
		return true
	case eff.Year != 0 && !sig.HasYear:
		return true
	}
	return false
}

// AttributeSource resolves normalized vehicle attributes for a listing.
// Implementations are expected to be expensive; the evaluator consults it
// only when NeedsDetails says so.
type AttributeSource interface {
	Resolve(ctx context.Context, listingID string) (*domain.VehicleAttributes, error)
}

// EvidencePolicy is the accept/reject rule: title evidence OR attribute
// evidence establishes a field match, and year/mileage are enforced strictly
// only when resolved data for them is present. Unverifiable data never
// excludes a listing on its own.
//
// This is the crux of the engine; keep changes here deliberate.
type EvidencePolicy struct{}

// Decide returns the accept verdict for one listing given its title signal
// and whatever attributes were resolvable (attrs may be nil).
func (EvidencePolicy) Decide(sig Signal, attrs *domain.VehicleAttributes, eff Effective) bool {
	makeMatch := eff.Make == ""
	if !makeMatch {
		makeMatch = sig.HasMake
		if !makeMatch && attrs != nil && attrs.Make != "" {
			makeMatch = makeMatches(strings.ToUpper(attrs.Make), eff.Make)
		}
	}

	modelMatch := eff.Model == ""
	if !modelMatch {
		modelMatch = sig.HasModel
		if !modelMatch && attrs != nil && attrs.Model != "" {
			modelMatch = containsAnyVariant(strings.ToUpper(attrs.Model), eff.Model)
		}
	}

	yearMatch := eff.Year == 0
	if !yearMatch {
		if sig.HasYear {
			yearMatch = true
		} else if attrs != nil && attrs.Year != 0 {
			yearMatch = attrs.Year == eff.Year
		}
	}

	// Mileage bounds are enforced only against resolved mileage, including a
	// resolved zero. A listing with no resolvable mileage is never excluded
	// on mileage.
	if (eff.MinMiles != nil || eff.MaxMiles != nil) && attrs != nil && attrs.Miles != nil {
		if eff.MaxMiles != nil && *attrs.Miles > *eff.MaxMiles {
			return false
		}
		if eff.MinMiles != nil && *attrs.Miles < *eff.MinMiles {
			return false
		}
	}

	// Fully resolved attributes: require year, make, and model to agree
	// simultaneously. On disagreement fall through to the title path rather
	// than rejecting outright.
	if attrs != nil && attrs.Year != 0 && attrs.Make != "" && attrs.Model != "" {
		if yearMatch && makeMatch && modelMatch {
			return true
		}
	}

	if makeMatch && modelMatch {
		// Year is strict only when a resolved attribute year exists.
		if eff.Year != 0 && attrs != nil && attrs.Year != 0 && !yearMatch {
			return false
		}
		return true
	}

	return false
}

// Evaluator runs the full per-listing decision: parts exclusion, title
// matching, conditional attribute resolution, and the evidence policy.
type Evaluator struct {
	attrs  AttributeSource
	policy EvidencePolicy
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator. attrs may be nil, in which case the
// evaluator runs title-only. A nil logger falls back to slog.Default().
func NewEvaluator(attrs AttributeSource, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{attrs: attrs, logger: logger}
}

// Evaluate decides accept/reject for one listing and attaches resolved
// attributes to the listing as a side effect. It never returns an error: a
// failed detail fetch degrades to title-only evidence.
func (e *Evaluator) Evaluate(ctx context.Context, l *domain.Listing, eff Effective) bool {
	if IsPart(l.Title) {
		e.logger.Debug("excluded parts listing", "listing_id", l.ID, "title", l.Title)
		return false
	}

	sig := Title(l.Title, eff.Make, eff.Model, eff.Year)

	if !eff.Active() {
		return true
	}

	// Attributes attached earlier in this search call stay valid; otherwise
	// resolve only when the fetch gate says the expense is warranted.
	attrs := l.Attributes
	if attrs == nil && e.attrs != nil && NeedsDetails(sig, eff) {
		resolved, err := e.attrs.Resolve(ctx, l.ID)
		if err != nil {
			e.logger.Debug("details unavailable, using title evidence only",
				"listing_id", l.ID, "err", err)
		} else {
			attrs = resolved
		}
	}

	accepted := e.policy.Decide(sig, attrs, eff)
	if attrs != nil {
		l.Attributes = attrs
	}
	return accepted
}
