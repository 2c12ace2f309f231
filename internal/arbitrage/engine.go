package arbitrage

import (
	"context"
	"fmt"
	"sort"

	"github.com/mwilcox/tcg-arbitrage/internal/models"
)

// SortKey selects the field used to order opportunity results descending.
type SortKey string

const (
	SortByROI    SortKey = "roi"
	SortBySpread SortKey = "spread"
	SortByPrice  SortKey = "price"
)

// Valid reports whether the key is one of the three supported sort fields.
func (k SortKey) Valid() bool {
	switch k {
	case SortByROI, SortBySpread, SortByPrice:
		return true
	}
	return false
}

// Result limit bounds for opportunity queries.
const (
	MinLimit = 1
	MaxLimit = 200
)

// CardFilter narrows the candidate card set. Empty fields match everything;
// non-empty fields are exact matches combined with AND.
type CardFilter struct {
	SetID  string
	Rarity string
}

// Catalog is the read-only card store the engine queries. Implementations own
// their read-consistency guarantees; the engine never writes.
type Catalog interface {
	// FindCards returns all cards matching the filter.
	FindCards(ctx context.Context, filter CardFilter) ([]models.Card, error)

	// LatestSnapshot returns the card's most recent price snapshot, or nil
	// when the card has no price history.
	LatestSnapshot(ctx context.Context, cardID string) (*models.PriceSnapshot, error)
}

// Query describes one opportunity search.
type Query struct {
	SetID  string
	Rarity string
	MinROI float64 // inclusive lower bound on ROI percent
	SortBy SortKey
	Limit  int
}

// Engine finds and ranks arbitrage opportunities across the catalog. It is
// stateless per invocation and safe for concurrent use.
type Engine struct {
	catalog Catalog
	rate    float64 // EUR -> USD
}

// NewEngine creates an engine reading from the given catalog. The exchange
// rate is fixed per engine, not fetched live.
func NewEngine(catalog Catalog, eurUSDRate float64) *Engine {
	return &Engine{
		catalog: catalog,
		rate:    eurUSDRate,
	}
}

// FindOpportunities evaluates every card matching the query's filters against
// its latest snapshot and returns the qualifying signals sorted descending by
// the requested key, truncated to the limit. Invalid query parameters are
// rejected before any catalog work happens.
func (e *Engine) FindOpportunities(ctx context.Context, q Query) ([]models.Opportunity, error) {
	if q.MinROI < 0 {
		return nil, ErrInvalidMinROI
	}
	if q.Limit < MinLimit || q.Limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	if !q.SortBy.Valid() {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSortKey, q.SortBy)
	}

	cards, err := e.catalog.FindCards(ctx, CardFilter{SetID: q.SetID, Rarity: q.Rarity})
	if err != nil {
		return nil, fmt.Errorf("finding candidate cards: %w", err)
	}

	opportunities := make([]models.Opportunity, 0, len(cards))
	for _, card := range cards {
		latest, err := e.catalog.LatestSnapshot(ctx, card.ID)
		if err != nil {
			return nil, fmt.Errorf("loading latest snapshot for card %s: %w", card.ID, err)
		}

		opp := Evaluate(card, latest, e.rate)
		if opp == nil || opp.ROIPercent < q.MinROI {
			continue
		}
		opportunities = append(opportunities, *opp)
	}

	sortValue := func(o models.Opportunity) float64 {
		switch q.SortBy {
		case SortBySpread:
			return o.Spread
		case SortByPrice:
			return o.TCGPlayerUSD
		default:
			return o.ROIPercent
		}
	}
	sort.Slice(opportunities, func(i, j int) bool {
		vi, vj := sortValue(opportunities[i]), sortValue(opportunities[j])
		if vi != vj {
			return vi > vj
		}
		// Deterministic order among equal keys.
		return opportunities[i].CardID < opportunities[j].CardID
	})

	if len(opportunities) > q.Limit {
		opportunities = opportunities[:q.Limit]
	}
	return opportunities, nil
}
