// Package arbitrage detects cross-market price differences between
// TCGplayer (USD) and Cardmarket (EUR) for cards in the catalog.
package arbitrage

import (
	"math"

	"github.com/mwilcox/tcg-arbitrage/internal/models"
)

// Evaluate computes the arbitrage signal for a card from its latest price
// snapshot and the EUR to USD exchange rate. It returns nil when the card has
// no snapshot or the snapshot is missing a quote on either marketplace; a
// one-sided quote cannot produce a cross-market signal.
//
// Evaluate is pure: no state, no I/O, no error returns. Absence is the single
// "nothing to report" outcome.
func Evaluate(card models.Card, latest *models.PriceSnapshot, rate float64) *models.Opportunity {
	if latest == nil || !latest.HasPricePair() {
		return nil
	}

	tcgUSD := *latest.TCGPlayerMarket
	cmEUR := *latest.CardmarketAvg
	cmUSD := cmEUR * rate

	var direction models.Direction
	var spread, roiBase float64
	if tcgUSD < cmUSD {
		direction = models.DirectionBuyTCGSellCM
		spread = cmUSD - tcgUSD
		roiBase = tcgUSD
	} else {
		// Equal prices land here: zero spread, zero ROI.
		direction = models.DirectionBuyCMSellTCG
		spread = tcgUSD - cmUSD
		roiBase = cmUSD
	}

	// A zero buy-side price is valid data, not an error; it just yields no ROI.
	roi := 0.0
	if roiBase > 0 {
		roi = (spread / roiBase) * 100
	}

	setName := "Unknown"
	if card.Set != nil {
		setName = card.Set.Name
	}

	return &models.Opportunity{
		CardID:        card.ID,
		CardName:      card.Name,
		SetName:       setName,
		Rarity:        card.Rarity,
		ImageSmall:    card.ImageSmall,
		TCGPlayerUSD:  tcgUSD,
		CardmarketEUR: cmEUR,
		CardmarketUSD: round2(cmUSD),
		Spread:        round2(spread),
		ROIPercent:    round2(roi),
		Direction:     direction,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
