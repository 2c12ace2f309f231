package models

import (
	"time"
)

// PriceSnapshot is one point-in-time price observation for a card.
// TCGplayer prices are USD, Cardmarket prices are EUR. A nil field means
// the marketplace had no quote at observation time; zero is a real price.
// Snapshots are append-only and the latest one is the row with the greatest
// CreatedAt.
type PriceSnapshot struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	CardID          string    `json:"card_id" gorm:"not null;index:idx_snapshots_card_created"`
	TCGPlayerMarket *float64  `json:"tcgplayer_market"`
	TCGPlayerLow    *float64  `json:"tcgplayer_low"`
	TCGPlayerMid    *float64  `json:"tcgplayer_mid"`
	TCGPlayerHigh   *float64  `json:"tcgplayer_high"`
	CardmarketAvg   *float64  `json:"cardmarket_avg"`
	CardmarketLow   *float64  `json:"cardmarket_low"`
	CardmarketTrend *float64  `json:"cardmarket_trend"`
	CreatedAt       time.Time `json:"created_at" gorm:"index:idx_snapshots_card_created"`
}

// HasPricePair reports whether both marketplaces quoted this snapshot.
// Only snapshots with both sides can produce a cross-market signal.
func (s *PriceSnapshot) HasPricePair() bool {
	return s.TCGPlayerMarket != nil && s.CardmarketAvg != nil
}
