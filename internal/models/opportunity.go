package models

// Direction identifies the buy side of an arbitrage signal.
type Direction string

const (
	// DirectionBuyTCGSellCM means buy on TCGplayer, sell on Cardmarket.
	DirectionBuyTCGSellCM Direction = "buy_tcg_sell_cm"

	// DirectionBuyCMSellTCG means buy on Cardmarket, sell on TCGplayer.
	DirectionBuyCMSellTCG Direction = "buy_cm_sell_tcg"
)

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionBuyTCGSellCM:
		return "Buy on TCGplayer, sell on Cardmarket"
	case DirectionBuyCMSellTCG:
		return "Buy on Cardmarket, sell on TCGplayer"
	default:
		return "Unknown"
	}
}

// Opportunity is a cross-market arbitrage signal for a single card.
// It is derived from the card's latest price snapshot on every query and is
// never persisted. CardmarketUSD, Spread, and ROIPercent are rounded to two
// decimal places.
type Opportunity struct {
	CardID        string    `json:"card_id"`
	CardName      string    `json:"card_name"`
	SetName       string    `json:"set_name"`
	Rarity        string    `json:"rarity"`
	ImageSmall    string    `json:"image_small"`
	TCGPlayerUSD  float64   `json:"tcgplayer_usd"`
	CardmarketEUR float64   `json:"cardmarket_eur"`
	CardmarketUSD float64   `json:"cardmarket_usd"`
	Spread        float64   `json:"spread"`
	ROIPercent    float64   `json:"roi_percent"`
	Direction     Direction `json:"direction"`
}
