package models

// Set is a card set from the Pokemon TCG catalog.
type Set struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Series      string `json:"series"`
	ReleaseDate string `json:"release_date"`
	TotalCards  int    `json:"total_cards"`
	LogoURL     string `json:"logo_url"`
	SymbolURL   string `json:"symbol_url"`
}

// Card is an immutable catalog entry. Cards are written only by the ingest
// worker; everything else reads them.
type Card struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"not null;index"`
	Supertype  string          `json:"supertype"`
	Subtypes   string          `json:"subtypes"`
	HP         string          `json:"hp"`
	Types      string          `json:"types"`
	Rarity     string          `json:"rarity" gorm:"index"`
	Number     string          `json:"number"`
	Artist     string          `json:"artist"`
	ImageSmall string          `json:"image_small"`
	ImageLarge string          `json:"image_large"`
	SetID      string          `json:"set_id" gorm:"index"`
	Set        *Set            `json:"set,omitempty" gorm:"foreignKey:SetID"`
	Snapshots  []PriceSnapshot `json:"price_snapshots,omitempty" gorm:"foreignKey:CardID"`
}

// CardPage is a single page of catalog search results.
type CardPage struct {
	Items []Card `json:"items"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}
