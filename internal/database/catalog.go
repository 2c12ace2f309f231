package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mwilcox/tcg-arbitrage/internal/arbitrage"
	"github.com/mwilcox/tcg-arbitrage/internal/models"
)

// Catalog is the gorm-backed card store. It satisfies the arbitrage engine's
// read port and carries the card/set queries used by the HTTP handlers plus
// the write paths used by the ingest worker.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// FindCards returns all cards matching the filter, with their set preloaded.
// Empty filter fields match everything.
func (c *Catalog) FindCards(ctx context.Context, filter arbitrage.CardFilter) ([]models.Card, error) {
	query := c.db.WithContext(ctx).Preload("Set")
	if filter.SetID != "" {
		query = query.Where("set_id = ?", filter.SetID)
	}
	if filter.Rarity != "" {
		query = query.Where("rarity = ?", filter.Rarity)
	}

	var cards []models.Card
	if err := query.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// LatestSnapshot returns the card's most recent price snapshot, or nil when
// the card has no price history.
func (c *Catalog) LatestSnapshot(ctx context.Context, cardID string) (*models.PriceSnapshot, error) {
	var snapshot models.PriceSnapshot
	err := c.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CardSearch describes one paged card listing request.
type CardSearch struct {
	Page   int
	Limit  int
	SetID  string
	Rarity string
	Search string // case-insensitive name substring
}

// SearchCards returns one page of cards matching the search.
func (c *Catalog) SearchCards(ctx context.Context, search CardSearch) (*models.CardPage, error) {
	query := c.db.WithContext(ctx).Model(&models.Card{})
	if search.SetID != "" {
		query = query.Where("set_id = ?", search.SetID)
	}
	if search.Rarity != "" {
		query = query.Where("rarity = ?", search.Rarity)
	}
	if search.Search != "" {
		query = query.Where("name LIKE ?", "%"+search.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var cards []models.Card
	err := query.Preload("Set").
		Offset((search.Page - 1) * search.Limit).
		Limit(search.Limit).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(search.Limit) - 1) / int64(search.Limit))
	return &models.CardPage{
		Items: cards,
		Total: total,
		Page:  search.Page,
		Pages: pages,
	}, nil
}

// GetCard returns a card with its set and full price history, newest first.
// Returns nil when the card is unknown.
func (c *Catalog) GetCard(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	err := c.db.WithContext(ctx).
		Preload("Set").
		Preload("Snapshots", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&card, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// ListSets returns all sets, newest release first.
func (c *Catalog) ListSets(ctx context.Context) ([]models.Set, error) {
	var sets []models.Set
	if err := c.db.WithContext(ctx).Order("release_date DESC").Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

// SaveSet inserts or updates a set.
func (c *Catalog) SaveSet(ctx context.Context, set *models.Set) error {
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(set).Error
}

// SaveCards inserts or updates a batch of cards.
func (c *Catalog) SaveCards(ctx context.Context, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).
		Omit("Set", "Snapshots").
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&cards).Error
}

// AppendSnapshot appends one price observation to a card's history.
func (c *Catalog) AppendSnapshot(ctx context.Context, snapshot *models.PriceSnapshot) error {
	return c.db.WithContext(ctx).Create(snapshot).Error
}
