package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/mwilcox/tcg-arbitrage/internal/metrics"
	"github.com/mwilcox/tcg-arbitrage/internal/models"
)

const (
	tcgioBaseURL        = "https://api.pokemontcg.io/v2"
	tcgioDefaultTimeout = 30 * time.Second
	tcgioPageSize       = 250
	tcgioSetCacheSize   = 64
)

// TCGioService fetches catalog and price data from the pokemontcg.io API.
// Card responses carry both a TCGplayer (USD) and a Cardmarket (EUR) price
// block, which is what feeds the snapshot log. Outbound calls are rate
// limited; set metadata is cached since it changes rarely.
type TCGioService struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	limiter  *rate.Limiter
	setCache *lru.Cache[string, models.Set]
}

func NewTCGioService(apiKey string) (*TCGioService, error) {
	setCache, err := lru.New[string, models.Set](tcgioSetCacheSize)
	if err != nil {
		return nil, err
	}

	return &TCGioService{
		client: &http.Client{
			Timeout: tcgioDefaultTimeout,
		},
		apiKey:  apiKey,
		baseURL: tcgioBaseURL,
		// pokemontcg.io allows a generous quota with a key; 2 req/s keeps
		// even keyless use well inside it.
		limiter:  rate.NewLimiter(rate.Limit(2), 5),
		setCache: setCache,
	}, nil
}

type tcgioSetResponse struct {
	Data tcgioSet `json:"data"`
}

type tcgioCardsResponse struct {
	Data       []tcgioCard `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Count      int         `json:"count"`
	TotalCount int         `json:"totalCount"`
}

type tcgioSet struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Series      string      `json:"series"`
	ReleaseDate string      `json:"releaseDate"`
	Total       int         `json:"total"`
	Images      tcgioImages `json:"images"`
}

type tcgioCard struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Supertype  string           `json:"supertype"`
	Subtypes   []string         `json:"subtypes"`
	HP         string           `json:"hp"`
	Types      []string         `json:"types"`
	Rarity     string           `json:"rarity"`
	Number     string           `json:"number"`
	Artist     string           `json:"artist"`
	Set        tcgioSet         `json:"set"`
	Images     tcgioCardImages  `json:"images"`
	TCGPlayer  *tcgioTCGPlayer  `json:"tcgplayer"`
	Cardmarket *tcgioCardmarket `json:"cardmarket"`
}

type tcgioImages struct {
	Symbol string `json:"symbol"`
	Logo   string `json:"logo"`
}

type tcgioCardImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type tcgioTCGPlayer struct {
	URL       string                   `json:"url"`
	UpdatedAt string                   `json:"updatedAt"`
	Prices    map[string]tcgioPriceSet `json:"prices"`
}

type tcgioPriceSet struct {
	Low    float64 `json:"low"`
	Mid    float64 `json:"mid"`
	High   float64 `json:"high"`
	Market float64 `json:"market"`
}

type tcgioCardmarket struct {
	URL    string        `json:"url"`
	Prices tcgioCMPrices `json:"prices"`
}

type tcgioCMPrices struct {
	AverageSellPrice float64 `json:"averageSellPrice"`
	LowPrice         float64 `json:"lowPrice"`
	TrendPrice       float64 `json:"trendPrice"`
}

// CardRecord pairs an ingested card with the price observation taken from the
// same API response. Snapshot is nil when neither marketplace quoted the card.
type CardRecord struct {
	Card     models.Card
	Snapshot *models.PriceSnapshot
}

// GetSet fetches set metadata, serving repeats from the LRU cache.
func (s *TCGioService) GetSet(ctx context.Context, id string) (*models.Set, error) {
	if cached, ok := s.setCache.Get(id); ok {
		return &cached, nil
	}

	var setResp tcgioSetResponse
	if err := s.get(ctx, fmt.Sprintf("%s/sets/%s", s.baseURL, id), &setResp); err != nil {
		return nil, fmt.Errorf("fetching set %s: %w", id, err)
	}

	set := convertSet(setResp.Data)
	s.setCache.Add(id, set)
	return &set, nil
}

// GetCardsBySet fetches every card in a set, following API pagination.
func (s *TCGioService) GetCardsBySet(ctx context.Context, setID string) ([]CardRecord, error) {
	var records []CardRecord

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("set.id:%s", setID))
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("pageSize", fmt.Sprintf("%d", tcgioPageSize))

		var cardsResp tcgioCardsResponse
		reqURL := fmt.Sprintf("%s/cards?%s", s.baseURL, params.Encode())
		if err := s.get(ctx, reqURL, &cardsResp); err != nil {
			return nil, fmt.Errorf("fetching cards for set %s page %d: %w", setID, page, err)
		}

		for _, tc := range cardsResp.Data {
			records = append(records, convertCard(tc))
		}

		if cardsResp.Page*cardsResp.PageSize >= cardsResp.TotalCount {
			break
		}
	}

	return records, nil
}

func (s *TCGioService) get(ctx context.Context, reqURL string, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.TCGioRequestsTotal.Inc()
	metrics.TCGioRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to call pokemontcg.io: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pokemontcg.io returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode pokemontcg.io response: %w", err)
	}
	return nil
}

func convertSet(ts tcgioSet) models.Set {
	return models.Set{
		ID:          ts.ID,
		Name:        ts.Name,
		Series:      ts.Series,
		ReleaseDate: ts.ReleaseDate,
		TotalCards:  ts.Total,
		LogoURL:     ts.Images.Logo,
		SymbolURL:   ts.Images.Symbol,
	}
}

func convertCard(tc tcgioCard) CardRecord {
	record := CardRecord{
		Card: models.Card{
			ID:         tc.ID,
			Name:       tc.Name,
			Supertype:  tc.Supertype,
			Subtypes:   strings.Join(tc.Subtypes, ","),
			HP:         tc.HP,
			Types:      strings.Join(tc.Types, ","),
			Rarity:     tc.Rarity,
			Number:     tc.Number,
			Artist:     tc.Artist,
			ImageSmall: tc.Images.Small,
			ImageLarge: tc.Images.Large,
			SetID:      tc.Set.ID,
		},
	}

	snapshot := models.PriceSnapshot{CardID: tc.ID}
	quoted := false

	if tc.TCGPlayer != nil {
		if prices, ok := pickTCGPlayerPrices(tc.TCGPlayer.Prices); ok {
			snapshot.TCGPlayerMarket = pricePtr(prices.Market)
			snapshot.TCGPlayerLow = pricePtr(prices.Low)
			snapshot.TCGPlayerMid = pricePtr(prices.Mid)
			snapshot.TCGPlayerHigh = pricePtr(prices.High)
			quoted = quoted || snapshot.TCGPlayerMarket != nil || snapshot.TCGPlayerLow != nil ||
				snapshot.TCGPlayerMid != nil || snapshot.TCGPlayerHigh != nil
		}
	}

	if tc.Cardmarket != nil {
		snapshot.CardmarketAvg = pricePtr(tc.Cardmarket.Prices.AverageSellPrice)
		snapshot.CardmarketLow = pricePtr(tc.Cardmarket.Prices.LowPrice)
		snapshot.CardmarketTrend = pricePtr(tc.Cardmarket.Prices.TrendPrice)
		quoted = quoted || snapshot.CardmarketAvg != nil || snapshot.CardmarketLow != nil ||
			snapshot.CardmarketTrend != nil
	}

	if quoted {
		record.Snapshot = &snapshot
	}
	return record
}

// pickTCGPlayerPrices selects the price set for the card's primary printing.
// TCGplayer keys prices by variant; "normal" is preferred, then "holofoil",
// then whatever the API returned.
func pickTCGPlayerPrices(prices map[string]tcgioPriceSet) (tcgioPriceSet, bool) {
	if len(prices) == 0 {
		return tcgioPriceSet{}, false
	}
	if ps, ok := prices["normal"]; ok {
		return ps, true
	}
	if ps, ok := prices["holofoil"]; ok {
		return ps, true
	}
	if ps, ok := prices["reverseHolofoil"]; ok {
		return ps, true
	}
	for _, ps := range prices {
		return ps, true
	}
	return tcgioPriceSet{}, false
}

// pricePtr maps the API's zero-value placeholder to "unquoted". The API omits
// prices it has no data for, which decodes as 0; a real listing is never free.
func pricePtr(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
