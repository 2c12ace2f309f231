package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestTCGio(t *testing.T, handler http.Handler) (*TCGioService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewTCGioService("test-key")
	if err != nil {
		t.Fatalf("NewTCGioService returned error: %v", err)
	}
	svc.baseURL = server.URL
	return svc, server
}

func TestGetSetCaching(t *testing.T) {
	hits := 0
	svc, _ := newTestTCGio(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/sets/swsh4" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing API key header")
		}
		fmt.Fprint(w, `{"data":{"id":"swsh4","name":"Vivid Voltage","series":"Sword & Shield","releaseDate":"2020/11/13","total":203,"images":{"symbol":"https://example/symbol.png","logo":"https://example/logo.png"}}}`)
	}))

	set, err := svc.GetSet(context.Background(), "swsh4")
	if err != nil {
		t.Fatalf("GetSet returned error: %v", err)
	}
	if set.Name != "Vivid Voltage" || set.Series != "Sword & Shield" || set.TotalCards != 203 {
		t.Errorf("unexpected set conversion: %+v", set)
	}
	if set.LogoURL != "https://example/logo.png" || set.SymbolURL != "https://example/symbol.png" {
		t.Errorf("unexpected image URLs: %+v", set)
	}

	// Second lookup is served from the cache
	if _, err := svc.GetSet(context.Background(), "swsh4"); err != nil {
		t.Fatalf("cached GetSet returned error: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestGetSetErrorStatus(t *testing.T) {
	svc, _ := newTestTCGio(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, err := svc.GetSet(context.Background(), "nope"); err == nil {
		t.Error("GetSet should fail on non-200 response")
	}
}

func TestGetCardsBySetConversion(t *testing.T) {
	svc, _ := newTestTCGio(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"data": [
				{
					"id": "swsh4-25", "name": "Charizard", "supertype": "Pokemon",
					"subtypes": ["Stage 2"], "hp": "170", "types": ["Fire"],
					"rarity": "Rare Holo", "number": "25", "artist": "Mitsuhiro Arita",
					"set": {"id": "swsh4", "name": "Vivid Voltage"},
					"images": {"small": "https://example/25s.png", "large": "https://example/25l.png"},
					"tcgplayer": {"prices": {"normal": {"low": 8.0, "mid": 10.0, "high": 14.0, "market": 9.5}}},
					"cardmarket": {"prices": {"averageSellPrice": 8.2, "lowPrice": 6.9, "trendPrice": 8.4}}
				},
				{
					"id": "swsh4-26", "name": "Holo Only",
					"set": {"id": "swsh4", "name": "Vivid Voltage"},
					"tcgplayer": {"prices": {"holofoil": {"market": 12.0, "low": 0, "mid": 0, "high": 0}}}
				},
				{
					"id": "swsh4-27", "name": "Unquoted",
					"set": {"id": "swsh4", "name": "Vivid Voltage"}
				}
			],
			"page": 1, "pageSize": 250, "count": 3, "totalCount": 3
		}`)
	}))

	records, err := svc.GetCardsBySet(context.Background(), "swsh4")
	if err != nil {
		t.Fatalf("GetCardsBySet returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	full := records[0]
	if full.Card.Name != "Charizard" || full.Card.SetID != "swsh4" {
		t.Errorf("unexpected card conversion: %+v", full.Card)
	}
	if full.Card.Subtypes != "Stage 2" || full.Card.Types != "Fire" {
		t.Errorf("unexpected list joins: %+v", full.Card)
	}
	if full.Snapshot == nil {
		t.Fatal("fully quoted card should carry a snapshot")
	}
	if full.Snapshot.TCGPlayerMarket == nil || *full.Snapshot.TCGPlayerMarket != 9.5 {
		t.Errorf("TCGPlayerMarket = %v, want 9.5", full.Snapshot.TCGPlayerMarket)
	}
	if full.Snapshot.CardmarketAvg == nil || *full.Snapshot.CardmarketAvg != 8.2 {
		t.Errorf("CardmarketAvg = %v, want 8.2", full.Snapshot.CardmarketAvg)
	}
	if full.Snapshot.CardmarketLow == nil || *full.Snapshot.CardmarketLow != 6.9 {
		t.Errorf("CardmarketLow = %v, want 6.9", full.Snapshot.CardmarketLow)
	}

	holo := records[1]
	if holo.Snapshot == nil {
		t.Fatal("holofoil-priced card should carry a snapshot")
	}
	if holo.Snapshot.TCGPlayerMarket == nil || *holo.Snapshot.TCGPlayerMarket != 12.0 {
		t.Errorf("TCGPlayerMarket = %v, want 12.0", holo.Snapshot.TCGPlayerMarket)
	}
	// Zero-valued API prices are "unquoted", not free
	if holo.Snapshot.TCGPlayerLow != nil {
		t.Errorf("TCGPlayerLow = %v, want nil", holo.Snapshot.TCGPlayerLow)
	}
	if holo.Snapshot.CardmarketAvg != nil {
		t.Errorf("CardmarketAvg = %v, want nil", holo.Snapshot.CardmarketAvg)
	}

	if records[2].Snapshot != nil {
		t.Errorf("unquoted card should have nil snapshot, got %+v", records[2].Snapshot)
	}
}

func TestGetCardsBySetPagination(t *testing.T) {
	var pagesRequested []string
	svc, _ := newTestTCGio(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesRequested = append(pagesRequested, page)

		fmt.Fprintf(w, `{
			"data": [{"id": "swsh4-%s", "name": "Card %s", "set": {"id": "swsh4", "name": "Vivid Voltage"}}],
			"page": %s, "pageSize": 1, "count": 1, "totalCount": 2
		}`, page, page, page)
	}))

	records, err := svc.GetCardsBySet(context.Background(), "swsh4")
	if err != nil {
		t.Fatalf("GetCardsBySet returned error: %v", err)
	}

	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
	if len(pagesRequested) != 2 || pagesRequested[0] != "1" || pagesRequested[1] != "2" {
		t.Errorf("pages requested = %v, want [1 2]", pagesRequested)
	}
}

func TestPickTCGPlayerPrices(t *testing.T) {
	normal := tcgioPriceSet{Market: 1}
	holo := tcgioPriceSet{Market: 2}
	firstEd := tcgioPriceSet{Market: 3}

	tests := []struct {
		name   string
		prices map[string]tcgioPriceSet
		want   float64
		wantOK bool
	}{
		{"prefers normal", map[string]tcgioPriceSet{"normal": normal, "holofoil": holo}, 1, true},
		{"falls back to holofoil", map[string]tcgioPriceSet{"holofoil": holo, "1stEditionHolofoil": firstEd}, 2, true},
		{"any variant as last resort", map[string]tcgioPriceSet{"1stEditionHolofoil": firstEd}, 3, true},
		{"empty map", map[string]tcgioPriceSet{}, 0, false},
		{"nil map", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTCGPlayerPrices(tt.prices)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Market != tt.want {
				t.Errorf("Market = %v, want %v", got.Market, tt.want)
			}
		})
	}
}

func TestPricePtr(t *testing.T) {
	if p := pricePtr(0); p != nil {
		t.Errorf("pricePtr(0) = %v, want nil", *p)
	}
	if p := pricePtr(-1); p != nil {
		t.Errorf("pricePtr(-1) = %v, want nil", *p)
	}
	if p := pricePtr(3.5); p == nil || *p != 3.5 {
		t.Errorf("pricePtr(3.5) = %v, want 3.5", p)
	}
}
