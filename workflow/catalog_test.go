package workflow

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/shopspring/decimal"
)

// countingFetcher records how many times each batched lookup runs so tests
// can assert a page costs exactly one metadata query and one work-order query.
type countingFetcher struct {
	metas        map[string]models.ItemMeta
	activeWO     map[string]bool
	metaCalls    int
	woCalls      int
	lastMetaKeys []string
}

func (f *countingFetcher) ItemMeta(ctx context.Context, itemCodes []string) (map[string]models.ItemMeta, error) {
	f.metaCalls++
	f.lastMetaKeys = itemCodes
	return f.metas, nil
}

func (f *countingFetcher) ActiveWorkOrderSet(ctx context.Context, itemCodes []string) (map[string]bool, error) {
	f.woCalls++
	return f.activeWO, nil
}

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func meta(code string, price string, qty int64, stockItem bool, discontinued bool) models.ItemMeta {
	return models.ItemMeta{
		ItemCode:      code,
		PriceListRate: dec(price),
		StockQty:      decimal.NewFromInt(qty),
		IsStockItem:   stockItem,
		Discontinued:  discontinued,
	}
}

func TestAssembleProducts_OneBatchedLookupPerPage(t *testing.T) {
	codes := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	fetcher := &countingFetcher{
		metas:    map[string]models.ItemMeta{},
		activeWO: map[string]bool{},
	}
	for _, code := range codes {
		fetcher.metas[code] = meta(code, "10", 1, true, false)
	}

	if _, err := AssembleProducts(context.Background(), fetcher, codes, ProductFilter{}); err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}
	if fetcher.metaCalls != 1 {
		t.Fatalf("expected exactly 1 metadata lookup for the page, got %d", fetcher.metaCalls)
	}
	if fetcher.woCalls != 1 {
		t.Fatalf("expected exactly 1 work-order lookup for the page, got %d", fetcher.woCalls)
	}
	if len(fetcher.lastMetaKeys) != len(codes) {
		t.Fatalf("metadata lookup got %d codes, expected %d", len(fetcher.lastMetaKeys), len(codes))
	}
}

func TestAssembleProducts_EmptyPageSkipsLookups(t *testing.T) {
	fetcher := &countingFetcher{}
	cards, err := AssembleProducts(context.Background(), fetcher, nil, ProductFilter{})
	if err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected empty result, got %d cards", len(cards))
	}
	if fetcher.metaCalls != 0 || fetcher.woCalls != 0 {
		t.Fatalf("empty page must not hit the fetcher (meta=%d wo=%d)", fetcher.metaCalls, fetcher.woCalls)
	}
}

func TestAssembleProducts_PriceBoundsAreInclusive(t *testing.T) {
	fetcher := &countingFetcher{
		metas: map[string]models.ItemMeta{
			"below":   meta("below", "9.99", 1, true, false),
			"at-min":  meta("at-min", "10.00", 1, true, false),
			"between": meta("between", "50", 1, true, false),
			"at-max":  meta("at-max", "100.00", 1, true, false),
			"above":   meta("above", "100.01", 1, true, false),
		},
		activeWO: map[string]bool{},
	}
	minPrice := dec("10.00")
	maxPrice := dec("100.00")

	cards, err := AssembleProducts(context.Background(), fetcher,
		[]string{"below", "at-min", "between", "at-max", "above"},
		ProductFilter{PriceMin: &minPrice, PriceMax: &maxPrice})
	if err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}

	got := map[string]bool{}
	for _, card := range cards {
		got[card.ItemCode] = true
	}
	for _, want := range []string{"at-min", "between", "at-max"} {
		if !got[want] {
			t.Fatalf("item %q priced on/inside the bounds was filtered out", want)
		}
	}
	for _, drop := range []string{"below", "above"} {
		if got[drop] {
			t.Fatalf("item %q priced outside the bounds survived the filter", drop)
		}
	}
}

func TestAssembleProducts_SuppressedItemsAreDropped(t *testing.T) {
	fetcher := &countingFetcher{
		metas: map[string]models.ItemMeta{
			"hidden":  meta("hidden", "10", 0, true, true),
			"visible": meta("visible", "10", 0, true, true),
		},
		activeWO: map[string]bool{"visible": true},
	}

	cards, err := AssembleProducts(context.Background(), fetcher, []string{"hidden", "visible"}, ProductFilter{})
	if err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].ItemCode != "visible" {
		t.Fatalf("expected the work-order-backed item to survive, got %q", cards[0].ItemCode)
	}
	if cards[0].Status != models.StockStatusInProcess {
		t.Fatalf("expected In Process, got %q", cards[0].Status)
	}
}

// An item the metadata lookup does not know still appears, with untracked
// defaults, and resolves to In Stock.
func TestAssembleProducts_MissingMetaDefaultsToAvailable(t *testing.T) {
	fetcher := &countingFetcher{
		metas:    map[string]models.ItemMeta{},
		activeWO: map[string]bool{},
	}
	cards, err := AssembleProducts(context.Background(), fetcher, []string{"ghost"}, ProductFilter{})
	if err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Status != models.StockStatusInStock {
		t.Fatalf("missing stock record resolved to %q, expected In Stock", cards[0].Status)
	}
	if !cards[0].InStock {
		t.Fatal("expected in_stock=true for untracked item")
	}
}

func TestAssembleProducts_HomePageSortsBySectionOrder(t *testing.T) {
	m1 := meta("first", "10", 1, true, false)
	m1.SectionOrder = 1
	m2 := meta("second", "10", 1, true, false)
	m2.SectionOrder = 2
	m3 := meta("third", "10", 1, true, false)
	m3.SectionOrder = 3

	fetcher := &countingFetcher{
		metas:    map[string]models.ItemMeta{"first": m1, "second": m2, "third": m3},
		activeWO: map[string]bool{},
	}

	cards, err := AssembleProducts(context.Background(), fetcher, []string{"third", "first", "second"}, ProductFilter{HomePage: true})
	if err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, card := range cards {
		if card.ItemCode != want[i] {
			t.Fatalf("position %d: got %q, expected %q", i, card.ItemCode, want[i])
		}
	}
}

func TestGroupBySection(t *testing.T) {
	sections := []models.HomePageSection{
		{SectionName: "Featured", SortOrder: 1},
		{SectionName: "New Arrivals", SortOrder: 2},
	}
	mk := func(code, section string, order int) ProductCard {
		m := meta(code, "10", 1, true, false)
		m.Section = section
		m.SectionOrder = order
		return ProductCard{ItemMeta: m, Status: models.StockStatusInStock, InStock: true}
	}
	cards := []ProductCard{
		mk("b", "Featured", 2),
		mk("a", "Featured", 1),
		mk("c", "New Arrivals", 1),
		mk("orphan", "Retired Section", 1),
		mk("none", "", 1),
	}

	grouped := GroupBySection(cards, sections)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(grouped))
	}
	featured := grouped["Featured"]
	if len(featured) != 2 || featured[0].ItemCode != "a" || featured[1].ItemCode != "b" {
		t.Fatalf("Featured bucket wrong: %+v", featured)
	}
	if len(grouped["New Arrivals"]) != 1 {
		t.Fatalf("New Arrivals bucket wrong: %+v", grouped["New Arrivals"])
	}
}

// Full pipeline over a mixed page: discontinued+sold-out suppressed, work
// order keeps a sold-out item purchasable, non-stock items always available,
// price filter applied after visibility.
func TestAssembleProducts_MixedPageScenario(t *testing.T) {
	sold := meta("sold-out", "25", 0, true, false)
	making := meta("in-process", "30", 0, true, false)
	gone := meta("gone", "15", 0, true, true)
	service := meta("service", "500", 0, false, false)
	cheap := meta("cheap", "5", 8, true, false)

	fetcher := &countingFetcher{
		metas: map[string]models.ItemMeta{
			"sold-out": sold, "in-process": making, "gone": gone,
			"service": service, "cheap": cheap,
		},
		activeWO: map[string]bool{"in-process": true},
	}
	minPrice := dec("10")

	cards, err := AssembleProducts(context.Background(), fetcher,
		[]string{"sold-out", "in-process", "gone", "service", "cheap"},
		ProductFilter{PriceMin: &minPrice})
	if err != nil {
		t.Fatalf("AssembleProducts: %v", err)
	}

	byCode := map[string]ProductCard{}
	for _, card := range cards {
		byCode[card.ItemCode] = card
	}
	if _, ok := byCode["gone"]; ok {
		t.Fatal("discontinued sold-out item must be suppressed")
	}
	if _, ok := byCode["cheap"]; ok {
		t.Fatal("item under the price floor must be filtered")
	}
	if byCode["sold-out"].Status != models.StockStatusOutOfStock {
		t.Fatalf("sold-out status = %q", byCode["sold-out"].Status)
	}
	if byCode["in-process"].Status != models.StockStatusInProcess {
		t.Fatalf("in-process status = %q", byCode["in-process"].Status)
	}
	if byCode["service"].Status != models.StockStatusInStock {
		t.Fatalf("service status = %q", byCode["service"].Status)
	}
	if fetcher.metaCalls != 1 || fetcher.woCalls != 1 {
		t.Fatalf("batch invariant violated (meta=%d wo=%d)", fetcher.metaCalls, fetcher.woCalls)
	}
}
