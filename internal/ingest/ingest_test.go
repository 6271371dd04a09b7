package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKey(t *testing.T) {
	rec := map[string]string{"Item Name": "", "name": "", "Approx Item Size (g)": "", "Brand": ""}

	assert.Equal(t, "name", resolveKey(rec, "name"))
	// первая подходящая альтернатива по нормализованному имени
	assert.Equal(t, "Item Name", resolveKey(rec, "item_name|name"))
	assert.Equal(t, "Brand", resolveKey(rec, "brand"))
	assert.Equal(t, "Approx Item Size (g)", resolveKey(rec, "approx_item_size"))
	assert.Equal(t, "", resolveKey(rec, "base_unit|uom"))
	assert.Equal(t, "", resolveKey(rec, ""))
}

func TestNormHeaderKey(t *testing.T) {
	assert.Equal(t, "approx item size", normHeaderKey("  Approx_Item Size "))
}

func TestMasters(t *testing.T) {
	rows := []map[string]string{
		{"id": "M1", "brand": "Acme", "name": "Fries", "size": "750g"},
		{"id": "", "brand": "", "name": "", "size": ""},
		{"id": "", "brand": "Acme", "name": "Wedges", "size": ""},
	}
	got := Masters(rows, DefaultMasterMapping())
	require.Len(t, got, 2)
	assert.Equal(t, "M1", got[0].ID)
	assert.Equal(t, "Acme", got[0].BrandRaw)
	assert.Equal(t, "750g", got[0].Size)
	assert.Equal(t, "row-3", got[1].ID)
	assert.Empty(t, got[1].BrandClean)
}

func TestScraped_FallbackColumns(t *testing.T) {
	rows := []map[string]string{
		{"product_id": "S1", "Brand": " Acme ", "name": "Fries", "size": "750", "uom": "g"},
	}
	got := Scraped(rows, DefaultScrapedMapping())
	require.Len(t, got, 1)
	assert.Equal(t, "S1", got[0].ID)
	assert.Equal(t, "Acme", got[0].BrandRaw)
	assert.Equal(t, "Fries", got[0].ItemName)
	assert.Equal(t, "750", got[0].ApproxItemSize)
	assert.Equal(t, "g", got[0].BaseUnit)
	assert.Nil(t, Scraped(nil, DefaultScrapedMapping()))
}

func TestMappingOverride(t *testing.T) {
	m := DefaultScrapedMapping().Override(ScrapedMapping{ItemName: "title"})
	assert.Equal(t, "title", m.ItemName)
	assert.Equal(t, "brand", m.Brand)
}

func TestResolveKey_PartialNeedsWholeWords(t *testing.T) {
	rec := map[string]string{"unit_price": "", "brand_name": "", "Pack Size Total": ""}

	assert.Equal(t, "", resolveKey(rec, "base_unit|unit|uom"))
	assert.Equal(t, "", resolveKey(rec, "name|product_name|item_name"))
	assert.Equal(t, "", resolveKey(rec, "size"))
	assert.Equal(t, "Pack Size Total", resolveKey(rec, "size|pack_size"))
}

func TestScraped_UnitPriceNotTakenAsUnit(t *testing.T) {
	rows := []map[string]string{
		{"id": "S1", "brand": "Acme", "item_name": "Fries", "approx_item_size": "750", "unit_price": "$0.53 per 100g"},
	}
	got := Scraped(rows, DefaultScrapedMapping())
	require.Len(t, got, 1)
	assert.Empty(t, got[0].BaseUnit)
	assert.Equal(t, "750", got[0].ApproxItemSize)
}

func TestMasters_BrandNameNotTakenAsName(t *testing.T) {
	rows := []map[string]string{
		{"sku": "M1", "brand": "Acme", "brand_name": "Acme Foods", "title": "Fries"},
	}
	got := Masters(rows, DefaultMasterMapping())
	require.Len(t, got, 1)
	assert.Equal(t, "M1", got[0].ID)
	assert.Equal(t, "Acme", got[0].BrandRaw)
	assert.Empty(t, got[0].Name)

	// явное сопоставление колонки чинит загрузку
	got = Masters(rows, DefaultMasterMapping().Override(MasterMapping{Name: "title"}))
	assert.Equal(t, "Fries", got[0].Name)
}
