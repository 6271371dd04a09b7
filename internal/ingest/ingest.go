package ingest

import (
	"fmt"

	"skumatch/internal/match/model"
)

// MasterMapping — имена колонок мастер-каталога. Каждое поле допускает
// альтернативы через "|" в порядке приоритета.
type MasterMapping struct {
	ID    string `json:"id"`
	Brand string `json:"brand"`
	Name  string `json:"name"`
	Size  string `json:"size"`
}

type ScrapedMapping struct {
	ID             string `json:"id"`
	Brand          string `json:"brand"`
	ItemName       string `json:"itemName"`
	ApproxItemSize string `json:"approxItemSize"`
	BaseUnit       string `json:"baseUnit"`
}

func DefaultMasterMapping() MasterMapping {
	return MasterMapping{
		ID:    "id|sku|product_code",
		Brand: "brand",
		Name:  "name|product_name|item_name",
		Size:  "size|package_size",
	}
}

func DefaultScrapedMapping() ScrapedMapping {
	return ScrapedMapping{
		ID:             "id|product_id|sku",
		Brand:          "brand",
		ItemName:       "item_name|name|product_name",
		ApproxItemSize: "approx_item_size|size",
		BaseUnit:       "base_unit|unit|uom",
	}
}

// Override подменяет непустыми значениями o.
func (m MasterMapping) Override(o MasterMapping) MasterMapping {
	m.ID = pick(o.ID, m.ID)
	m.Brand = pick(o.Brand, m.Brand)
	m.Name = pick(o.Name, m.Name)
	m.Size = pick(o.Size, m.Size)
	return m
}

func (m ScrapedMapping) Override(o ScrapedMapping) ScrapedMapping {
	m.ID = pick(o.ID, m.ID)
	m.Brand = pick(o.Brand, m.Brand)
	m.ItemName = pick(o.ItemName, m.ItemName)
	m.ApproxItemSize = pick(o.ApproxItemSize, m.ApproxItemSize)
	m.BaseUnit = pick(o.BaseUnit, m.BaseUnit)
	return m
}

// Masters переводит строки таблицы в записи каталога. Полностью пустые
// строки пропускаются; строки без обязательных полей остаются:
// их отбраковка и подсчёт делаются в сервисе сопоставления.
func Masters(rows []map[string]string, m MasterMapping) []model.MasterProduct {
	if len(rows) == 0 {
		return nil
	}
	idKey := resolveKey(rows[0], m.ID)
	brandKey := resolveKey(rows[0], m.Brand)
	nameKey := resolveKey(rows[0], m.Name)
	sizeKey := resolveKey(rows[0], m.Size)

	out := make([]model.MasterProduct, 0, len(rows))
	for i, rec := range rows {
		if blankRecord(rec) {
			continue
		}
		out = append(out, model.MasterProduct{
			ID:       pick(field(rec, idKey), rowID(i)),
			BrandRaw: field(rec, brandKey),
			Name:     field(rec, nameKey),
			Size:     field(rec, sizeKey),
		})
	}
	return out
}

func Scraped(rows []map[string]string, m ScrapedMapping) []model.ScrapedProduct {
	if len(rows) == 0 {
		return nil
	}
	idKey := resolveKey(rows[0], m.ID)
	brandKey := resolveKey(rows[0], m.Brand)
	nameKey := resolveKey(rows[0], m.ItemName)
	sizeKey := resolveKey(rows[0], m.ApproxItemSize)
	unitKey := resolveKey(rows[0], m.BaseUnit)

	out := make([]model.ScrapedProduct, 0, len(rows))
	for i, rec := range rows {
		if blankRecord(rec) {
			continue
		}
		out = append(out, model.ScrapedProduct{
			ID:             pick(field(rec, idKey), rowID(i)),
			BrandRaw:       field(rec, brandKey),
			ItemName:       field(rec, nameKey),
			ApproxItemSize: field(rec, sizeKey),
			BaseUnit:       field(rec, unitKey),
		})
	}
	return out
}

// rowID: номер строки данных (1-based), если колонки id нет.
func rowID(i int) string { return fmt.Sprintf("row-%d", i+1) }

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
