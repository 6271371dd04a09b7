package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"skumatch/internal/match/model"
	"skumatch/internal/utils"
)

// 1,500 → 1500 (разделитель тысяч), 0,5 → 0.5 (десятичная запятая)
var (
	thousandsComma = regexp.MustCompile(`(\d),(\d{3})(\D|$)`)
	decComma       = regexp.MustCompile(`(\d),(\d{1,2})(\D|$)`)
)

var reDecimal = regexp.MustCompile(`\d+\.\d+`)

// Единицы измерения размера (склеиваются с числом)
const unitWord = `mg|kg|g|ml|cl|l|oz|fl\.?oz|lb|lbs|pk|pack|ea|each|ct|mm|cm|m|sheets`

// СКЛЕЙКА: "750 g" → "750g", "1.25 L" → "1.25L"
var reAttachNumUnit = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s+(` + unitWord + `)\b`)

// fold: регистронезависимая форма для метрик и ключей брендов.
// cases.Caser не потокобезопасен, поэтому создаётся на вызов.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// BrandKey: trim, case-fold, схлопнуть внутренние пробелы.
func BrandKey(brand string) string {
	return collapseSpaces(fold(brand))
}

// canonSize собирает сегмент размера: "750.0", "g" → "750g".
// Трогает только числа и единицы, слова остаются как есть.
func canonSize(parts ...string) string {
	out := joinFields(parts...)
	if out == "" {
		return ""
	}
	// "1,000,000": совпадения не перекрываются, повторяем до неподвижной точки
	for prev := ""; prev != out; {
		prev = out
		out = thousandsComma.ReplaceAllString(out, "${1}${2}${3}")
	}
	out = decComma.ReplaceAllString(out, "${1}.${2}${3}")
	out = reDecimal.ReplaceAllStringFunc(out, utils.CanonNumber)
	return reAttachNumUnit.ReplaceAllString(out, "$1$2")
}

// joinFields склеивает поля одним пробелом. Пустое поле ничего не добавляет,
// внутренние пробелы поля не трогаются (только края).
func joinFields(parts ...string) string {
	toks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			toks = append(toks, p)
		}
	}
	return strings.Join(toks, " ")
}

// MasterCanon: brand + name + size.
func MasterCanon(m model.MasterProduct) string {
	return joinFields(BrandKey(m.BrandRaw), m.Name, canonSize(m.Size))
}

// ScrapedCanon: brand + item_name + approx_item_size + base_unit.
func ScrapedCanon(s model.ScrapedProduct) string {
	return joinFields(BrandKey(s.BrandRaw), s.ItemName, canonSize(s.ApproxItemSize, s.BaseUnit))
}

func prepareMaster(m *model.MasterProduct) bool {
	m.BrandClean = BrandKey(m.BrandRaw)
	m.Canon = MasterCanon(*m)
	return strings.TrimSpace(m.ID) != "" && m.BrandClean != "" && strings.TrimSpace(m.Name) != ""
}

func prepareScraped(s *model.ScrapedProduct) bool {
	s.BrandClean = BrandKey(s.BrandRaw)
	s.Canon = ScrapedCanon(*s)
	return strings.TrimSpace(s.ID) != "" && s.BrandClean != "" && strings.TrimSpace(s.ItemName) != ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
