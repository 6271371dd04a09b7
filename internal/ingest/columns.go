// Сопоставление колонок исходных таблиц с полями записей.
package ingest

import (
	"regexp"
	"strings"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, служ.символы и пробелы → один пробел
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s) // NBSP/NNBSP
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey ищет реальный ключ в записи по желаемому имени.
// Альтернативы через "|" проверяются в заданном порядке ("item_name|name"),
// затем сравнение нормализованных заголовков, затем вхождение подстроки.
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	norm := make(map[string]string, len(rec))
	for k := range rec {
		nk := normHeaderKey(k)
		// при коллизии берём лексикографически меньший ключ
		if prev, ok := norm[nk]; !ok || k < prev {
			norm[nk] = k
		}
	}

	// 1) по альтернативам в заданном порядке: точное, затем нормализованное имя
	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
		if k, ok := norm[normHeaderKey(a)]; ok {
			return k
		}
	}

	// 2) частичное: "approx item size (g)" содержит "approx item size".
	// Только составные имена и только по границам слов: однословные
	// "unit", "name" иначе цепляют "unit_price", "brand_name".
	bestKey, bestScore := "", 0
	for nk, k := range norm {
		for rank, a := range alts {
			na := normHeaderKey(a)
			if !strings.Contains(na, " ") || !strings.Contains(" "+nk+" ", " "+na+" ") {
				continue
			}
			// выигрывает более длинное совпадение, затем более ранняя альтернатива
			score := len(na)*len(alts) + (len(alts) - rank)
			if score > bestScore || (score == bestScore && k < bestKey) {
				bestScore, bestKey = score, k
			}
		}
	}
	return bestKey
}

// field возвращает значение колонки (пустая строка, если колонки нет).
func field(rec map[string]string, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(rec[key])
}

func blankRecord(rec map[string]string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
