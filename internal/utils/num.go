package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-]`)

// группы по три цифры через запятую: 1,500 / 1,000,000
var rxThousands = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)

// ParseDecimal парсит "1 234,50", "0,75", "750.0", "1,500", "1,234.5" (NBSP/NNBSP тоже).
// Запятая десятичная, если за ней не ровно три цифры или она стоит после точки.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "").Replace(s)
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma < 0:
	case dot > comma, rxThousands.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// FormatDecimal: кратчайшая запись без хвостовых нулей: 750.0 → "750", 1.250 → "1.25".
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CanonNumber переписывает числовую строку в кратчайшую форму; нечисловое возвращает как есть.
func CanonNumber(s string) string {
	f, ok := ParseDecimal(s)
	if !ok {
		return s
	}
	return FormatDecimal(f)
}
