package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"skumatch/internal/ingest"
	"skumatch/internal/match/model"
)

func atoi(s string, def int) int {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// toFloat: пустое → def; мусор → NaN, чтобы его отбраковал Validate, а не съел дефолт.
func toFloat(s string, def float64) float64 {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// toInt: как toFloat, мусор → -1 (не пройдёт проверку положительности).
func toInt(s string, def int) int {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return i
}

// optionsFrom накладывает значения формы на опции из конфигурации.
func optionsFrom(r *http.Request, base model.Options) model.Options {
	o := base
	o.TopK = toInt(r.FormValue("top_k"), o.TopK)
	o.TopBrands = toInt(r.FormValue("top_brands"), o.TopBrands)
	o.TrueThreshold = toFloat(r.FormValue("true_threshold"), o.TrueThreshold)
	o.TrueMargin = toFloat(r.FormValue("true_margin"), o.TrueMargin)
	o.VariantThreshold = toFloat(r.FormValue("variant_threshold"), o.VariantThreshold)
	o.VariantMargin = toFloat(r.FormValue("variant_margin"), o.VariantMargin)
	if a := strings.TrimSpace(r.FormValue("analyzer")); a != "" {
		o.Analyzer = a
	}
	if sw := strings.TrimSpace(r.FormValue("stop_words")); sw != "" {
		o.StopWords = sw
	}
	return o
}

func masterMappingFrom(r *http.Request) ingest.MasterMapping {
	return ingest.DefaultMasterMapping().Override(ingest.MasterMapping{
		ID:    r.FormValue("master_id"),
		Brand: r.FormValue("master_brand"),
		Name:  r.FormValue("master_name"),
		Size:  r.FormValue("master_size"),
	})
}

func scrapedMappingFrom(r *http.Request) ingest.ScrapedMapping {
	return ingest.DefaultScrapedMapping().Override(ingest.ScrapedMapping{
		ID:             r.FormValue("scraped_id"),
		Brand:          r.FormValue("scraped_brand"),
		ItemName:       r.FormValue("scraped_name"),
		ApproxItemSize: r.FormValue("scraped_size"),
		BaseUnit:       r.FormValue("scraped_unit"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}
