package model

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions — ошибка конфигурации, прогон не стартует.
var ErrInvalidOptions = errors.New("invalid match options")

type OptionError struct {
	Field  string
	Value  any
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidOptions, e.Field, e.Value, e.Reason)
}

func (e *OptionError) Unwrap() error { return ErrInvalidOptions }

const (
	AnalyzerWord   = "word"    // n-граммы слов
	AnalyzerCharWB = "char_wb" // n-граммы символов внутри слов
)

// Стоп-слова word-анализатора; на char_wb не влияют.
const (
	StopWordsNone    = "none"
	StopWordsEnglish = "english"
)

type Weights struct {
	Char float64
	Jacc float64
	Cos  float64
}

var (
	TrueWeights    = Weights{Char: 0.50, Jacc: 0.25, Cos: 0.25}
	VariantWeights = Weights{Char: 0.30, Jacc: 0.20, Cos: 0.50}
)

type Options struct {
	TopK             int     `json:"topK"`             // кандидатов на строку
	TopBrands        int     `json:"topBrands"`        // сколько самых частых брендов обрабатывать
	TrueThreshold    float64 `json:"trueThreshold"`
	TrueMargin       float64 `json:"trueMargin"`
	VariantThreshold float64 `json:"variantThreshold"`
	VariantMargin    float64 `json:"variantMargin"`
	NgramMin         int     `json:"ngramMin"`
	NgramMax         int     `json:"ngramMax"`
	Analyzer         string  `json:"analyzer"`
	StopWords        string  `json:"stopWords"` // "" = none
	Workers          int     `json:"workers"` // 0 = GOMAXPROCS
}

func DefaultOptions() Options {
	return Options{
		TopK:             10,
		TopBrands:        10,
		TrueThreshold:    0.90,
		TrueMargin:       0.05,
		VariantThreshold: 0.88,
		VariantMargin:    0.03,
		NgramMin:         1,
		NgramMax:         2,
		Analyzer:         AnalyzerWord,
		StopWords:        StopWordsNone,
	}
}

// Threshold и Margin режима.
func (o Options) Rule(m Mode) (threshold, margin float64) {
	if m == ModeVariant {
		return o.VariantThreshold, o.VariantMargin
	}
	return o.TrueThreshold, o.TrueMargin
}

func (o Options) Validate() error {
	unit := []struct {
		name string
		v    float64
	}{
		{"true_threshold", o.TrueThreshold},
		{"true_margin", o.TrueMargin},
		{"variant_threshold", o.VariantThreshold},
		{"variant_margin", o.VariantMargin},
	}
	for _, u := range unit {
		// NaN тоже должен не пройти, поэтому сравнение через отрицание
		if !(u.v >= 0 && u.v <= 1) {
			return &OptionError{Field: u.name, Value: u.v, Reason: "must be within [0,1]"}
		}
	}
	if o.TopK <= 0 {
		return &OptionError{Field: "top_k", Value: o.TopK, Reason: "must be positive"}
	}
	if o.TopBrands <= 0 {
		return &OptionError{Field: "top_brands", Value: o.TopBrands, Reason: "must be positive"}
	}
	if o.NgramMin < 1 {
		return &OptionError{Field: "ngram_min", Value: o.NgramMin, Reason: "must be >= 1"}
	}
	if o.NgramMax < o.NgramMin {
		return &OptionError{Field: "ngram_max", Value: o.NgramMax, Reason: "must be >= ngram_min"}
	}
	if o.Workers < 0 {
		return &OptionError{Field: "workers", Value: o.Workers, Reason: "must not be negative"}
	}
	switch o.Analyzer {
	case AnalyzerWord, AnalyzerCharWB:
	default:
		return &OptionError{Field: "analyzer", Value: o.Analyzer, Reason: "must be word or char_wb"}
	}
	switch o.StopWords {
	case "", StopWordsNone, StopWordsEnglish:
	default:
		return &OptionError{Field: "stop_words", Value: o.StopWords, Reason: "must be none or english"}
	}
	return nil
}
