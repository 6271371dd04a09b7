package model

import (
	"encoding/json"
	"math"
)

// MasterProduct — строка мастер-каталога. После загрузки не меняется.
type MasterProduct struct {
	ID         string `json:"id"`
	BrandRaw   string `json:"brand"`
	BrandClean string `json:"brandClean"`
	Name       string `json:"name"`
	Size       string `json:"size"`
	Canon      string `json:"canon"`
}

// ScrapedProduct — строка, собранная с сайта ритейлера.
type ScrapedProduct struct {
	ID             string `json:"id"`
	BrandRaw       string `json:"brand"`
	BrandClean     string `json:"brandClean"`
	ItemName       string `json:"itemName"`
	ApproxItemSize string `json:"approxItemSize"`
	BaseUnit       string `json:"baseUnit"`
	Canon          string `json:"canon"`
}

// Block — все записи одного бренда (ключ = brand_clean).
type Block struct {
	Brand     string
	Masters   []MasterProduct
	Scraped   []ScrapedProduct
	Malformed int // отброшенные scraped-строки этого бренда
}

// CandidatePair живёт только в рамках оценки одной scraped-строки.
type CandidatePair struct {
	ScrapedID string
	Master    *MasterProduct
	Cos       float64
	Jacc      float64
	Char      float64
}

type ScoredCandidate struct {
	CandidatePair
	TrueScore    float64
	VariantScore float64
}

type Mode string

const (
	ModeTrue    Mode = "true"
	ModeVariant Mode = "variant"
)

type Decision string

const (
	DecisionAccepted  Decision = "ACCEPTED"
	DecisionAmbiguous Decision = "REJECTED_AMBIGUOUS" // порог пройден, зазор нет
	DecisionLowScore  Decision = "REJECTED_LOW_SCORE"
)

// Components: метрики лучшего кандидата режима.
type Components struct {
	Char float64 `json:"char"`
	Jacc float64 `json:"jacc"`
	Cos  float64 `json:"cos"`
}

// ModeOutcome — результат принятия решения для одного режима.
type ModeOutcome struct {
	Decision       Decision   `json:"decision"`
	Accepted       bool       `json:"accepted"`
	BestMasterID   string     `json:"bestMasterId"`
	BestName       string     `json:"bestName"`
	BestSize       string     `json:"bestSize"`
	BestScore      float64    `json:"bestScore"`
	SecondMasterID string     `json:"secondMasterId,omitempty"`
	SecondName     string     `json:"secondName,omitempty"`
	SecondSize     string     `json:"secondSize,omitempty"`
	SecondScore    float64    `json:"secondScore"`
	Margin         *float64   `json:"margin,omitempty"` // nil, если кандидат один
	Best           Components `json:"best"`
}

// AcceptedID возвращает id принятого мастера или "".
func (o ModeOutcome) AcceptedID() string {
	if o.Accepted {
		return o.BestMasterID
	}
	return ""
}

// MatchResult — одна запись на каждую обработанную scraped-строку с кандидатами.
type MatchResult struct {
	ScrapedID      string      `json:"scrapedId"`
	Brand          string      `json:"brand"`
	ItemName       string      `json:"itemName"`
	ApproxItemSize string      `json:"approxItemSize"`
	ScrapedCanon   string      `json:"scrapedCanon"`
	Candidates     int         `json:"candidates"`
	True           ModeOutcome `json:"true"`
	Variant        ModeOutcome `json:"variant"`
}

func (r MatchResult) Outcome(m Mode) ModeOutcome {
	if m == ModeVariant {
		return r.Variant
	}
	return r.True
}

// Rate — доля принятых; NaN означает «не определено» (пустой блок).
type Rate float64

func (r Rate) Undefined() bool { return math.IsNaN(float64(r)) }

func (r Rate) MarshalJSON() ([]byte, error) {
	if r.Undefined() || math.IsInf(float64(r), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

type BrandSummary struct {
	Brand             string `json:"brand"`
	MasterCount       int    `json:"masterCount"`
	ScrapedCount      int    `json:"scrapedCount"`
	ScoredCount       int    `json:"scoredCount"`
	UnresolvedCount   int    `json:"unresolvedCount"`
	MalformedCount    int    `json:"malformedCount"`
	TrueAccepted      int    `json:"trueAccepted"`
	VariantAccepted   int    `json:"variantAccepted"`
	TrueAcceptRate    Rate   `json:"trueAcceptRate"`    // / scraped_count
	VariantAcceptRate Rate   `json:"variantAcceptRate"` // / scraped_count
	TrueScoredRate    Rate   `json:"trueScoredRate"`    // / scored_count
	VariantScoredRate Rate   `json:"variantScoredRate"` // / scored_count
	Note              string `json:"note,omitempty"`
}

// Stats: агрегаты прогона по деградациям (ничего из этого не ошибка).
type Stats struct {
	Blocks           int `json:"blocks"`
	MastersLoaded    int `json:"mastersLoaded"`
	ScrapedLoaded    int `json:"scrapedLoaded"`
	MalformedMasters int `json:"malformedMasters"`
	MalformedScraped int `json:"malformedScraped"`
	OutOfScope       int `json:"outOfScope"` // отсечены по top_brands
	Unresolved       int `json:"unresolved"`
	EmptyQueries     int `json:"emptyQueries"` // нулевой вектор запроса
	Scored           int `json:"scored"`
}

type Result struct {
	Results   []MatchResult  `json:"results"`
	Summaries []BrandSummary `json:"summaries"`
	Stats     Stats          `json:"stats"`
}
