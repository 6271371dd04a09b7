package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"skumatch/internal/match/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	Match MatchConfig
	Batch BatchConfig
}

// MatchConfig — параметры сопоставления по умолчанию (HTTP-запрос может их переопределить).
type MatchConfig struct {
	TopK             int
	TopBrands        int
	TrueThreshold    float64
	TrueMargin       float64
	VariantThreshold float64
	VariantMargin    float64
	NgramMin         int
	NgramMax         int
	Analyzer         string
	StopWords        string
	Workers          int
}

type BatchConfig struct {
	MasterFile       string
	ScrapedFile      string
	MasterHeaderRow  int
	ScrapedHeaderRow int
	OutMatches       string
	OutSummary       string
}

// Load читает окружение; .env в рабочей папке подхватывается, если есть.
// Пустое MATCH_* берёт дефолт, нечисловое превращается в заведомо неверное
// значение (-1 / NaN), и Options.Validate остановит старт.
func Load() Config {
	_ = godotenv.Load()

	def := model.DefaultOptions()
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         getint("PORT", 8082),
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  getint("MAX_UPLOAD_MB", 256),
		LogFile:      getenv("LOG_FILE", "logs/skumatch.log"),
		Match: MatchConfig{
			TopK:             optint("MATCH_TOP_K", def.TopK),
			TopBrands:        optint("MATCH_TOP_BRANDS", def.TopBrands),
			TrueThreshold:    optfloat("MATCH_TRUE_THRESHOLD", def.TrueThreshold),
			TrueMargin:       optfloat("MATCH_TRUE_MARGIN", def.TrueMargin),
			VariantThreshold: optfloat("MATCH_VARIANT_THRESHOLD", def.VariantThreshold),
			VariantMargin:    optfloat("MATCH_VARIANT_MARGIN", def.VariantMargin),
			NgramMin:         optint("MATCH_NGRAM_MIN", def.NgramMin),
			NgramMax:         optint("MATCH_NGRAM_MAX", def.NgramMax),
			Analyzer:         getenv("MATCH_ANALYZER", def.Analyzer),
			StopWords:        getenv("MATCH_STOP_WORDS", def.StopWords),
			Workers:          optint("MATCH_WORKERS", def.Workers),
		},
		Batch: BatchConfig{
			MasterFile:       getenv("MASTER_FILE", "data/master.csv"),
			ScrapedFile:      getenv("SCRAPED_FILE", "data/scraped.csv"),
			MasterHeaderRow:  getint("MASTER_HEADER_ROW", 1),
			ScrapedHeaderRow: getint("SCRAPED_HEADER_ROW", 1),
			OutMatches:       getenv("OUT_MATCHES", "result/matches_out.csv"),
			OutSummary:       getenv("OUT_SUMMARY", "result/matches_summary.csv"),
		},
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MatchOptions собирает опции для сервиса.
func (c Config) MatchOptions() model.Options {
	m := c.Match
	return model.Options{
		TopK:             m.TopK,
		TopBrands:        m.TopBrands,
		TrueThreshold:    m.TrueThreshold,
		TrueMargin:       m.TrueMargin,
		VariantThreshold: m.VariantThreshold,
		VariantMargin:    m.VariantMargin,
		NgramMin:         m.NgramMin,
		NgramMax:         m.NgramMax,
		Analyzer:         m.Analyzer,
		StopWords:        m.StopWords,
		Workers:          m.Workers,
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(getenv(k, "")))
	if err != nil {
		return def
	}
	return i
}

func getfloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(getenv(k, "")), 64)
	if err != nil {
		return def
	}
	return f
}

// optint: "" → def, мусор → -1 (ни одно целое MATCH_* не допускает отрицательных).
func optint(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return i
}

// optfloat: "" → def, мусор вроде "0,9" → NaN.
func optfloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
