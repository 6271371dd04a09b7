// batch — прогон сопоставления по файлам из окружения (MASTER_FILE, SCRAPED_FILE)
// с записью OUT_MATCHES и OUT_SUMMARY (.csv или .xlsx).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skumatch/internal/config"
	"skumatch/internal/fileio"
	"skumatch/internal/ingest"
	"skumatch/internal/match/model"
	matchSvc "skumatch/internal/match/service"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg).With().Str("run_id", uuid.NewString()).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("batch failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	b := cfg.Batch
	opt := cfg.MatchOptions()
	if err := opt.Validate(); err != nil {
		return err
	}

	masterRows, err := readFile(b.MasterFile, b.MasterHeaderRow)
	if err != nil {
		return err
	}
	scrapedRows, err := readFile(b.ScrapedFile, b.ScrapedHeaderRow)
	if err != nil {
		return err
	}
	masters := ingest.Masters(masterRows, ingest.DefaultMasterMapping())
	scraped := ingest.Scraped(scrapedRows, ingest.DefaultScrapedMapping())
	logger.Info().
		Str("master", b.MasterFile).Int("masters", len(masters)).
		Str("scraped", b.ScrapedFile).Int("scraped_rows", len(scraped)).
		Msg("inputs loaded")

	res, err := matchSvc.Run(ctx, logger, masters, scraped, opt)
	if err != nil {
		return err
	}

	for _, s := range res.Summaries {
		logger.Info().
			Str("brand", s.Brand).
			Int("masters", s.MasterCount).
			Int("scraped", s.ScrapedCount).
			Int("true", s.TrueAccepted).
			Int("variant", s.VariantAccepted).
			Str("true_rate", rateStr(s.TrueAcceptRate)).
			Str("variant_rate", rateStr(s.VariantAcceptRate)).
			Msg("brand")
	}

	if err := writeMatches(b.OutMatches, res); err != nil {
		return err
	}
	if err := writeSummary(b.OutSummary, res); err != nil {
		return err
	}
	logger.Info().Str("matches", b.OutMatches).Str("summary", b.OutSummary).Msg("outputs written")
	return nil
}

func readFile(path string, headerRow int) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return fileio.ReadAnyMaps(f, path, headerRow)
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

func isXLSX(path string) bool { return strings.EqualFold(filepath.Ext(path), ".xlsx") }

// xlsx-выход содержит обе вкладки, csv только свою таблицу
func writeMatches(path string, res model.Result) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if isXLSX(path) {
		return fileio.WriteReportXLSX(f, res)
	}
	return fileio.WriteMatchesCSV(f, res.Results)
}

func writeSummary(path string, res model.Result) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if isXLSX(path) {
		return fileio.WriteReportXLSX(f, res)
	}
	return fileio.WriteSummaryCSV(f, res.Summaries)
}

func rateStr(r model.Rate) string {
	if r.Undefined() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(r)*100)
}
