package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skumatch/internal/config"
	"skumatch/internal/fileio"
	"skumatch/internal/ingest"
	"skumatch/internal/match/model"
	"skumatch/internal/middleware"
	matchSvc "skumatch/internal/match/service"
)

type Response struct {
	RunID      string                `json:"runId"`
	Results    []model.MatchResult   `json:"results"`
	Summaries  []model.BrandSummary  `json:"summaries"`
	Stats      model.Stats           `json:"stats"`
	Opts       model.Options         `json:"opts"`
	MapMaster  ingest.MasterMapping  `json:"mapMaster"`
	MapScraped ingest.ScrapedMapping `json:"mapScraped"`
}

// Match возвращает http.HandlerFunc для r.Post("/match", matchHnd.Match(cfg, logger)).
// Ждёт multipart с файлами "master" и "scraped" (csv/xls/xlsx).
func Match(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		runID := uuid.NewString()
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Str("run_id", runID).Logger()

		maxMem := int64(cfg.MaxUploadMB) << 20
		if maxMem <= 0 {
			maxMem = 32 << 20
		}
		if err := r.ParseMultipartForm(maxMem); err != nil {
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		// опции проверяем до чтения файлов
		opt := optionsFrom(r, cfg.MatchOptions())
		if err := opt.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mm, sm := masterMappingFrom(r), scrapedMappingFrom(r)

		masterRows, err := readUpload(r, "master", atoi(r.FormValue("master_header_row"), 1))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		scrapedRows, err := readUpload(r, "scraped", atoi(r.FormValue("scraped_header_row"), 1))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		masters := ingest.Masters(masterRows, mm)
		scraped := ingest.Scraped(scrapedRows, sm)
		log.Debug().Int("masters", len(masters)).Int("scraped", len(scraped)).Msg("inputs mapped")

		res, err := matchSvc.Run(r.Context(), log, masters, scraped, opt)
		switch {
		case errors.Is(err, model.ErrInvalidOptions):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Error().Err(err).Msg("match run")
			writeError(w, http.StatusInternalServerError, "match failed")
			return
		}

		if strings.EqualFold(r.FormValue("format"), "xlsx") {
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="matches-%s.xlsx"`, runID))
			if err := fileio.WriteReportXLSX(w, res); err != nil {
				log.Error().Err(err).Msg("write xlsx")
				return
			}
		} else {
			err := writeJSON(w, http.StatusOK, Response{
				RunID:      runID,
				Results:    res.Results,
				Summaries:  res.Summaries,
				Stats:      res.Stats,
				Opts:       opt,
				MapMaster:  mm,
				MapScraped: sm,
			})
			if err != nil {
				log.Error().Err(err).Msg("write json")
				return
			}
		}

		log.Info().
			Int("masters", len(masters)).
			Int("scraped", len(scraped)).
			Int("scored", res.Stats.Scored).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

func readUpload(r *http.Request, field string, headerRow int) ([]map[string]string, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	rows, err := fileio.ReadAnyMaps(f, hdr.Filename, headerRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return rows, nil
}
