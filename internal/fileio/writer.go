package fileio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	excelize "github.com/xuri/excelize/v2"

	"skumatch/internal/match/model"
)

var matchHeader = []string{
	"scraped_id", "brand_clean", "item_name", "approx_item_size", "scraped_canon", "candidates",
	"true_decision", "true_best_master_id", "true_best_name", "true_best_size", "true_best_score",
	"true_second_master_id", "true_second_name", "true_second_size", "true_second_score", "true_margin",
	"variant_decision", "variant_best_master_id", "variant_best_name", "variant_best_size", "variant_best_score",
	"variant_second_master_id", "variant_second_name", "variant_second_size", "variant_second_score", "variant_margin",
	"best_char", "best_jacc", "best_cos",
}

// *_accept_rate делится на scraped_rows, *_scored_rate на scored_rows
var summaryHeader = []string{
	"brand_clean", "master_rows", "scraped_rows", "scored_rows", "unresolved_rows", "malformed_rows",
	"true_accepted", "variant_accepted", "true_accept_rate", "variant_accept_rate",
	"true_scored_rate", "variant_scored_rate", "note",
}

// Строки отчёта хранят типизированные значения: float64 и int уходят
// в xlsx числами, nil даёт пустую ячейку.
type row []any

// оценки округляются до 3 знаков и в csv, и в xlsx
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

func margin(p *float64) any {
	if p == nil {
		return nil
	}
	return round3(*p)
}

func rateCell(r model.Rate) any {
	if r.Undefined() {
		return nil
	}
	return round3(float64(r))
}

func matchRow(r model.MatchResult) row {
	t, v := r.True, r.Variant
	return row{
		r.ScrapedID, r.Brand, r.ItemName, r.ApproxItemSize, r.ScrapedCanon, r.Candidates,
		string(t.Decision), t.BestMasterID, t.BestName, t.BestSize, round3(t.BestScore),
		t.SecondMasterID, t.SecondName, t.SecondSize, round3(t.SecondScore), margin(t.Margin),
		string(v.Decision), v.BestMasterID, v.BestName, v.BestSize, round3(v.BestScore),
		v.SecondMasterID, v.SecondName, v.SecondSize, round3(v.SecondScore), margin(v.Margin),
		round3(t.Best.Char), round3(t.Best.Jacc), round3(t.Best.Cos),
	}
}

func summaryRow(s model.BrandSummary) row {
	return row{
		s.Brand, s.MasterCount, s.ScrapedCount, s.ScoredCount, s.UnresolvedCount, s.MalformedCount,
		s.TrueAccepted, s.VariantAccepted,
		rateCell(s.TrueAcceptRate), rateCell(s.VariantAcceptRate),
		rateCell(s.TrueScoredRate), rateCell(s.VariantScoredRate), s.Note,
	}
}

// strings для csv: числа с плавающей точкой фиксированно, 3 знака
func (r row) strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		switch v := v.(type) {
		case nil:
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', 3, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func writeCSV(w io.Writer, header []string, rows []row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteMatchesCSV(w io.Writer, results []model.MatchResult) error {
	rows := make([]row, 0, len(results))
	for _, r := range results {
		rows = append(rows, matchRow(r))
	}
	return writeCSV(w, matchHeader, rows)
}

func WriteSummaryCSV(w io.Writer, summaries []model.BrandSummary) error {
	rows := make([]row, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, summaryRow(s))
	}
	return writeCSV(w, summaryHeader, rows)
}

// WriteReportXLSX пишет книгу с листами "matches" и "summary".
func WriteReportXLSX(w io.Writer, res model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "matches"); err != nil {
		return err
	}
	if _, err := f.NewSheet("summary"); err != nil {
		return err
	}

	matches := make([]row, 0, len(res.Results))
	for _, r := range res.Results {
		matches = append(matches, matchRow(r))
	}
	if err := fillSheet(f, "matches", matchHeader, matches); err != nil {
		return err
	}
	summary := make([]row, 0, len(res.Summaries))
	for _, s := range res.Summaries {
		summary = append(summary, summaryRow(s))
	}
	if err := fillSheet(f, "summary", summaryHeader, summary); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func fillSheet(f *excelize.File, sheet string, header []string, rows []row) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := sw.SetRow("A1", hdr); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, r); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return sw.Flush()
}
