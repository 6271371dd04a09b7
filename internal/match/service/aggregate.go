package service

import (
	"math"
	"sort"

	"skumatch/internal/match/model"
)

func rate(n, total int) model.Rate {
	if total == 0 {
		return model.Rate(math.NaN())
	}
	return model.Rate(float64(n) / float64(total))
}

// summarize сводит результаты одного блока в BrandSummary.
// scraped_count: корректные scraped-строки блока, включая нерешённые.
func summarize(b model.Block, results []model.MatchResult) model.BrandSummary {
	s := model.BrandSummary{
		Brand:           b.Brand,
		MasterCount:     len(b.Masters),
		ScrapedCount:    len(b.Scraped),
		ScoredCount:     len(results),
		UnresolvedCount: len(b.Scraped) - len(results),
		MalformedCount:  b.Malformed,
	}
	for _, r := range results {
		if r.True.Accepted {
			s.TrueAccepted++
		}
		if r.Variant.Accepted {
			s.VariantAccepted++
		}
	}
	s.TrueAcceptRate = rate(s.TrueAccepted, s.ScrapedCount)
	s.VariantAcceptRate = rate(s.VariantAccepted, s.ScrapedCount)
	// та же доля среди строк, дошедших до оценки
	s.TrueScoredRate = rate(s.TrueAccepted, s.ScoredCount)
	s.VariantScoredRate = rate(s.VariantAccepted, s.ScoredCount)

	switch {
	case s.MasterCount == 0:
		s.Note = "no master rows for brand"
	case s.ScoredCount == 0:
		s.Note = "no scraped rows scored"
	}
	return s
}

// sortSummaries: scraped_count убыв., бренд по возрастанию.
func sortSummaries(ss []model.BrandSummary) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].ScrapedCount != ss[j].ScrapedCount {
			return ss[i].ScrapedCount > ss[j].ScrapedCount
		}
		return ss[i].Brand < ss[j].Brand
	})
}
