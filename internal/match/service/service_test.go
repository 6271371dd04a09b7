package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skumatch/internal/match/model"
)

func run(t *testing.T, ms []model.MasterProduct, ss []model.ScrapedProduct, opt model.Options) model.Result {
	t.Helper()
	res, err := Run(context.Background(), zerolog.Nop(), ms, ss, opt)
	require.NoError(t, err)
	return res
}

func resultByID(res model.Result, id string) (model.MatchResult, bool) {
	for _, r := range res.Results {
		if r.ScrapedID == id {
			return r, true
		}
	}
	return model.MatchResult{}, false
}

func summaryByBrand(res model.Result, brand string) (model.BrandSummary, bool) {
	for _, s := range res.Summaries {
		if s.Brand == brand {
			return s, true
		}
	}
	return model.BrandSummary{}, false
}

var catalogue = []model.MasterProduct{
	{ID: "M1", BrandRaw: "Acme", Name: "Fries", Size: "750g"},
	{ID: "M2", BrandRaw: "Acme", Name: "Extra Crispy Fries", Size: "1kg"},
	{ID: "M3", BrandRaw: "Acme", Name: "Potato Wedges", Size: "750g"},
	{ID: "M4", BrandRaw: "Bolt", Name: "Cola Zero", Size: "1.25L"},
	{ID: "M5", BrandRaw: "Bolt", Name: "Cola Classic", Size: "1.25L"},
}

func TestRun_ExactProductAccepted(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
	}
	res := run(t, catalogue[:1], ss, model.DefaultOptions())

	r, ok := resultByID(res, "S1")
	require.True(t, ok)
	assert.Equal(t, "acme Fries 750g", r.ScrapedCanon)
	assert.Equal(t, "M1", r.True.BestMasterID)
	assert.InDelta(t, 1.0, r.True.Best.Char, 1e-9)
	assert.InDelta(t, 1.0, r.True.Best.Jacc, 1e-9)
	assert.InDelta(t, 1.0, r.True.Best.Cos, 1e-9)
	assert.GreaterOrEqual(t, r.True.BestScore, 0.90)
	assert.True(t, r.True.Accepted)
	assert.Equal(t, "M1", r.True.AcceptedID())
	assert.Nil(t, r.True.Margin)
	assert.Zero(t, r.True.SecondScore)
	assert.True(t, r.Variant.Accepted)
}

func TestRun_FormattingVariantsInLargerBlock(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: " ACME ", ItemName: "Fries", ApproxItemSize: "750.0", BaseUnit: "g"},
		{ID: "S2", BrandRaw: "Bolt", ItemName: "Cola Zero", ApproxItemSize: "1,25", BaseUnit: "L"},
	}
	res := run(t, catalogue, ss, model.DefaultOptions())

	r1, ok := resultByID(res, "S1")
	require.True(t, ok)
	assert.Equal(t, "M1", r1.True.BestMasterID)
	assert.True(t, r1.True.Accepted)

	r2, ok := resultByID(res, "S2")
	require.True(t, ok)
	assert.Equal(t, "bolt Cola Zero 1.25L", r2.ScrapedCanon)
	assert.Equal(t, "M4", r2.True.BestMasterID)
	assert.Equal(t, "M5", r2.True.SecondMasterID)
	require.NotNil(t, r2.True.Margin)
}

func TestRun_BrandWithoutMastersIsUnresolved(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S2", BrandRaw: "Nobody", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
	}
	res := run(t, catalogue, ss, model.DefaultOptions())

	_, ok := resultByID(res, "S2")
	assert.False(t, ok)

	s, ok := summaryByBrand(res, "nobody")
	require.True(t, ok)
	assert.Equal(t, 1, s.ScrapedCount)
	assert.Equal(t, 0, s.ScoredCount)
	assert.Equal(t, 1, s.UnresolvedCount)
	assert.Equal(t, 0, s.MasterCount)
	assert.Zero(t, float64(s.TrueAcceptRate))
	assert.Zero(t, float64(s.VariantAcceptRate))
	assert.Equal(t, "no master rows for brand", s.Note)
	assert.Equal(t, 1, res.Stats.Unresolved)
}

func TestRun_TopBrandsDropsLowFrequency(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S2", BrandRaw: "Acme", ItemName: "Potato Wedges", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S3", BrandRaw: "Bolt", ItemName: "Cola Zero", ApproxItemSize: "1.25", BaseUnit: "L"},
		{ID: "S4", BrandRaw: "Crumb", ItemName: "Bread", ApproxItemSize: "700", BaseUnit: "g"},
	}
	opt := model.DefaultOptions()
	opt.TopBrands = 2
	res := run(t, catalogue, ss, opt)

	// bolt и crumb по одной строке: при равенстве побеждает меньший бренд
	require.Len(t, res.Summaries, 2)
	assert.Equal(t, "acme", res.Summaries[0].Brand)
	assert.Equal(t, "bolt", res.Summaries[1].Brand)
	_, ok := resultByID(res, "S4")
	assert.False(t, ok)
	_, ok = summaryByBrand(res, "crumb")
	assert.False(t, ok)
	assert.Equal(t, 1, res.Stats.OutOfScope)
}

func TestRun_MalformedRecordsSkipped(t *testing.T) {
	ms := append([]model.MasterProduct{{ID: "", BrandRaw: "Acme", Name: "Fries"}}, catalogue...)
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S2", BrandRaw: "Acme", ItemName: "  "},
		{ID: "S3", BrandRaw: "", ItemName: "Fries"},
	}
	res := run(t, ms, ss, model.DefaultOptions())

	assert.Equal(t, 1, res.Stats.MalformedMasters)
	assert.Equal(t, 2, res.Stats.MalformedScraped)
	s, ok := summaryByBrand(res, "acme")
	require.True(t, ok)
	assert.Equal(t, 1, s.MalformedCount)
	assert.Equal(t, 1, s.ScrapedCount)
	assert.Len(t, res.Results, 1)
}

func TestRun_EmptyBlockRateUndefined(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: ""},
	}
	res := run(t, catalogue, ss, model.DefaultOptions())

	s, ok := summaryByBrand(res, "acme")
	require.True(t, ok)
	assert.Equal(t, 0, s.ScrapedCount)
	assert.True(t, s.TrueAcceptRate.Undefined())
	assert.True(t, s.VariantAcceptRate.Undefined())
}

func TestRun_InvalidOptionsFailFast(t *testing.T) {
	opt := model.DefaultOptions()
	opt.TrueThreshold = 1.5
	_, err := Run(context.Background(), zerolog.Nop(), catalogue, nil, opt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidOptions))

	var oe *model.OptionError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "true_threshold", oe.Field)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ss := []model.ScrapedProduct{{ID: "S1", BrandRaw: "Acme", ItemName: "Fries"}}
	_, err := Run(ctx, zerolog.Nop(), catalogue, ss, model.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S2", BrandRaw: "Acme", ItemName: "Fries Extra Crispy", ApproxItemSize: "1", BaseUnit: "kg"},
		{ID: "S3", BrandRaw: "Bolt", ItemName: "Cola", ApproxItemSize: "1.25", BaseUnit: "L"},
		{ID: "S4", BrandRaw: "Bolt", ItemName: "Classic Cola", ApproxItemSize: "1.25", BaseUnit: "L"},
	}
	one := model.DefaultOptions()
	one.Workers = 1
	many := model.DefaultOptions()
	many.Workers = 8

	assert.Equal(t, run(t, catalogue, ss, one), run(t, catalogue, ss, many))
}

func TestRun_RaisingThresholdOnlyRejectsMore(t *testing.T) {
	ss := []model.ScrapedProduct{
		{ID: "S1", BrandRaw: "Acme", ItemName: "Fries", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S2", BrandRaw: "Acme", ItemName: "Crispy Fries", ApproxItemSize: "1", BaseUnit: "kg"},
		{ID: "S3", BrandRaw: "Acme", ItemName: "Wedges", ApproxItemSize: "750", BaseUnit: "g"},
		{ID: "S4", BrandRaw: "Bolt", ItemName: "Cola Zero Sugar", ApproxItemSize: "1.25", BaseUnit: "L"},
	}
	prev := map[string]bool{}
	for i, thr := range []float64{0.3, 0.6, 0.8, 0.9, 0.99} {
		opt := model.DefaultOptions()
		opt.TrueThreshold = thr
		res := run(t, catalogue, ss, opt)
		cur := map[string]bool{}
		for _, r := range res.Results {
			cur[r.ScrapedID] = r.True.Accepted
		}
		if i > 0 {
			for id, acc := range cur {
				if acc {
					assert.True(t, prev[id], "row %s became accepted at threshold %.2f", id, thr)
				}
			}
		}
		prev = cur
	}
}

func TestProcessBlock_ModesComputedIndependently(t *testing.T) {
	b := model.Block{
		Brand: "acme",
		Masters: []model.MasterProduct{
			{ID: "M1", Canon: "acme golden fries 750g", Name: "golden fries"},
			{ID: "M2", Canon: "acme golden fries 1kg", Name: "golden fries"},
		},
		Scraped: []model.ScrapedProduct{
			{ID: "S1", Canon: "acme golden fries 750g"},
		},
	}
	opt := model.DefaultOptions()
	opt.TrueMargin = 1
	out := processBlock(zerolog.Nop(), b, opt)

	require.Len(t, out.results, 1)
	r := out.results[0]
	assert.False(t, r.True.Accepted)
	assert.Equal(t, model.DecisionAmbiguous, r.True.Decision)
	assert.Equal(t, "M1", r.Variant.BestMasterID)
	assert.NotEqual(t, r.True.Accepted, r.Variant.Accepted)
}
