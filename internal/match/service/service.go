package service

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"skumatch/internal/match/model"
)

type blockOutput struct {
	results    []model.MatchResult
	summary    model.BrandSummary
	unresolved int
	empty      int
}

// Run — основной прогон. Режет данные на блоки по бренду, каждый блок
// обрабатывает свой воркер со своим индексом, результаты сливаются
// одним сборщиком после завершения всех воркеров в порядке блоков.
// Входные срезы не изменяются.
func Run(ctx context.Context, log zerolog.Logger, masters []model.MasterProduct, scraped []model.ScrapedProduct, opt model.Options) (model.Result, error) {
	if err := opt.Validate(); err != nil {
		return model.Result{}, err
	}
	start := time.Now()

	// 1) Канон-строки и ключи брендов
	ms := append([]model.MasterProduct(nil), masters...)
	ss := append([]model.ScrapedProduct(nil), scraped...)
	mOK := make([]bool, len(ms))
	sOK := make([]bool, len(ss))
	for i := range ms {
		mOK[i] = prepareMaster(&ms[i])
	}
	for i := range ss {
		sOK[i] = prepareScraped(&ss[i])
	}

	// 2) Блоки
	bl := buildBlocks(ms, mOK, ss, sOK, opt.TopBrands)
	if bl.malformedM > 0 || bl.malformedS > 0 {
		log.Warn().
			Int("masters", bl.malformedM).
			Int("scraped", bl.malformedS).
			Msg("malformed records skipped")
	}

	// 3) Воркеры: каждый пишет только в свой слот
	outs := make([]blockOutput, len(bl.blocks))
	g, gctx := errgroup.WithContext(ctx)
	workers := opt.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i := range bl.blocks {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outs[i] = processBlock(log, bl.blocks[i], opt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Result{}, err
	}

	// 4) Сборка
	res := model.Result{
		Results:   make([]model.MatchResult, 0),
		Summaries: make([]model.BrandSummary, 0, len(outs)),
		Stats: model.Stats{
			Blocks:           len(bl.blocks),
			MastersLoaded:    len(masters),
			ScrapedLoaded:    len(scraped),
			MalformedMasters: bl.malformedM,
			MalformedScraped: bl.malformedS,
			OutOfScope:       bl.outOfScope,
		},
	}
	for _, o := range outs {
		res.Results = append(res.Results, o.results...)
		res.Summaries = append(res.Summaries, o.summary)
		res.Stats.Unresolved += o.unresolved
		res.Stats.EmptyQueries += o.empty
		res.Stats.Scored += len(o.results)
	}
	sortSummaries(res.Summaries)

	log.Info().
		Int("blocks", res.Stats.Blocks).
		Int("scored", res.Stats.Scored).
		Int("unresolved", res.Stats.Unresolved).
		Int("out_of_scope", res.Stats.OutOfScope).
		Dur("elapsed", time.Since(start)).
		Msg("match run done")
	return res, nil
}

func processBlock(log zerolog.Logger, b model.Block, opt model.Options) blockOutput {
	start := time.Now()
	var out blockOutput

	// пустой мастер-блок: все строки нерешённые
	if len(b.Masters) > 0 {
		idx := buildIndex(b.Masters, opt)
		for i := range b.Scraped {
			s := &b.Scraped[i]
			hits := idx.nearest(s.Canon, opt.TopK)
			if len(hits) == 0 {
				out.empty++
				continue
			}
			out.results = append(out.results, resolve(s, score(s, idx, hits), opt))
		}
	}
	out.unresolved = len(b.Scraped) - len(out.results)
	out.summary = summarize(b, out.results)

	log.Debug().
		Str("brand", b.Brand).
		Int("masters", len(b.Masters)).
		Int("scraped", len(b.Scraped)).
		Int("scored", len(out.results)).
		Int("unresolved", out.unresolved).
		Dur("dur", time.Since(start)).
		Msg("block done")
	return out
}

// resolve: оба режима считаются независимо, без вывода одного из другого.
func resolve(s *model.ScrapedProduct, cands []model.ScoredCandidate, opt model.Options) model.MatchResult {
	tThr, tMar := opt.Rule(model.ModeTrue)
	vThr, vMar := opt.Rule(model.ModeVariant)
	return model.MatchResult{
		ScrapedID:      s.ID,
		Brand:          s.BrandClean,
		ItemName:       s.ItemName,
		ApproxItemSize: joinFields(s.ApproxItemSize, s.BaseUnit),
		ScrapedCanon:   s.Canon,
		Candidates:     len(cands),
		True:           decide(cands, model.ModeTrue, tThr, tMar),
		Variant:        decide(cands, model.ModeVariant, vThr, vMar),
	}
}
