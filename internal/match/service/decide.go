package service

import (
	"sort"

	"skumatch/internal/match/model"
)

// допуск на сравнение float: 0.95-0.90 не должно оказаться < 0.05
const scoreEps = 1e-9

func modeScore(c model.ScoredCandidate, m model.Mode) float64 {
	if m == model.ModeVariant {
		return c.VariantScore
	}
	return c.TrueScore
}

// rank — копия кандидатов по убыванию оценки режима, при равенстве по id мастера.
func rank(cands []model.ScoredCandidate, m model.Mode) []model.ScoredCandidate {
	out := append([]model.ScoredCandidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := modeScore(out[i], m), modeScore(out[j], m)
		if si != sj {
			return si > sj
		}
		return out[i].Master.ID < out[j].Master.ID
	})
	return out
}

// decide применяет правило порог+зазор к одному режиму.
// Один кандидат: second = 0, зазор не проверяется.
func decide(cands []model.ScoredCandidate, m model.Mode, threshold, margin float64) model.ModeOutcome {
	var out model.ModeOutcome
	if len(cands) == 0 {
		out.Decision = model.DecisionLowScore
		return out
	}
	ranked := rank(cands, m)
	best := ranked[0]
	out.BestMasterID = best.Master.ID
	out.BestName = best.Master.Name
	out.BestSize = best.Master.Size
	out.BestScore = modeScore(best, m)
	out.Best = model.Components{Char: best.Char, Jacc: best.Jacc, Cos: best.Cos}
	if len(ranked) > 1 {
		out.SecondMasterID = ranked[1].Master.ID
		out.SecondName = ranked[1].Master.Name
		out.SecondSize = ranked[1].Master.Size
		out.SecondScore = modeScore(ranked[1], m)
		gap := out.BestScore - out.SecondScore
		out.Margin = &gap
	}

	switch {
	case out.BestScore+scoreEps < threshold:
		out.Decision = model.DecisionLowScore
	case out.Margin != nil && *out.Margin+scoreEps < margin:
		out.Decision = model.DecisionAmbiguous
	default:
		out.Decision = model.DecisionAccepted
		out.Accepted = true
	}
	return out
}
