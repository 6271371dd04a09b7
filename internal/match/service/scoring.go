package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	edlib "github.com/hbollon/go-edlib"

	"skumatch/internal/match/model"
)

func tokenSet(s string) map[string]struct{} {
	f := strings.Fields(fold(s))
	m := make(map[string]struct{}, len(f))
	for _, t := range f {
		m[t] = struct{}{}
	}
	return m
}

// jaccard |A∩B| / |A∪B| по множествам токенов; 0 при пустом объединении.
func jaccard(a, b string) float64 {
	A, B := tokenSet(a), tokenSet(b)
	inter := 0
	for t := range A {
		if _, ok := B[t]; ok {
			inter++
		}
	}
	union := len(A) + len(B) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// indelDistance = la+lb-2*LCS (только вставки и удаления).
func indelDistance(a, b string) int {
	return utf8.RuneCountInString(a) + utf8.RuneCountInString(b) - 2*edlib.LCS(a, b)
}

func normSim(dist, lensum int) float64 {
	if lensum == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(lensum)
}

// tokenSetRatio — сходство множеств токенов, устойчивое к порядку слов:
// общая часть сравнивается с «общая часть + остаток» каждой стороны,
// остатки между собой. Результат в [0,1].
func tokenSetRatio(a, b string) float64 {
	A, B := tokenSet(a), tokenSet(b)
	if len(A) == 0 || len(B) == 0 {
		return 0
	}

	var inter, diffAB, diffBA []string
	for t := range A {
		if _, ok := B[t]; ok {
			inter = append(inter, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range B {
		if _, ok := A[t]; !ok {
			diffBA = append(diffBA, t)
		}
	}
	// одно множество вложено в другое
	if len(inter) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 1
	}

	sort.Strings(inter)
	sort.Strings(diffAB)
	sort.Strings(diffBA)
	sect := strings.Join(inter, " ")
	ab := strings.Join(diffAB, " ")
	ba := strings.Join(diffBA, " ")

	sectLen := utf8.RuneCountInString(sect)
	abLen := utf8.RuneCountInString(ab)
	baLen := utf8.RuneCountInString(ba)
	sep := 0
	if sectLen > 0 {
		sep = 1
	}
	sectAB := sectLen + sep + abLen
	sectBA := sectLen + sep + baLen

	best := normSim(indelDistance(ab, ba), sectAB+sectBA)
	if sectLen == 0 {
		return best
	}
	// "sect" против "sect ab": расстояние = пробел + остаток
	if r := normSim(sep+abLen, sectLen+sectAB); r > best {
		best = r
	}
	if r := normSim(sep+baLen, sectLen+sectBA); r > best {
		best = r
	}
	return best
}

func ensemble(w model.Weights, c model.CandidatePair) float64 {
	return w.Char*c.Char + w.Jacc*c.Jacc + w.Cos*c.Cos
}

// score считает обе ансамблевые оценки для каждого кандидата.
func score(s *model.ScrapedProduct, idx *index, hits []hit) []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, 0, len(hits))
	for _, h := range hits {
		m := idx.master(h.doc)
		pair := model.CandidatePair{
			ScrapedID: s.ID,
			Master:    m,
			Cos:       h.cos,
			Jacc:      jaccard(s.Canon, m.Canon),
			Char:      tokenSetRatio(s.Canon, m.Canon),
		}
		out = append(out, model.ScoredCandidate{
			CandidatePair: pair,
			TrueScore:     ensemble(model.TrueWeights, pair),
			VariantScore:  ensemble(model.VariantWeights, pair),
		})
	}
	return out
}
