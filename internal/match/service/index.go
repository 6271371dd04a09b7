package service

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"skumatch/internal/match/model"
)

// токены слов длиной от 2 символов
var reWordToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

type analyzer func(string) []string

func newAnalyzer(opt model.Options) analyzer {
	minN, maxN := opt.NgramMin, opt.NgramMax
	if opt.Analyzer == model.AnalyzerCharWB {
		return func(s string) []string { return charWBNgrams(fold(s), minN, maxN) }
	}
	stop := stopWords(opt.StopWords)
	return func(s string) []string {
		toks := reWordToken.FindAllString(fold(s), -1)
		if stop != nil {
			toks = dropStopWords(toks, stop)
		}
		return wordNgrams(toks, minN, maxN)
	}
}

// dropStopWords убирает стоп-слова до сборки n-грамм: "fries with salt" → "fries salt".
func dropStopWords(toks []string, stop map[string]struct{}) []string {
	out := toks[:0]
	for _, t := range toks {
		if _, ok := stop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func wordNgrams(toks []string, minN, maxN int) []string {
	out := make([]string, 0, len(toks)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(toks); i++ {
			out = append(out, strings.Join(toks[i:i+n], " "))
		}
	}
	return out
}

// charWBNgrams: n-граммы символов внутри слов, слово обрамлено пробелами.
// Короткое слово (длина < n) даёт одну n-грамму целиком.
func charWBNgrams(s string, minN, maxN int) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		r := []rune(" " + w + " ")
		for n := minN; n <= maxN; n++ {
			if len(r) <= n {
				out = append(out, string(r))
				break
			}
			for i := 0; i+n <= len(r); i++ {
				out = append(out, string(r[i:i+n]))
			}
		}
	}
	return out
}

type posting struct {
	doc int
	w   float64
}

// index — TF-IDF словарь и обратный индекс по мастер-строкам ОДНОГО блока.
// Принадлежит воркеру блока, после обработки выбрасывается.
type index struct {
	analyze  analyzer
	vocab    map[string]int
	idf      []float64
	postings [][]posting // term -> (doc, нормированный вес)
	masters  []model.MasterProduct
}

func buildIndex(masters []model.MasterProduct, opt model.Options) *index {
	idx := &index{
		analyze: newAnalyzer(opt),
		vocab:   make(map[string]int),
		masters: masters,
	}

	docs := make([]map[int]int, len(masters))
	var df []int
	for d, m := range masters {
		tf := make(map[int]int)
		for _, g := range idx.analyze(m.Canon) {
			id, ok := idx.vocab[g]
			if !ok {
				id = len(idx.vocab)
				idx.vocab[g] = id
				df = append(df, 0)
			}
			if tf[id] == 0 {
				df[id]++
			}
			tf[id]++
		}
		docs[d] = tf
	}

	// smooth idf: ln((1+n)/(1+df)) + 1
	n := float64(len(masters))
	idx.idf = make([]float64, len(df))
	for id, f := range df {
		idx.idf[id] = math.Log((1+n)/(1+float64(f))) + 1
	}

	idx.postings = make([][]posting, len(df))
	for d, tf := range docs {
		ids, ws := idx.weigh(tf)
		for i, id := range ids {
			idx.postings[id] = append(idx.postings[id], posting{doc: d, w: ws[i]})
		}
	}
	return idx
}

// weigh: tf*idf с L2-нормировкой. Термы в порядке возрастания id,
// чтобы суммы считались в одном и том же порядке.
func (idx *index) weigh(tf map[int]int) ([]int, []float64) {
	ids := make([]int, 0, len(tf))
	for id := range tf {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ws := make([]float64, len(ids))
	var sq float64
	for i, id := range ids {
		ws[i] = float64(tf[id]) * idx.idf[id]
		sq += ws[i] * ws[i]
	}
	if sq == 0 {
		return nil, nil
	}
	norm := math.Sqrt(sq)
	for i := range ws {
		ws[i] /= norm
	}
	return ids, ws
}

func (idx *index) vectorize(text string) ([]int, []float64) {
	tf := make(map[int]int)
	for _, g := range idx.analyze(text) {
		if id, ok := idx.vocab[g]; ok {
			tf[id]++
		}
	}
	return idx.weigh(tf)
}

type hit struct {
	doc int
	cos float64
}

// nearest возвращает topK мастеров по косинусу (убыв.), при равенстве по id.
// Пустой словарь или нулевой вектор запроса → nil (кандидатов нет).
func (idx *index) nearest(text string, topK int) []hit {
	if len(idx.masters) == 0 || len(idx.vocab) == 0 || topK <= 0 {
		return nil
	}
	ids, ws := idx.vectorize(text)
	if len(ids) == 0 {
		return nil
	}

	scores := make([]float64, len(idx.masters))
	for i, id := range ids {
		for _, p := range idx.postings[id] {
			scores[p.doc] += ws[i] * p.w
		}
	}

	hits := make([]hit, len(scores))
	for d, s := range scores {
		// погрешность округления не должна выводить за [0,1]
		hits[d] = hit{doc: d, cos: math.Min(1, math.Max(0, s))}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].cos != hits[j].cos {
			return hits[i].cos > hits[j].cos
		}
		return idx.masters[hits[i].doc].ID < idx.masters[hits[j].doc].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// master по позиции в блоке.
func (idx *index) master(doc int) *model.MasterProduct { return &idx.masters[doc] }
