package service

import (
	"sort"

	"skumatch/internal/match/model"
)

type blocking struct {
	blocks     []model.Block
	outOfScope int // scraped-строки брендов за пределами top_brands
	malformedM int
	malformedS int
}

// buildBlocks режет оба набора по brand_clean и оставляет topBrands самых
// частых (по scraped) брендов. Порядок: частота убыв., затем бренд по возрастанию.
// Записи должны быть уже подготовлены (prepareMaster / prepareScraped).
func buildBlocks(masters []model.MasterProduct, mOK []bool, scraped []model.ScrapedProduct, sOK []bool, topBrands int) blocking {
	var res blocking

	freq := make(map[string]int)
	for i := range scraped {
		if b := scraped[i].BrandClean; b != "" {
			freq[b]++
		}
	}
	brands := make([]string, 0, len(freq))
	for b := range freq {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if freq[brands[i]] != freq[brands[j]] {
			return freq[brands[i]] > freq[brands[j]]
		}
		return brands[i] < brands[j]
	})
	if topBrands > 0 && len(brands) > topBrands {
		brands = brands[:topBrands]
	}

	pos := make(map[string]int, len(brands))
	res.blocks = make([]model.Block, len(brands))
	for i, b := range brands {
		pos[b] = i
		res.blocks[i].Brand = b
	}

	for i := range masters {
		if !mOK[i] {
			res.malformedM++
			continue
		}
		if p, ok := pos[masters[i].BrandClean]; ok {
			res.blocks[p].Masters = append(res.blocks[p].Masters, masters[i])
		}
	}
	for i := range scraped {
		p, inScope := pos[scraped[i].BrandClean]
		if !sOK[i] {
			res.malformedS++
			if inScope {
				res.blocks[p].Malformed++
			}
			continue
		}
		if !inScope {
			res.outOfScope++
			continue
		}
		res.blocks[p].Scraped = append(res.blocks[p].Scraped, scraped[i])
	}
	return res
}
