// Package ranker scores documents against a query vector. A document's score
// is the sum over matching query terms of
//
//	queryWeight * storedWeight * idf * relevanceBoost * proximityBoost
//
// normalized by the best score among candidates.
package ranker

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

const (
	academicBoost     = 1.5
	urlTermBoost      = 2.0
	personalPageBoost = 2.5
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

type RankParams struct {
	// ApplyQueryIDF multiplies every term score by a query-time idf on top
	// of the idf already folded into stored weights.
	ApplyQueryIDF bool
	Limit         int
}

// Ranking is the full outcome of scoring one query.
type Ranking struct {
	Results   []ScoredDoc
	TotalHits int
}

// QueryVector counts every distinct term and applies 1 + ln(count). The
// returned order is the order of first appearance.
func QueryVector(terms []string) ([]string, map[string]float64) {
	counts := make(map[string]int, len(terms))
	order := make([]string, 0, len(terms))
	for _, t := range terms {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	weights := make(map[string]float64, len(counts))
	for t, n := range counts {
		weights[t] = 1 + math.Log(float64(n))
	}
	return order, weights
}

// QueryIDF is ln((vocabularySize + 1) / (1 + docFreq)).
func QueryIDF(vocabularySize, docFreq int) float64 {
	return math.Log(float64(vocabularySize+1) / float64(1+docFreq))
}

// ProximityBoost is 1 for fewer than two positions, otherwise
// 1 + 1/(1 + smallest gap between adjacent positions).
func ProximityBoost(positions []int) float64 {
	if len(positions) < 2 {
		return 1
	}
	sorted := positions
	if !sort.IntsAreSorted(sorted) {
		sorted = append([]int(nil), positions...)
		sort.Ints(sorted)
	}
	minGap := math.MaxInt
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i] - sorted[i-1]; gap < minGap {
			minGap = gap
		}
	}
	return 1 + 1/float64(1+minGap)
}

// RelevanceBoost rewards academic hosts, query terms appearing in the URL
// and personal pages marked by "~" in the path.
func RelevanceBoost(docID string, terms []string) float64 {
	boost := 1.0
	lower := strings.ToLower(docID)
	host, path := lower, ""
	if u, err := url.Parse(lower); err == nil {
		host, path = u.Hostname(), u.Path
	}
	if strings.HasSuffix(host, ".edu") || strings.Contains(host, ".edu.") || strings.Contains(host, ".ac.") {
		boost += academicBoost
	}
	for _, t := range terms {
		if t != "" && strings.Contains(lower, t) {
			boost += urlTermBoost
		}
	}
	if strings.Contains(path, "~") {
		boost += personalPageBoost
	}
	return boost
}

// Rank scores every document posting at least one query term. Candidates are
// encountered in query-term order and, within a term, in DocID order; equal
// scores keep that order.
func Rank(idx *index.FinalIndex, terms []string, params RankParams) Ranking {
	order, weights := QueryVector(terms)
	vocabSize := idx.NumTerms()

	scores := make(map[string]float64)
	boosts := make(map[string]float64)
	candidates := make([]string, 0)
	for _, term := range order {
		postings := idx.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := 1.0
		if params.ApplyQueryIDF {
			idf = QueryIDF(vocabSize, len(postings))
		}
		qw := weights[term]
		for _, p := range postings {
			boost, seen := boosts[p.DocID]
			if !seen {
				boost = RelevanceBoost(p.DocID, order)
				boosts[p.DocID] = boost
				candidates = append(candidates, p.DocID)
			}
			weight, prox := postingStats(p)
			scores[p.DocID] += qw * weight * idf * boost * prox
		}
	}
	if len(candidates) == 0 {
		return Ranking{Results: []ScoredDoc{}}
	}

	result := make([]ScoredDoc, len(candidates))
	maxScore := math.Inf(-1)
	for i, id := range candidates {
		result[i] = ScoredDoc{DocID: id, Score: scores[id]}
		maxScore = math.Max(maxScore, scores[id])
	}
	if maxScore != 0 {
		for i := range result {
			result[i].Score /= maxScore
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	total := len(result)
	if params.Limit > 0 && len(result) > params.Limit {
		result = result[:params.Limit]
	}
	return Ranking{Results: result, TotalHits: total}
}

// postingStats resolves the stored weight and proximity boost of a posting.
func postingStats(p index.Posting) (weight, prox float64) {
	switch p.Kind {
	case index.Detailed:
		return p.Weight, ProximityBoost(p.Positions)
	default:
		return p.Weight, 1
	}
}
