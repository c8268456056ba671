package audit

import (
	"math"
)

// categoryWeights are the fixed weights of the overall score; they sum to 100.
var categoryWeights = map[Category]int{
	CategoryTitle:          12,
	CategoryDescription:    10,
	CategoryHeadings:       8,
	CategoryImages:         8,
	CategoryLinks:          5,
	CategoryTechnical:      18,
	CategoryStructuredData: 10,
	CategorySocial:         8,
	CategoryContent:        8,
	CategoryPerformance:    13,
}

var severityPenalty = map[Severity]int{
	SeverityCritical: 30,
	SeverityWarning:  15,
	SeverityInfo:     5,
	SeverityPass:     0,
}

// Weight returns the weight of category c in the overall score.
func Weight(c Category) int {
	return categoryWeights[c]
}

// Penalty returns the points a result of severity s deducts from its category.
func Penalty(s Severity) int {
	return severityPenalty[s]
}

// CategoryScore deducts a fixed penalty per result from 100 and floors the
// total at 0. Penalties accumulate rather than average, so several severe
// findings in one category drive it down quickly.
func CategoryScore(results []Result) int {
	score := 100
	for _, r := range results {
		score -= severityPenalty[r.Severity]
	}
	return max(0, score)
}

// CategoryScores groups results by category and scores each one. Categories
// without results score 100.
func CategoryScores(results []Result) map[Category]int {
	grouped := make(map[Category][]Result, len(Categories))
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	scores := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		scores[c] = CategoryScore(grouped[c])
	}
	return scores
}

// OverallScore is the weighted average of the category scores, rounded to the
// nearest integer. Missing categories count as 100.
func OverallScore(scores map[Category]int) int {
	total, weightSum := 0, 0
	for _, c := range Categories {
		s, ok := scores[c]
		if !ok {
			s = 100
		}
		total += s * categoryWeights[c]
		weightSum += categoryWeights[c]
	}
	return int(math.Round(float64(total) / float64(weightSum)))
}

// Score returns the category scores and overall score for results.
func Score(results []Result) (map[Category]int, int) {
	scores := CategoryScores(results)
	return scores, OverallScore(scores)
}
