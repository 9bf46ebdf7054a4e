package stats

import (
	"sort"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// RankResults orders quiz results by score descending; earlier results win ties
func RankResults(results []model.QuizResult) []model.QuizResult {
	ranked := make([]model.QuizResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Timestamp.Before(ranked[j].Timestamp)
	})
	return ranked
}
