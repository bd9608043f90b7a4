package match

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TokenSortRatio scores two normalized names 0-100, insensitive to word
// order: tokens are sorted before a Levenshtein similarity comparison,
// so "GENERALE SOCIETE" and "SOCIETE GENERALE" score 100.
func TokenSortRatio(a, b string) int {
	as, bs := sortTokens(a), sortTokens(b)
	if as == "" || bs == "" {
		return 0
	}
	sim := strutil.Similarity(as, bs, metrics.NewLevenshtein())
	return int(math.Round(sim * 100))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return ""
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
