package report

import (
	"math"
	"sort"
)

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
