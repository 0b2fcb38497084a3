package planner

import (
	"fmt"
	"strings"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// EstimateDuration folds the per-step time estimates into one plan-level
// figure. The parser is deliberately loose: a leading integer plus an
// "hour" or "minute" token is all it needs, and anything else contributes
// nothing. Totals of two hours or more are reported in whole hours,
// rounded up.
func EstimateDuration(steps []models.Step) string {
	total := 0
	for _, s := range steps {
		total += parseMinutes(s.EstimatedTime)
	}

	if total >= 120 {
		hours := total / 60
		if total%60 != 0 {
			hours++
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", total)
}

// parseMinutes interprets a human-readable time string as minutes
func parseMinutes(s string) int {
	n, ok := leadingInt(s)
	if !ok {
		return 0
	}
	switch {
	case strings.Contains(s, "hour"):
		return n * 60
	case strings.Contains(s, "minute"):
		return n
	default:
		return 0
	}
}

// leadingInt parses the run of digits at the start of s
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n := 0
	ok := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		ok = true
	}
	return n, ok
}
