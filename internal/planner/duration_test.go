package planner

import (
	"testing"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

func mkSteps(times ...string) []models.Step {
	steps := make([]models.Step, len(times))
	for i, tm := range times {
		steps[i] = models.Step{EstimatedTime: tm}
	}
	return steps
}

func TestEstimateDuration(t *testing.T) {
	cases := []struct {
		name  string
		times []string
		want  string
	}{
		{"empty", nil, "0 minutes"},
		{"minutes only", []string{"30 minutes", "45 minutes"}, "75 minutes"},
		{"just under threshold", []string{"1 hour", "59 minutes"}, "119 minutes"},
		{"exactly two hours", []string{"1 hour", "60 minutes"}, "2 hours"},
		{"rounds partial hour up", []string{"2 hours", "1 minute"}, "3 hours"},
		{"hours only", []string{"3 hours"}, "3 hours"},
		{"unparseable ignored", []string{"soon", "a while", "30 minutes"}, "30 minutes"},
		{"no unit ignored", []string{"45", "1 hour"}, "60 minutes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateDuration(mkSteps(tc.times...)); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"30 minutes", 30},
		{"1 minute", 1},
		{"2 hours", 120},
		{"1 hour", 60},
		{"90", 0},
		{"half an hour", 0},
		{"", 0},
	}

	for _, tc := range cases {
		if got := parseMinutes(tc.in); got != tc.want {
			t.Errorf("parseMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
