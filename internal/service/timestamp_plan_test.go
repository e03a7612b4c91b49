package service

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPlanTimestamps(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		duration     float64
		want         []int
		wantWarnings int
	}{
		{name: "sorted and trimmed", raw: "8, 2,5", duration: 100, want: []int{2, 5, 8}},
		{name: "drops past duration", raw: "8,2,5", duration: 6, want: []int{2, 5}, wantWarnings: 1},
		{name: "equal to duration dropped", raw: "6", duration: 6, want: []int{}, wantWarnings: 1},
		{name: "duplicates collapse", raw: "3,3,1", duration: 10, want: []int{1, 3}},
		{name: "zero and negative dropped", raw: "0,-2,4", duration: 10, want: []int{4}, wantWarnings: 2},
		{name: "garbage tokens dropped", raw: "a, 2 ,1.5,,", duration: 10, want: []int{2}, wantWarnings: 2},
		{name: "empty input", raw: "", duration: 10, want: []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, warnings := PlanTimestamps(tc.raw, tc.duration)
			assert.Equal(t, tc.want, got)
			assert.Len(t, warnings, tc.wantWarnings)
		})
	}
}

func TestPlanTimestampsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("plan is strictly ascending inside (0, duration)", prop.ForAll(
		func(values []int, duration float64) bool {
			plan, _ := PlanTimestamps(toCSV(values), duration)
			for i, ts := range plan {
				if ts <= 0 || float64(ts) >= duration {
					return false
				}
				if i > 0 && plan[i-1] >= ts {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-50, 200)),
		gen.Float64Range(0, 150),
	))

	properties.Property("every in-range input survives", prop.ForAll(
		func(values []int, duration float64) bool {
			plan, _ := PlanTimestamps(toCSV(values), duration)
			for _, v := range values {
				if v > 0 && float64(v) < duration {
					if i := sort.SearchInts(plan, v); i >= len(plan) || plan[i] != v {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-50, 200)),
		gen.Float64Range(0, 150),
	))

	properties.TestingRun(t)
}
