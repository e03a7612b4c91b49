package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// PlanTimestamps turns a comma separated list of seconds into ascending,
// unique cut points strictly inside (0, totalDuration). Tokens that are not
// integers or fall outside the range are dropped and reported as warnings.
func PlanTimestamps(raw string, totalDuration float64) ([]int, []string) {
	var (
		parsed   []int
		warnings []string
	)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		value, err := strconv.Atoi(token)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("时间点 %q 不是整数，已忽略", token))
			continue
		}
		parsed = append(parsed, value)
	}

	sort.Ints(parsed)
	parsed = lo.Uniq(parsed)

	plan := make([]int, 0, len(parsed))
	for _, t := range parsed {
		switch {
		case t <= 0:
			warnings = append(warnings, fmt.Sprintf("时间点 %ds 必须大于 0，已忽略", t))
		case float64(t) >= totalDuration:
			warnings = append(warnings, fmt.Sprintf("视频时长不足 %ds（总时长 %.1fs），已忽略", t, totalDuration))
		default:
			plan = append(plan, t)
		}
	}
	return plan, warnings
}
