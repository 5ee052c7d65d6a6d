package metrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github-pulse/internal/models"
)

// issueRefPattern matches issue references in PR bodies: a bare #digits, or a
// closing-verb phrase followed by one. The bare form already covers the
// verb-qualified ones; they stay in the alternation to document the accepted
// phrasings.
var issueRefPattern = regexp.MustCompile(`(?i)(?:(?:closes?|fixe?s?|resolves?|related\s+to)\s+)?#(\d+)`)

// Linkage scans each PR body for issue references and emits one row per PR
// with at least one match. Referenced numbers are deduplicated and rendered
// as a comma-joined list sorted numerically ascending. Absent or empty bodies
// simply produce no row.
func Linkage(pulls []models.PullRequest) []models.LinkageRow {
	var rows []models.LinkageRow
	for _, pull := range pulls {
		if pull.Body == "" {
			continue
		}

		seen := make(map[int]bool)
		var numbers []int
		for _, match := range issueRefPattern.FindAllStringSubmatch(pull.Body, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			numbers = append(numbers, n)
		}
		if len(numbers) == 0 {
			continue
		}

		sort.Ints(numbers)
		rendered := make([]string, len(numbers))
		for i, n := range numbers {
			rendered[i] = strconv.Itoa(n)
		}
		rows = append(rows, models.LinkageRow{
			PRNumber:     pull.Number,
			PRTitle:      pull.Title,
			LinkedIssues: strings.Join(rendered, ","),
		})
	}
	return rows
}
