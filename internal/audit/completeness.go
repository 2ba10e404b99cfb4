package audit

import (
	"fmt"
	"strings"

	"lanehub/internal/schema"
)

// checkCompleteness verifies every mandatory column is filled on every row,
// that no end of a pair misses its city or state, and that each reference
// code appears at most twice (its two contact method duplicates).
func checkCompleteness(table *schema.PostingTable) StageResult {
	var issues []Issue

	for i, row := range table.Rows {
		if len(row) != len(schema.PostingHeader) {
			continue // structural stage already reported it
		}
		for col, name := range schema.PostingHeader {
			if schema.MandatoryColumn(name) && strings.TrimSpace(row[col]) == "" {
				issues = append(issues, Issue{
					Type:    IssueCompleteness,
					Row:     i + 1,
					Column:  name,
					Message: fmt.Sprintf("mandatory column %q is blank", name),
				})
			}
		}
		if strings.TrimSpace(row[schema.ColReferenceID]) == "" {
			issues = append(issues, Issue{
				Type:    IssueCompleteness,
				Row:     i + 1,
				Column:  schema.PostingHeader[schema.ColReferenceID],
				Message: "reference code is missing",
			})
		}
	}

	codeCounts := make(map[string]int)
	firstRowForCode := make(map[string]int)
	for i, row := range table.Rows {
		if len(row) != len(schema.PostingHeader) {
			continue
		}
		code := row[schema.ColReferenceID]
		if code == "" {
			continue
		}
		codeCounts[code]++
		if _, ok := firstRowForCode[code]; !ok {
			firstRowForCode[code] = i + 1
		}
	}
	for code, count := range codeCounts {
		if count > schema.RowsPerPair {
			issues = append(issues, Issue{
				Type:    IssueCompleteness,
				Row:     firstRowForCode[code],
				Column:  schema.PostingHeader[schema.ColReferenceID],
				Message: fmt.Sprintf("reference code %q appears on %d rows, at most %d allowed", code, count, schema.RowsPerPair),
			})
		}
	}
	return stageResult("completeness", issues)
}
