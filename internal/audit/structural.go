package audit

import (
	"fmt"

	"lanehub/internal/schema"
)

// checkStructural verifies the header matches the fixed column list exactly,
// in order and count, and that every data row is as wide as the header.
func checkStructural(table *schema.PostingTable) StageResult {
	var issues []Issue

	if len(table.Header) != len(schema.PostingHeader) {
		issues = append(issues, Issue{
			Type:    IssueStructure,
			Message: fmt.Sprintf("header has %d columns, expected %d", len(table.Header), len(schema.PostingHeader)),
		})
	}
	for i, name := range table.Header {
		if i >= len(schema.PostingHeader) {
			issues = append(issues, Issue{
				Type:    IssueStructure,
				Column:  name,
				Message: fmt.Sprintf("unexpected extra column %q at position %d", name, i+1),
			})
			continue
		}
		if name != schema.PostingHeader[i] {
			issues = append(issues, Issue{
				Type:    IssueStructure,
				Column:  schema.PostingHeader[i],
				Message: fmt.Sprintf("column %d is %q, expected %q", i+1, name, schema.PostingHeader[i]),
			})
		}
	}

	for i, row := range table.Rows {
		if len(row) != len(table.Header) {
			issues = append(issues, Issue{
				Type:    IssueStructure,
				Row:     i + 1,
				Message: fmt.Sprintf("row has %d columns, header has %d", len(row), len(table.Header)),
			})
		}
	}
	return stageResult("structural", issues)
}
