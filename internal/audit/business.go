package audit

import (
	"fmt"
	"strconv"
	"strings"

	"lanehub/internal/schema"
)

// checkBusinessRules verifies the row count floor, the contact method fan out
// per pair and the weight rules per row.
func checkBusinessRules(table *schema.PostingTable, postings []schema.LanePosting) StageResult {
	var issues []Issue

	expected := 0
	for _, posting := range postings {
		expected += schema.RowsPerPair * (len(posting.Pairs) + 1)
	}
	if len(table.Rows) < expected {
		issues = append(issues, Issue{
			Type:    IssueBusinessRule,
			Message: fmt.Sprintf("table has %d rows, expected at least %d for %d lanes", len(table.Rows), expected, len(postings)),
		})
	}

	issues = append(issues, checkContactFanOut(table)...)
	issues = append(issues, checkWeights(table)...)
	return stageResult("business_rules", issues)
}

// Every pickup/delivery pair must appear on exactly two rows, one per
// supported contact method. Pairs are keyed by endpoints plus reference code
// so two lanes sharing a city combination stay separate.
func checkContactFanOut(table *schema.PostingTable) []Issue {
	var issues []Issue
	methodsByPair := make(map[string][]string)
	rowsByPair := make(map[string][]int)
	for i, row := range table.Rows {
		if len(row) != len(schema.PostingHeader) {
			continue // structural stage already reported it
		}
		key := strings.Join([]string{
			row[schema.ColOriginCity], row[schema.ColOriginState],
			row[schema.ColDestCity], row[schema.ColDestState],
			row[schema.ColReferenceID],
		}, "|")
		methodsByPair[key] = append(methodsByPair[key], row[schema.ColContactMethod])
		rowsByPair[key] = append(rowsByPair[key], i+1)
	}

	for key, methods := range methodsByPair {
		if validContactSet(methods) {
			continue
		}
		issues = append(issues, Issue{
			Type:    IssueBusinessRule,
			Row:     rowsByPair[key][0],
			Column:  schema.PostingHeader[schema.ColContactMethod],
			Message: fmt.Sprintf("pair %q posted with contact methods %v, expected one %q and one %q", key, methods, schema.ContactEmail, schema.ContactPrimaryPhone),
		})
	}
	return issues
}

func validContactSet(methods []string) bool {
	if len(methods) != schema.RowsPerPair {
		return false
	}
	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		seen[method] = true
	}
	for _, method := range schema.ContactMethods {
		if !seen[method] {
			return false
		}
	}
	return true
}

// Weights must parse, be positive and stay within the stated equipment's
// payload ceiling. Codes missing from the table get the conservative default.
func checkWeights(table *schema.PostingTable) []Issue {
	var issues []Issue
	weightColumn := schema.PostingHeader[schema.ColWeight]
	for i, row := range table.Rows {
		if len(row) != len(schema.PostingHeader) {
			continue
		}
		weight, err := strconv.Atoi(row[schema.ColWeight])
		if err != nil {
			issues = append(issues, Issue{
				Type:    IssueBusinessRule,
				Row:     i + 1,
				Column:  weightColumn,
				Message: fmt.Sprintf("weight %q is not numeric", row[schema.ColWeight]),
			})
			continue
		}
		if weight <= 0 {
			issues = append(issues, Issue{
				Type:    IssueBusinessRule,
				Row:     i + 1,
				Column:  weightColumn,
				Message: fmt.Sprintf("weight %d must be positive", weight),
			})
			continue
		}
		limit, _ := schema.EquipmentLimit(row[schema.ColEquipment])
		if weight > limit {
			issues = append(issues, Issue{
				Type:    IssueBusinessRule,
				Row:     i + 1,
				Column:  weightColumn,
				Message: fmt.Sprintf("weight %d exceeds equipment limit %d for %q", weight, limit, row[schema.ColEquipment]),
			})
		}
	}
	return issues
}
