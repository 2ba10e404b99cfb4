package audit

import (
	log "github.com/sirupsen/logrus"

	"lanehub/internal/schema"
)

// Run audits the assembled table against the lane postings it was built from.
// Every stage runs even when an earlier one fails, the report carries the
// full picture.
func Run(table *schema.PostingTable, postings []schema.LanePosting) *Report {
	report := &Report{
		Stages: []StageResult{
			checkStructural(table),
			checkBusinessRules(table, postings),
			checkCompleteness(table),
			checkMarketUniqueness(postings),
		},
		Passed: true,
	}
	for _, stage := range report.Stages {
		report.IssueCount += len(stage.Issues)
		if !stage.Passed {
			report.Passed = false
		}
	}
	if !report.Passed {
		log.Warnf("Posting audit failed with %d issues", report.IssueCount)
	}
	return report
}
