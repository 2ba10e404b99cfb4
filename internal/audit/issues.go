// Package audit inspects an assembled posting table before release. Four
// stages run in sequence, each reports itemized issues and none of them ever
// repairs the data.
package audit

type IssueType string

const (
	IssueStructure    IssueType = "structure"
	IssueBusinessRule IssueType = "business_rule"
	IssueCompleteness IssueType = "completeness"
	IssueMarketReuse  IssueType = "market_reuse"
)

// Issue pinpoints one violated rule. Row is the 1-based data row index,
// 0 means the issue concerns the table or a lane as a whole.
type Issue struct {
	Type    IssueType `json:"type"`
	Row     int       `json:"row"`
	Column  string    `json:"column,omitempty"`
	Message string    `json:"message"`
}

type StageResult struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

// Report is produced once per generation attempt and never mutated after.
type Report struct {
	Stages     []StageResult `json:"stages"`
	Passed     bool          `json:"passed"`
	IssueCount int           `json:"issueCount"`
}

func stageResult(name string, issues []Issue) StageResult {
	return StageResult{Name: name, Passed: len(issues) == 0, Issues: issues}
}
