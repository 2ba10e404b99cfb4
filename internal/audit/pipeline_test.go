package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanehub/internal/schema"
)

func intPtr(v int) *int { return &v }

func fixtureCity(name, state, postal, market string) schema.City {
	return schema.City{Name: name, StateCode: state, PostalCode: postal, MarketCode: market, MarketName: name + " Mkt"}
}

func fixturePosting() schema.LanePosting {
	return schema.LanePosting{
		Lane: schema.Lane{
			LaneID:         "lane-1",
			OriginCity:     "Cincinnati",
			OriginState:    "OH",
			DestCity:       "Chicago",
			DestState:      "IL",
			Equipment:      "V",
			Length:         53,
			Weight:         intPtr(40000),
			PickupEarliest: "2026-09-01",
		},
		Base: schema.CityPair{
			Pickup:   fixtureCity("Cincinnati", "OH", "45202", "CIN"),
			Delivery: fixtureCity("Chicago", "IL", "60601", "CHI"),
		},
		Pairs: []schema.CityPair{
			{Pickup: fixtureCity("Dayton", "OH", "45402", "DAY"), Delivery: fixtureCity("Rockford", "IL", "61101", "RFD")},
			{Pickup: fixtureCity("Lexington", "KY", "40507", "LEX"), Delivery: fixtureCity("Milwaukee", "WI", "53202", "MKE")},
		},
	}
}

// fixtureTable builds a well formed table matching fixturePosting by hand so
// the audit tests do not depend on the assembler.
func fixtureTable(posting schema.LanePosting) *schema.PostingTable {
	table := &schema.PostingTable{Header: schema.PostingHeader}
	codes := []string{"AA10001", "AB10002", "AC10003"}
	pairs := append([]schema.CityPair{posting.Base}, posting.Pairs...)
	for i, pair := range pairs {
		for _, method := range schema.ContactMethods {
			row := make([]string, len(schema.PostingHeader))
			row[schema.ColPickupEarliest] = "09/01/2026"
			row[schema.ColLength] = "53"
			row[schema.ColWeight] = "40000"
			row[schema.ColFullPartial] = "Full"
			row[schema.ColEquipment] = "V"
			row[schema.ColUsePrivateNetwork] = "yes"
			row[schema.ColUseLoadboard] = "yes"
			row[schema.ColContactMethod] = method
			row[schema.ColOriginCity] = pair.Pickup.Name
			row[schema.ColOriginState] = pair.Pickup.StateCode
			row[schema.ColOriginPostal] = pair.Pickup.PostalCode
			row[schema.ColDestCity] = pair.Delivery.Name
			row[schema.ColDestState] = pair.Delivery.StateCode
			row[schema.ColDestPostal] = pair.Delivery.PostalCode
			row[schema.ColReferenceID] = codes[i]
			table.Rows = append(table.Rows, row)
		}
	}
	return table
}

func findIssue(report *Report, stage string, issueType IssueType) []Issue {
	for _, s := range report.Stages {
		if s.Name != stage {
			continue
		}
		var matched []Issue
		for _, issue := range s.Issues {
			if issue.Type == issueType {
				matched = append(matched, issue)
			}
		}
		return matched
	}
	return nil
}

func TestRunCleanTablePasses(t *testing.T) {
	posting := fixturePosting()
	report := Run(fixtureTable(posting), []schema.LanePosting{posting})

	assert.True(t, report.Passed)
	assert.Zero(t, report.IssueCount)
	require.Len(t, report.Stages, 4)
	for _, stage := range report.Stages {
		assert.True(t, stage.Passed, stage.Name)
	}
}

func TestStructuralHeaderMismatch(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	header := make([]string, len(schema.PostingHeader))
	copy(header, schema.PostingHeader)
	header[schema.ColWeight] = "Weight"
	table.Header = header

	report := Run(table, []schema.LanePosting{posting})
	assert.False(t, report.Passed)
	issues := findIssue(report, "structural", IssueStructure)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, `"Weight (lbs)*"`)
}

func TestStructuralShortRow(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[2] = table.Rows[2][:20]

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "structural", IssueStructure)
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Row)
}

func TestBusinessRowCountFloor(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows = table.Rows[:4]

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "business_rules", IssueBusinessRule)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "expected at least 6")
}

func TestBusinessContactMethodDuplicated(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[1][schema.ColContactMethod] = schema.ContactEmail

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "business_rules", IssueBusinessRule)
	require.NotEmpty(t, issues)
	assert.Equal(t, schema.PostingHeader[schema.ColContactMethod], issues[0].Column)
}

func TestBusinessWeightExceedsEquipmentLimit(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	for _, row := range table.Rows {
		row[schema.ColWeight] = "48000" // van limit is 46000
	}

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "business_rules", IssueBusinessRule)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "exceeds equipment limit")
	assert.Contains(t, issues[0].Message, "46000")
}

func TestBusinessWeightNotNumeric(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[0][schema.ColWeight] = "forty"

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "business_rules", IssueBusinessRule)
	require.NotEmpty(t, issues)
	assert.Equal(t, 1, issues[0].Row)
	assert.Contains(t, issues[0].Message, "not numeric")
}

func TestCompletenessBlankDestinationState(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[3][schema.ColDestState] = ""

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "completeness", IssueCompleteness)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Row)
	assert.Equal(t, "Destination State*", issues[0].Column)
}

func TestCompletenessMissingReferenceCode(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[5][schema.ColReferenceID] = ""

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "completeness", IssueCompleteness)
	require.NotEmpty(t, issues)
	assert.Equal(t, 6, issues[0].Row)
	assert.Contains(t, issues[0].Message, "reference code")
}

func TestCompletenessReferenceCodeOverused(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[2][schema.ColReferenceID] = "AA10001"
	table.Rows[3][schema.ColReferenceID] = "AA10001"

	report := Run(table, []schema.LanePosting{posting})
	issues := findIssue(report, "completeness", IssueCompleteness)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, `"AA10001"`)
	assert.Contains(t, issues[0].Message, "4 rows")
}

func TestReportJSONRoundTrip(t *testing.T) {
	posting := fixturePosting()
	table := fixtureTable(posting)
	table.Rows[3][schema.ColDestState] = ""

	report := Run(table, []schema.LanePosting{posting})
	require.False(t, report.Passed)

	encoded, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, *report, decoded)

	issues := findIssue(&decoded, "completeness", IssueCompleteness)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Row)
	assert.Equal(t, "Destination State*", issues[0].Column)
}

func TestMarketUniquenessPickupRepeat(t *testing.T) {
	posting := fixturePosting()
	posting.Pairs[1].Pickup.MarketCode = "DAY"

	report := Run(fixtureTable(posting), []schema.LanePosting{posting})
	issues := findIssue(report, "market_uniqueness", IssueMarketReuse)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "repeats pickup market area")
}

func TestMarketUniquenessBaseMarketReuse(t *testing.T) {
	posting := fixturePosting()
	posting.Pairs[0].Delivery.MarketCode = "CHI"

	report := Run(fixtureTable(posting), []schema.LanePosting{posting})
	issues := findIssue(report, "market_uniqueness", IssueMarketReuse)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "lane's own endpoints")
}

func TestMarketUniquenessSameMarketBothEnds(t *testing.T) {
	posting := fixturePosting()
	posting.Pairs[0].Pickup.MarketCode = "SHR"
	posting.Pairs[0].Delivery.MarketCode = "SHR"

	report := Run(fixtureTable(posting), []schema.LanePosting{posting})
	issues := findIssue(report, "market_uniqueness", IssueMarketReuse)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "both pickup and delivery")
}
