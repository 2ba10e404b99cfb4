package audit

import (
	"fmt"

	"lanehub/internal/schema"
)

// checkMarketUniqueness re-verifies, per lane, that no pickup market repeats,
// no delivery market repeats and no pair uses one market for both ends. The
// diversity engine already enforces this, the audit is the last line of
// defense before the file leaves the building.
func checkMarketUniqueness(postings []schema.LanePosting) StageResult {
	var issues []Issue
	for _, posting := range postings {
		issues = append(issues, checkLaneMarkets(&posting)...)
	}
	return stageResult("market_uniqueness", issues)
}

func checkLaneMarkets(posting *schema.LanePosting) []Issue {
	var issues []Issue
	laneID := posting.Lane.Identity()

	// The lane's own endpoints count as used, alternates must not reland there.
	pickupSeen := map[string]int{posting.Base.Pickup.MarketCode: 0}
	deliverySeen := map[string]int{posting.Base.Delivery.MarketCode: 0}

	for i, pair := range posting.Pairs {
		ordinal := i + 1
		if pair.Pickup.MarketCode == pair.Delivery.MarketCode {
			issues = append(issues, Issue{
				Type:    IssueMarketReuse,
				Message: fmt.Sprintf("lane %s pair %d uses market area %q for both pickup and delivery", laneID, ordinal, pair.Pickup.MarketCode),
			})
		}
		if prior, ok := pickupSeen[pair.Pickup.MarketCode]; ok {
			issues = append(issues, Issue{
				Type:    IssueMarketReuse,
				Message: fmt.Sprintf("lane %s pair %d repeats pickup market area %q (%s)", laneID, ordinal, pair.Pickup.MarketCode, priorUse(prior)),
			})
		} else {
			pickupSeen[pair.Pickup.MarketCode] = ordinal
		}
		if prior, ok := deliverySeen[pair.Delivery.MarketCode]; ok {
			issues = append(issues, Issue{
				Type:    IssueMarketReuse,
				Message: fmt.Sprintf("lane %s pair %d repeats delivery market area %q (%s)", laneID, ordinal, pair.Delivery.MarketCode, priorUse(prior)),
			})
		} else {
			deliverySeen[pair.Delivery.MarketCode] = ordinal
		}
	}
	return issues
}

func priorUse(ordinal int) string {
	if ordinal == 0 {
		return "already used by the lane's own endpoints"
	}
	return fmt.Sprintf("first used by pair %d", ordinal)
}
