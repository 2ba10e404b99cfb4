package geo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"lanehub/internal/database"
	"lanehub/internal/schema"
)

// Default search tiers in miles. The engine starts at the preferred radius and
// widens tier by tier only while distinct market areas are still missing.
var defaultRadiusTiers = []float64{75, 100, 125}

type Engine struct {
	repo  database.CityRepository
	tiers []float64
}

type Option func(*Engine)

func WithRadiusTiers(tiers ...float64) Option {
	return func(e *Engine) {
		if len(tiers) > 0 {
			e.tiers = tiers
		}
	}
}

func NewEngine(repo database.CityRepository, options ...Option) *Engine {
	engine := &Engine{repo: repo, tiers: defaultRadiusTiers}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// Outcome is the result of one pair generation request. A scarce geography is
// reported through Insufficient plus the diagnostic counts, never through an
// error: a partial posting still has value to the caller.
type Outcome struct {
	Base            schema.CityPair   `json:"base"`
	Pairs           []schema.CityPair `json:"pairs"`
	Insufficient    bool              `json:"insufficient"`
	Reason          string            `json:"reason,omitempty"`
	RadiusUsed      float64           `json:"radiusUsedMiles"`
	PickupMarkets   int               `json:"pickupMarketsAvailable"`
	DeliveryMarkets int               `json:"deliveryMarketsAvailable"`
}

// marketCandidate is the one representative city selected for a market area.
type marketCandidate struct {
	city        schema.City
	distance    float64
	nameMatched bool
}

type sideResult struct {
	candidates []marketCandidate
	radius     float64
	err        error
}

// GeneratePairs resolves the lane's endpoints, searches both sides for
// candidate cities in distinct market areas and pairs them up. The base
// endpoint markets are seeded as used so no alternate can land in them.
func (e *Engine) GeneratePairs(ctx context.Context, lane *schema.Lane, target int) (*Outcome, error) {
	origin, err := e.repo.FindByNameState(ctx, lane.OriginCity, lane.OriginState)
	if err != nil {
		return nil, err
	}
	destination, err := e.repo.FindByNameState(ctx, lane.DestCity, lane.DestState)
	if err != nil {
		return nil, err
	}

	used := map[string]bool{
		origin.MarketCode:      true,
		destination.MarketCode: true,
	}

	// Both sides query independently, one side failing must not discard the
	// other side's results.
	var wg sync.WaitGroup
	var pickupSide, deliverySide sideResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		pickupSide = e.collectSide(ctx, origin, used, target)
	}()
	go func() {
		defer wg.Done()
		deliverySide = e.collectSide(ctx, destination, used, target)
	}()
	wg.Wait()

	if pickupSide.err != nil && deliverySide.err != nil {
		return nil, errors.Join(pickupSide.err, deliverySide.err)
	}

	outcome := &Outcome{
		Base:            schema.CityPair{Pickup: *origin, Delivery: *destination},
		RadiusUsed:      maxRadius(pickupSide.radius, deliverySide.radius),
		PickupMarkets:   len(pickupSide.candidates),
		DeliveryMarkets: len(deliverySide.candidates),
	}

	outcome.Pairs = pairCandidates(pickupSide.candidates, deliverySide.candidates, target)

	if len(outcome.Pairs) < target {
		outcome.Insufficient = true
		outcome.Reason = fmt.Sprintf("only %d of %d unique market pairs available at %.0f miles (%d pickup markets, %d delivery markets)",
			len(outcome.Pairs), target, outcome.RadiusUsed, outcome.PickupMarkets, outcome.DeliveryMarkets)
		if pickupSide.err != nil {
			outcome.Reason = fmt.Sprintf("pickup side search failed: %v; %s", pickupSide.err, outcome.Reason)
		}
		if deliverySide.err != nil {
			outcome.Reason = fmt.Sprintf("delivery side search failed: %v; %s", deliverySide.err, outcome.Reason)
		}
		log.Warnf("Insufficient market diversity for lane %s: %s", lane.Identity(), outcome.Reason)
	}
	return outcome, nil
}

// collectSide widens the search tier by tier until enough distinct market
// areas are represented or the widest tier is exhausted. The used set is never
// reset between tiers, scarcity surfaces as a short candidate list.
func (e *Engine) collectSide(ctx context.Context, base *schema.City, used map[string]bool, target int) sideResult {
	result := sideResult{}
	for _, radius := range e.tiers {
		result.radius = radius
		cities, err := e.repo.FindWithinRadius(ctx, base.Latitude, base.Longitude, radius)
		if err != nil {
			result.err = err
			return result
		}
		result.candidates = selectRepresentatives(cities, base, used)
		if len(result.candidates) >= target {
			break
		}
	}
	sort.Slice(result.candidates, func(i, j int) bool {
		return result.candidates[i].distance < result.candidates[j].distance
	})
	return result
}

// selectRepresentatives picks exactly one city per market area: the city whose
// name matches the market's display name when present, otherwise the nearest.
func selectRepresentatives(cities []schema.City, base *schema.City, used map[string]bool) []marketCandidate {
	byMarket := make(map[string]marketCandidate)
	for _, city := range cities {
		if city.MarketCode == "" || used[city.MarketCode] {
			continue
		}
		candidate := marketCandidate{
			city:        city,
			distance:    HaversineMiles(base.Latitude, base.Longitude, city.Latitude, city.Longitude),
			nameMatched: MarketNameMatches(city.Name, city.MarketName),
		}
		current, seen := byMarket[city.MarketCode]
		if !seen {
			byMarket[city.MarketCode] = candidate
			continue
		}
		if betterRepresentative(candidate, current) {
			byMarket[city.MarketCode] = candidate
		}
	}

	candidates := make([]marketCandidate, 0, len(byMarket))
	for _, candidate := range byMarket {
		candidates = append(candidates, candidate)
	}
	return candidates
}

func betterRepresentative(challenger, current marketCandidate) bool {
	if challenger.nameMatched != current.nameMatched {
		return challenger.nameMatched
	}
	return challenger.distance < current.distance
}

// pairCandidates zips ranked pickup and delivery candidates, skipping any
// pairing that would put both ends in the same market area. Every pickup
// market and every delivery market is consumed at most once.
func pairCandidates(pickups, deliveries []marketCandidate, target int) []schema.CityPair {
	pairs := make([]schema.CityPair, 0, target)
	consumed := make([]bool, len(deliveries))
	for _, pickup := range pickups {
		if len(pairs) == target {
			break
		}
		for j, delivery := range deliveries {
			if consumed[j] || delivery.city.MarketCode == pickup.city.MarketCode {
				continue
			}
			pairs = append(pairs, schema.CityPair{
				Pickup:           pickup.city,
				Delivery:         delivery.city,
				PickupDistance:   pickup.distance,
				DeliveryDistance: delivery.distance,
			})
			consumed[j] = true
			break
		}
	}
	return pairs
}

func maxRadius(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
