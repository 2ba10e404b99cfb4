package geo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanehub/internal/database"
	"lanehub/internal/schema"
)

type fakeCityRepository struct {
	byName map[string]schema.City
	cities []schema.City
	failAt func(lat, lon float64) error
}

func (f *fakeCityRepository) FindByNameState(_ context.Context, city, state string) (*schema.City, error) {
	if record, ok := f.byName[city+","+state]; ok {
		return &record, nil
	}
	return nil, fmt.Errorf("%w: %s, %s", database.ErrCityNotFound, city, state)
}

func (f *fakeCityRepository) FindWithinRadius(_ context.Context, lat, lon, radiusMiles float64) ([]schema.City, error) {
	if f.failAt != nil {
		if err := f.failAt(lat, lon); err != nil {
			return nil, err
		}
	}
	var matches []schema.City
	for _, city := range f.cities {
		if HaversineMiles(lat, lon, city.Latitude, city.Longitude) <= radiusMiles {
			matches = append(matches, city)
		}
	}
	return matches, nil
}

var (
	cincinnati = schema.City{Name: "Cincinnati", StateCode: "OH", PostalCode: "45202", Latitude: 39.1031, Longitude: -84.5120, MarketCode: "CIN", MarketName: "Cincinnati Mkt"}
	chicago    = schema.City{Name: "Chicago", StateCode: "IL", PostalCode: "60601", Latitude: 41.8781, Longitude: -87.6298, MarketCode: "CHI", MarketName: "Chicago Mkt"}
)

// candidateRing lays out one city per market at increasing distances from a
// base coordinate. 0.15 degrees of latitude is roughly ten miles.
func candidateRing(baseLat, baseLon float64, prefix string, count int) []schema.City {
	cities := make([]schema.City, 0, count)
	for i := 1; i <= count; i++ {
		market := fmt.Sprintf("%s%d", prefix, i)
		cities = append(cities, schema.City{
			Name:       fmt.Sprintf("%s Town %d", prefix, i),
			StateCode:  "OH",
			PostalCode: fmt.Sprintf("4%04d", i),
			Latitude:   baseLat + float64(i)*0.15,
			Longitude:  baseLon,
			MarketCode: market,
			MarketName: fmt.Sprintf("%s Town %d Mkt", prefix, i),
		})
	}
	return cities
}

func testLane() *schema.Lane {
	weight := 40000
	return &schema.Lane{
		LaneID:         "lane-1",
		OriginCity:     "Cincinnati",
		OriginState:    "OH",
		DestCity:       "Chicago",
		DestState:      "IL",
		Equipment:      "V",
		Length:         53,
		Weight:         &weight,
		PickupEarliest: "2026-09-01",
	}
}

func newFakeRepo(pickupMarkets, deliveryMarkets int) *fakeCityRepository {
	repo := &fakeCityRepository{
		byName: map[string]schema.City{
			"Cincinnati,OH": cincinnati,
			"Chicago,IL":    chicago,
		},
	}
	repo.cities = append(repo.cities, candidateRing(cincinnati.Latitude, cincinnati.Longitude, "P", pickupMarkets)...)
	repo.cities = append(repo.cities, candidateRing(chicago.Latitude, chicago.Longitude, "D", deliveryMarkets)...)
	return repo
}

func TestGeneratePairsFullTarget(t *testing.T) {
	engine := NewEngine(newFakeRepo(6, 6))
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 5)
	require.NoError(t, err)

	require.Len(t, outcome.Pairs, 5)
	assert.False(t, outcome.Insufficient)
	assert.Equal(t, 75.0, outcome.RadiusUsed)
	assert.Equal(t, "CIN", outcome.Base.Pickup.MarketCode)
	assert.Equal(t, "CHI", outcome.Base.Delivery.MarketCode)

	pickupMarkets := make(map[string]bool)
	deliveryMarkets := make(map[string]bool)
	for _, pair := range outcome.Pairs {
		assert.NotEqual(t, pair.Pickup.MarketCode, pair.Delivery.MarketCode)
		assert.False(t, pickupMarkets[pair.Pickup.MarketCode], "pickup market reused")
		assert.False(t, deliveryMarkets[pair.Delivery.MarketCode], "delivery market reused")
		pickupMarkets[pair.Pickup.MarketCode] = true
		deliveryMarkets[pair.Delivery.MarketCode] = true
		assert.NotEqual(t, "CIN", pair.Pickup.MarketCode)
		assert.NotEqual(t, "CHI", pair.Delivery.MarketCode)
	}
}

func TestGeneratePairsRanksByDistance(t *testing.T) {
	engine := NewEngine(newFakeRepo(6, 6))
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 5)
	require.NoError(t, err)

	for i := 1; i < len(outcome.Pairs); i++ {
		assert.LessOrEqual(t, outcome.Pairs[i-1].PickupDistance, outcome.Pairs[i].PickupDistance)
	}
}

func TestGeneratePairsWidensTiers(t *testing.T) {
	repo := newFakeRepo(2, 6)
	// Three more pickup markets only reachable past the preferred radius.
	for i := 0; i < 3; i++ {
		market := fmt.Sprintf("PX%d", i+1)
		repo.cities = append(repo.cities, schema.City{
			Name:       fmt.Sprintf("Far Town %d", i+1),
			StateCode:  "OH",
			Latitude:   cincinnati.Latitude + 1.2 + float64(i)*0.2,
			Longitude:  cincinnati.Longitude,
			MarketCode: market,
			MarketName: fmt.Sprintf("Far Town %d Mkt", i+1),
		})
	}

	engine := NewEngine(repo)
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 5)
	require.NoError(t, err)

	require.Len(t, outcome.Pairs, 5)
	assert.False(t, outcome.Insufficient)
	assert.Equal(t, 125.0, outcome.RadiusUsed)
}

func TestGeneratePairsInsufficientNeverReusesMarkets(t *testing.T) {
	engine := NewEngine(newFakeRepo(6, 3))
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 5)
	require.NoError(t, err)

	assert.True(t, outcome.Insufficient)
	assert.Len(t, outcome.Pairs, 3)
	assert.Equal(t, 3, outcome.DeliveryMarkets)
	assert.Contains(t, outcome.Reason, "3 of 5")
	assert.Contains(t, outcome.Reason, "delivery markets")

	deliveryMarkets := make(map[string]bool)
	for _, pair := range outcome.Pairs {
		assert.False(t, deliveryMarkets[pair.Delivery.MarketCode])
		deliveryMarkets[pair.Delivery.MarketCode] = true
	}
}

func TestGeneratePairsSkipsSharedMarketAcrossEnds(t *testing.T) {
	repo := newFakeRepo(1, 1)
	// One market code reachable from both endpoints must never pair with itself.
	repo.cities = append(repo.cities,
		schema.City{Name: "Shared North", StateCode: "IN", Latitude: cincinnati.Latitude + 0.3, Longitude: cincinnati.Longitude, MarketCode: "SHR", MarketName: "Shared Mkt"},
		schema.City{Name: "Shared South", StateCode: "IN", Latitude: chicago.Latitude + 0.3, Longitude: chicago.Longitude, MarketCode: "SHR", MarketName: "Shared Mkt"},
	)

	engine := NewEngine(repo)
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 2)
	require.NoError(t, err)

	for _, pair := range outcome.Pairs {
		assert.NotEqual(t, pair.Pickup.MarketCode, pair.Delivery.MarketCode)
	}
}

func TestGeneratePairsPrefersMarketNamedCity(t *testing.T) {
	repo := &fakeCityRepository{
		byName: map[string]schema.City{
			"Cincinnati,OH": cincinnati,
			"Chicago,IL":    chicago,
		},
		cities: []schema.City{
			// Nearer city in the same market must lose to the name match.
			{Name: "Nearville", StateCode: "OH", Latitude: cincinnati.Latitude + 0.2, Longitude: cincinnati.Longitude, MarketCode: "SAI", MarketName: "St. Marys Mkt"},
			{Name: "Saint Marys", StateCode: "OH", Latitude: cincinnati.Latitude + 0.6, Longitude: cincinnati.Longitude, MarketCode: "SAI", MarketName: "St. Marys Mkt"},
			{Name: "D Town 1", StateCode: "IL", Latitude: chicago.Latitude + 0.3, Longitude: chicago.Longitude, MarketCode: "D1", MarketName: "D Town 1 Mkt"},
		},
	}

	engine := NewEngine(repo)
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 1)
	require.NoError(t, err)

	require.Len(t, outcome.Pairs, 1)
	assert.Equal(t, "Saint Marys", outcome.Pairs[0].Pickup.Name)
}

func TestGeneratePairsOneSideFailureDegrades(t *testing.T) {
	repo := newFakeRepo(6, 6)
	repo.failAt = func(lat, _ float64) error {
		if lat > 41 { // delivery side only
			return fmt.Errorf("%w: connection reset", database.ErrRepositoryUnavailable)
		}
		return nil
	}

	engine := NewEngine(repo)
	outcome, err := engine.GeneratePairs(context.Background(), testLane(), 5)
	require.NoError(t, err)

	assert.True(t, outcome.Insufficient)
	assert.Empty(t, outcome.Pairs)
	assert.Contains(t, outcome.Reason, "delivery side search failed")
	assert.Equal(t, 6, outcome.PickupMarkets)
}

func TestGeneratePairsBothSidesFailing(t *testing.T) {
	repo := newFakeRepo(6, 6)
	repo.failAt = func(float64, float64) error {
		return fmt.Errorf("%w: connection reset", database.ErrRepositoryUnavailable)
	}

	engine := NewEngine(repo)
	_, err := engine.GeneratePairs(context.Background(), testLane(), 5)
	require.ErrorIs(t, err, database.ErrRepositoryUnavailable)
}

func TestGeneratePairsUnknownOrigin(t *testing.T) {
	engine := NewEngine(newFakeRepo(6, 6))
	lane := testLane()
	lane.OriginCity = "Nowhere"
	_, err := engine.GeneratePairs(context.Background(), lane, 5)
	require.ErrorIs(t, err, database.ErrCityNotFound)
}
