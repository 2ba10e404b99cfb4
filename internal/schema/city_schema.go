package schema

// City is an immutable reference record owned by the city repository.
type City struct {
	Name       string  `json:"name"`
	StateCode  string  `json:"stateCode"`
	PostalCode string  `json:"postalCode"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	MarketCode string  `json:"marketCode"`
	MarketName string  `json:"marketName"`
}

// CityPair is one alternate pickup/delivery combination generated for a lane.
// PickupDistance and DeliveryDistance are miles from the lane's own endpoints.
type CityPair struct {
	Pickup           City    `json:"pickup"`
	Delivery         City    `json:"delivery"`
	PickupDistance   float64 `json:"pickupDistanceMiles"`
	DeliveryDistance float64 `json:"deliveryDistanceMiles"`
}

// LanePosting carries a lane together with the pairs its rows were built from.
// The audit pipeline needs the pair metadata to re-check market uniqueness
// independently of the rendered table.
type LanePosting struct {
	Lane  Lane       `json:"lane"`
	Base  CityPair   `json:"base"`
	Pairs []CityPair `json:"pairs"`
}
