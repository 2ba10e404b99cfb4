package schema

// Maximum legal payload in lbs per equipment code, grouped by family.
// Enclosed vans haul up to 46k, temperature controlled units lose capacity to
// the reefer plant, open deck trailers carry the most.
var equipmentMaxPayload = map[string]int{
	// Vans
	"V":  46000,
	"VA": 46000,
	"VB": 46000,
	"VC": 46000,
	"VF": 46000,
	"VM": 46000,
	"VR": 46000,
	"VV": 46000,
	// Reefers
	"R":  42000,
	"RA": 42000,
	"RM": 42000,
	"RV": 42000,
	// Open deck
	"F":  48000,
	"FA": 48000,
	"FM": 48000,
	"SD": 48000,
	"DD": 48000,
	"LB": 48000,
	"RG": 48000,
}

// Unlisted codes fall back to the reefer ceiling rather than assume capacity.
const DefaultMaxPayload = 42000

// EquipmentLimit returns the maximum payload for a code and whether the code
// is listed. Unlisted codes get the conservative default.
func EquipmentLimit(code string) (int, bool) {
	if limit, ok := equipmentMaxPayload[code]; ok {
		return limit, true
	}
	return DefaultMaxPayload, false
}

// KnownEquipment reports whether the code belongs to the equipment table.
func KnownEquipment(code string) bool {
	_, ok := equipmentMaxPayload[code]
	return ok
}
