package schema

import "strings"

// The load board bulk upload template: 24 columns, fixed order, an asterisk
// marks the mandatory ones. The posting file is rejected upstream if the
// header deviates, so this slice is the single source of truth for both the
// assembler and the audit pipeline.
var PostingHeader = []string{
	"Pickup Earliest*",
	"Pickup Latest",
	"Length (ft)*",
	"Weight (lbs)*",
	"Full/Partial*",
	"Equipment*",
	"Use Private Network*",
	"Private Network Rate",
	"Allow Private Network Booking",
	"Allow Private Network Bidding",
	"Use DAT Loadboard*",
	"DAT Loadboard Rate",
	"Allow DAT Loadboard Booking",
	"Use Extended Network",
	"Contact Method*",
	"Origin City*",
	"Origin State*",
	"Origin Postal Code",
	"Destination City*",
	"Destination State*",
	"Destination Postal Code",
	"Comment",
	"Commodity",
	"Reference ID",
}

// Column positions within PostingHeader.
const (
	ColPickupEarliest = iota
	ColPickupLatest
	ColLength
	ColWeight
	ColFullPartial
	ColEquipment
	ColUsePrivateNetwork
	ColPrivateNetworkRate
	ColAllowPrivateBooking
	ColAllowPrivateBidding
	ColUseLoadboard
	ColLoadboardRate
	ColAllowLoadboardBooking
	ColUseExtendedNetwork
	ColContactMethod
	ColOriginCity
	ColOriginState
	ColOriginPostal
	ColDestCity
	ColDestState
	ColDestPostal
	ColComment
	ColCommodity
	ColReferenceID
)

// The two accepted contact methods. Every pair is posted once per method.
const (
	ContactEmail        = "Email"
	ContactPrimaryPhone = "Primary Phone"
)

var ContactMethods = []string{ContactEmail, ContactPrimaryPhone}

// RowsPerPair is the contact method fan out per city pair.
var RowsPerPair = len(ContactMethods)

// MandatoryColumn reports whether the named header column must be non empty.
func MandatoryColumn(name string) bool {
	return strings.HasSuffix(name, "*")
}

// PostingTable is the assembled output handed to the audit pipeline.
type PostingTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}
