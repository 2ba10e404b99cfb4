// Package posting expands validated lanes and their generated city pairs into
// the fixed-column load board table.
package posting

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"lanehub/internal/geo"
	"lanehub/internal/refid"
	"lanehub/internal/schema"
)

const (
	boardDateLayout = "01/02/2006"
	laneDateLayout  = "2006-01-02"
)

type Assembler struct {
	refs *refid.Allocator
	mu   sync.Mutex
	rng  *rand.Rand
}

func NewAssembler(refs *refid.Allocator) *Assembler {
	return &Assembler{
		refs: refs,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildTable renders the full output for a batch of lanes, header first.
func (a *Assembler) BuildTable(postings []schema.LanePosting) (*schema.PostingTable, error) {
	table := &schema.PostingTable{Header: schema.PostingHeader}
	for i := range postings {
		rows, err := a.Rows(&postings[i].Lane, postings[i].Base, postings[i].Pairs)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, rows...)
	}
	return table, nil
}

// Rows emits two rows per pair, base pair first: one per contact method,
// identical otherwise. The reference allocator is keyed once per pair, never
// per row, so each code lands on exactly two rows.
func (a *Assembler) Rows(lane *schema.Lane, base schema.CityPair, alternates []schema.CityPair) ([][]string, error) {
	rows := make([][]string, 0, schema.RowsPerPair*(len(alternates)+1))

	weight, err := a.postingWeight(lane)
	if err != nil {
		return nil, err
	}
	baseCode := a.refs.Allocate(lane.Identity())
	rows = append(rows, a.pairRows(lane, base, baseCode, weight)...)

	for i, pair := range alternates {
		weight, err := a.postingWeight(lane)
		if err != nil {
			return nil, err
		}
		code := a.refs.Allocate(fmt.Sprintf("%s#%d", lane.Identity(), i+1))
		rows = append(rows, a.pairRows(lane, pair, code, weight)...)
	}
	return rows, nil
}

// pairRows builds the contact method variants for one pair. Everything but
// the contact method column is identical across the variants.
func (a *Assembler) pairRows(lane *schema.Lane, pair schema.CityPair, referenceCode string, weight int) [][]string {
	rows := make([][]string, 0, schema.RowsPerPair)
	for _, method := range schema.ContactMethods {
		row := make([]string, len(schema.PostingHeader))
		row[schema.ColPickupEarliest] = formatBoardDate(lane.PickupEarliest)
		if lane.PickupLatest != nil {
			row[schema.ColPickupLatest] = formatBoardDate(*lane.PickupLatest)
		}
		row[schema.ColLength] = strconv.Itoa(lane.Length)
		row[schema.ColWeight] = strconv.Itoa(weight)
		row[schema.ColFullPartial] = "Full"
		row[schema.ColEquipment] = lane.Equipment
		row[schema.ColUsePrivateNetwork] = "yes"
		row[schema.ColUseLoadboard] = "yes"
		row[schema.ColContactMethod] = method
		row[schema.ColOriginCity] = geo.DisplayCityName(pair.Pickup.Name)
		row[schema.ColOriginState] = pair.Pickup.StateCode
		row[schema.ColOriginPostal] = pair.Pickup.PostalCode
		row[schema.ColDestCity] = geo.DisplayCityName(pair.Delivery.Name)
		row[schema.ColDestState] = pair.Delivery.StateCode
		row[schema.ColDestPostal] = pair.Delivery.PostalCode
		if lane.Comment != nil {
			row[schema.ColComment] = *lane.Comment
		}
		if lane.Commodity != nil {
			row[schema.ColCommodity] = *lane.Commodity
		}
		row[schema.ColReferenceID] = referenceCode
		rows = append(rows, row)
	}
	return rows
}

// postingWeight draws the weight for one pair: the fixed weight, or a fresh
// value within [min,max] when the lane randomizes. Both contact variants of a
// pair share the drawn value.
func (a *Assembler) postingWeight(lane *schema.Lane) (int, error) {
	if !lane.RandomizeWeight {
		if lane.Weight == nil {
			return 0, fmt.Errorf("lane %s has neither a fixed weight nor a randomize range", lane.Identity())
		}
		return *lane.Weight, nil
	}
	if lane.WeightMin == nil || lane.WeightMax == nil || *lane.WeightMin > *lane.WeightMax {
		return 0, fmt.Errorf("lane %s has an invalid randomize range", lane.Identity())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return *lane.WeightMin + a.rng.Intn(*lane.WeightMax-*lane.WeightMin+1), nil
}

func formatBoardDate(laneDate string) string {
	parsed, err := time.Parse(laneDateLayout, laneDate)
	if err != nil {
		return laneDate
	}
	return parsed.Format(boardDateLayout)
}
