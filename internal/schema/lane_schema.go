package schema

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// use a single instance of Validate, it caches struct info
var LaneValidate *validator.Validate

func init() {
	LaneValidate = validator.New(validator.WithRequiredStructEnabled())

	// Two letter state / province code
	errState := LaneValidate.RegisterValidation("isStateCode", func(fl validator.FieldLevel) bool {
		regex := regexp.MustCompile(`^[A-Z]{2}$`)
		value := fl.Field().String()
		return regex.MatchString(value)
	})
	if errState != nil {
		return
	}

	// Function to check if a string is in the YYYY-MM-DD format
	errDate := LaneValidate.RegisterValidation("isValidDate", func(fl validator.FieldLevel) bool {
		const layout = "2006-01-02"
		value := fl.Field().String()
		_, err := time.Parse(layout, value)
		return err == nil
	})
	if errDate != nil {
		return
	}

	errPostal := LaneValidate.RegisterValidation("isPostalCode", func(fl validator.FieldLevel) bool {
		regex := regexp.MustCompile(`^[0-9]{5}$|^[A-Z][0-9][A-Z] ?[0-9][A-Z][0-9]$`)
		value := fl.Field().String()
		return regex.MatchString(value)
	})
	if errPostal != nil {
		return
	}

	errEquip := LaneValidate.RegisterValidation("isEquipmentCode", func(fl validator.FieldLevel) bool {
		return KnownEquipment(fl.Field().String())
	})
	if errEquip != nil {
		return
	}

	LaneValidate.RegisterStructValidation(laneCrossFieldValidation, Lane{})
}

// Define the struct with field validations using Go tags
type Lane struct {
	LaneID          string  `json:"laneId" validate:"omitempty" description:"Lane identity, generated when absent"`
	OriginCity      string  `json:"originCity" validate:"required" description:"Pickup city"`
	OriginState     string  `json:"originState" validate:"required,isStateCode" description:"Pickup state, two letters"`
	OriginPostal    *string `json:"originPostalCode" validate:"omitempty,isPostalCode"`
	DestCity        string  `json:"destinationCity" validate:"required" description:"Delivery city"`
	DestState       string  `json:"destinationState" validate:"required,isStateCode" description:"Delivery state, two letters"`
	DestPostal      *string `json:"destinationPostalCode" validate:"omitempty,isPostalCode"`
	Equipment       string  `json:"equipment" validate:"required,isEquipmentCode" example:"V,R,F,SD"`
	Length          int     `json:"length" validate:"required,gte=1,lte=53" description:"Trailer length in feet"`
	Weight          *int    `json:"weight" validate:"omitempty,gt=0" description:"Fixed weight in lbs"`
	RandomizeWeight bool    `json:"randomizeWeight"`
	WeightMin       *int    `json:"weightMin" validate:"omitempty,gt=0"`
	WeightMax       *int    `json:"weightMax" validate:"omitempty,gt=0"`
	PickupEarliest  string  `json:"pickupEarliest" validate:"required,isValidDate" description:"YYYY-MM-DD"`
	PickupLatest    *string `json:"pickupLatest" validate:"omitempty,isValidDate" description:"YYYY-MM-DD"`
	Commodity       *string `json:"commodity" validate:"omitempty,max=70"`
	Comment         *string `json:"comment" validate:"omitempty,max=70"`
	Reference       *string `json:"reference" validate:"omitempty,max=8" description:"Caller supplied reference code"`
}

// laneCrossFieldValidation covers the rules a single field tag cannot express:
// the fixed-vs-randomized weight contract, the equipment payload ceiling and the
// pickup window ordering. Every violated rule is reported, not just the first.
func laneCrossFieldValidation(sl validator.StructLevel) {
	lane := sl.Current().Interface().(Lane)

	if lane.RandomizeWeight {
		if lane.WeightMin == nil {
			sl.ReportError(lane.WeightMin, "WeightMin", "weightMin", "requiredWithRandomize", "")
		}
		if lane.WeightMax == nil {
			sl.ReportError(lane.WeightMax, "WeightMax", "weightMax", "requiredWithRandomize", "")
		}
		if lane.WeightMin != nil && lane.WeightMax != nil && *lane.WeightMin > *lane.WeightMax {
			sl.ReportError(lane.WeightMin, "WeightMin", "weightMin", "minExceedsMax", "")
		}
	} else if lane.Weight == nil {
		sl.ReportError(lane.Weight, "Weight", "weight", "requiredWithoutRandomize", "")
	}

	if limit, known := EquipmentLimit(lane.Equipment); known {
		if effective, ok := lane.EffectiveMaxWeight(); ok && effective > limit {
			sl.ReportError(lane.Weight, "Weight", "weight", "exceedsEquipmentLimit", "")
		}
	}

	if lane.PickupLatest != nil {
		const layout = "2006-01-02"
		earliest, errE := time.Parse(layout, lane.PickupEarliest)
		latest, errL := time.Parse(layout, *lane.PickupLatest)
		if errE == nil && errL == nil && latest.Before(earliest) {
			sl.ReportError(lane.PickupLatest, "PickupLatest", "pickupLatest", "beforePickupEarliest", "")
		}
	}
}

// EffectiveMaxWeight returns the heaviest weight the lane can post: the fixed
// weight, or the randomized upper bound.
func (l *Lane) EffectiveMaxWeight() (int, bool) {
	if l.RandomizeWeight {
		if l.WeightMax != nil {
			return *l.WeightMax, true
		}
		return 0, false
	}
	if l.Weight != nil {
		return *l.Weight, true
	}
	return 0, false
}

// Identity returns the stable identity the reference allocator keys on.
// Caller supplied references win so a resubmitted lane reuses its codes.
func (l *Lane) Identity() string {
	if l.Reference != nil && *l.Reference != "" {
		return *l.Reference
	}
	return l.LaneID
}
