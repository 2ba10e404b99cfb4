package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lanehub/internal/exceptions"
	"lanehub/internal/schema"
)

type laneContextKey string

const (
	LanesKey      laneContextKey = "lanes"
	PairTargetKey laneContextKey = "pairTarget"
	RadiusKey     laneContextKey = "preferredRadius"
)

const (
	defaultPairTarget = 5
	maxPairTarget     = 10
)

// LaneValidation decodes the submitted lane batch, validates every lane and
// rejects the request with the full list of violations when any lane is
// malformed. Valid lanes get their identity assigned here.
func LaneValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lanes []schema.Lane
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&lanes); err != nil {
			exceptions.RequestErrorHandler(w, fmt.Errorf("cannot decode lane batch: %w", err))
			return
		}
		if len(lanes) == 0 {
			exceptions.RequestErrorHandler(w, errors.New("lane batch is empty"))
			return
		}

		var violations []error
		for i := range lanes {
			if lanes[i].LaneID == "" {
				lanes[i].LaneID = uuid.NewString()
			}
			if err := schema.LaneValidate.Struct(lanes[i]); err != nil {
				var validationErrors validator.ValidationErrors
				if errors.As(err, &validationErrors) {
					for _, e := range validationErrors {
						violations = append(violations, fmt.Errorf("lane %d: invalid field value in '%s': rule '%s' (value: %v)", i+1, e.Field(), e.Tag(), e.Value()))
					}
				} else {
					violations = append(violations, fmt.Errorf("lane %d: %w", i+1, err))
				}
			}
		}
		if len(violations) > 0 {
			exceptions.ValidationErrorHandler(w, violations)
			return
		}

		pairTarget, ok := parsePairTarget(r.URL.Query().Get("pairs"))
		if !ok {
			exceptions.RequestErrorHandler(w, fmt.Errorf("invalid pairs parameter, expected 1-%d", maxPairTarget))
			return
		}

		ctx := context.WithValue(r.Context(), LanesKey, lanes)
		ctx = context.WithValue(ctx, PairTargetKey, pairTarget)
		if radius := r.URL.Query().Get("radius"); radius != "" {
			parsed, err := strconv.ParseFloat(radius, 64)
			if err != nil || parsed <= 0 {
				exceptions.RequestErrorHandler(w, fmt.Errorf("invalid radius parameter: %s", radius))
				return
			}
			ctx = context.WithValue(ctx, RadiusKey, parsed)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parsePairTarget(raw string) (int, bool) {
	if raw == "" {
		return defaultPairTarget, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 || parsed > maxPairTarget {
		return 0, false
	}
	return parsed, true
}
