package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"lanehub/internal/audit"
	"lanehub/internal/database"
	"lanehub/internal/exceptions"
	"lanehub/internal/geo"
	"lanehub/internal/middleware"
	"lanehub/internal/posting"
	"lanehub/internal/schema"
	"lanehub/internal/utils"
)

// generation is everything one batch request produced: the postings, the
// rendered table, the per-lane engine outcomes and the audit report.
type generation struct {
	Postings []schema.LanePosting `json:"postings"`
	Outcomes []*geo.Outcome       `json:"outcomes"`
	Report   *audit.Report        `json:"report"`
	table    *schema.PostingTable
}

// PostingHandler runs the full pipeline and streams the CSV when the audit
// passes. Audit failures come back as 422 with the itemized report, the file
// is never released half-checked.
func PostingHandler(repo database.CityRepository, assembler *posting.Assembler, cache database.RedisRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, ok := generate(w, r, repo, assembler, cache)
		if !ok {
			return
		}
		if !result.Report.Passed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(result)
			return
		}

		if insufficient := insufficientLanes(result); len(insufficient) > 0 {
			w.Header().Set("X-Insufficient-Lanes", strings.Join(insufficient, ","))
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="postings.csv"`)
		if err := posting.RenderCSV(utils.NewFlushWriter(w), result.table); err != nil {
			log.Errorf("csv streaming aborted: %v", err)
		}
	})
}

// PostingAuditHandler runs the identical pipeline but always answers with the
// JSON report and diagnostics, letting a broker pre-flight a batch.
func PostingAuditHandler(repo database.CityRepository, assembler *posting.Assembler, cache database.RedisRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, ok := generate(w, r, repo, assembler, cache)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !result.Report.Passed {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		_ = json.NewEncoder(w).Encode(result)
	})
}

func generate(w http.ResponseWriter, r *http.Request, repo database.CityRepository, assembler *posting.Assembler, cache database.RedisRepository) (*generation, bool) {
	ctx := r.Context()
	lanes, _ := ctx.Value(middleware.LanesKey).([]schema.Lane)
	pairTarget, _ := ctx.Value(middleware.PairTargetKey).(int)
	if len(lanes) == 0 || pairTarget == 0 {
		exceptions.InternalErrorHandler(w, errors.New("lane validation middleware did not run"))
		return nil, false
	}

	engine := geo.NewEngine(repo, geo.WithRadiusTiers(radiusTiers(ctx.Value(middleware.PostingConfig), ctx.Value(middleware.RadiusKey))...))

	result := &generation{}
	for i := range lanes {
		outcome, err := engine.GeneratePairs(ctx, &lanes[i], pairTarget)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrCityNotFound):
				exceptions.RequestErrorHandler(w, err)
			case errors.Is(err, database.ErrRepositoryUnavailable):
				exceptions.ServiceUnavailableHandler(w, err)
			default:
				exceptions.InternalErrorHandler(w, err)
			}
			return nil, false
		}
		result.Outcomes = append(result.Outcomes, outcome)
		result.Postings = append(result.Postings, schema.LanePosting{
			Lane:  lanes[i],
			Base:  outcome.Base,
			Pairs: outcome.Pairs,
		})
	}

	table, err := assembler.BuildTable(result.Postings)
	if err != nil {
		exceptions.InternalErrorHandler(w, err)
		return nil, false
	}
	result.table = table
	result.Report = audit.Run(table, result.Postings)

	if err := cache.Flush(middleware.CorrelationID(ctx)); err != nil {
		log.Errorf("cache flush failed: %v", err)
	}
	return result, true
}

func insufficientLanes(result *generation) []string {
	var ids []string
	for i, outcome := range result.Outcomes {
		if outcome.Insufficient {
			ids = append(ids, result.Postings[i].Lane.Identity())
		}
	}
	return ids
}

// radiusTiers derives the search tiers from the posting app config, the
// request override wins for the preferred tier.
func radiusTiers(rawConfig, rawOverride any) []float64 {
	preferred, step, extended := 75.0, 25.0, 125.0
	if config, ok := rawConfig.(map[string]interface{}); ok {
		preferred = configNumber(config, "preferredRadiusMiles", preferred)
		step = configNumber(config, "radiusStepMiles", step)
		extended = configNumber(config, "extendedRadiusMiles", extended)
	}
	if override, ok := rawOverride.(float64); ok {
		preferred = override
	}
	if extended < preferred {
		extended = preferred
	}
	if step <= 0 {
		step = 25
	}

	tiers := []float64{}
	for radius := preferred; radius < extended; radius += step {
		tiers = append(tiers, radius)
	}
	return append(tiers, extended)
}

func configNumber(config map[string]interface{}, key string, fallback float64) float64 {
	switch value := config[key].(type) {
	case int:
		return float64(value)
	case float64:
		return value
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(value, "%f", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}
