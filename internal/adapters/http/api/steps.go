// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/model"
	"github.com/aingelmo/HCGateway-dashboard/internal/domain/validate"
	"github.com/aingelmo/HCGateway-dashboard/internal/gateway"
)

// dateLayout is the query parameter format for /api/steps.
const dateLayout = "2006-01-02"

// defaultRangeDays is the window served when no range is supplied.
const defaultRangeDays = 30

// StepsHandler handles step fetch requests.
type StepsHandler struct {
	deps Dependencies
}

// NewStepsHandler creates a new steps handler.
func NewStepsHandler(deps Dependencies) *StepsHandler {
	return &StepsHandler{deps: deps}
}

// HandleGetSteps handles GET /api/steps?start=YYYY-MM-DD&end=YYYY-MM-DD.
// Omitting both bounds serves the last 30 days.
func (h *StepsHandler) HandleGetSteps(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_steps"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rng, err := parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	records, err := h.deps.FetchSteps(r.Context(), rng)
	switch {
	case err == nil:
	case errors.Is(err, validate.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case errors.Is(err, gateway.ErrAuth), errors.Is(err, gateway.ErrAPI):
		// Upstream details stay in the logs; clients get an opaque message.
		writeError(w, http.StatusBadGateway, "upstream_error", NewKind(op, ErrUpstream))
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	if records == nil {
		records = []model.StepsRecord{}
	}
	writeJSON(w, http.StatusOK, stepsResponse{
		Records: records,
		Totals:  model.Totals(records),
		Count:   len(records),
	})
}

// parseRange builds a QueryRange from raw query parameters.
func parseRange(startStr, endStr string) (model.QueryRange, error) {
	if startStr == "" && endStr == "" {
		end := time.Now().UTC()
		return model.QueryRange{Start: end.AddDate(0, 0, -defaultRangeDays), End: end}, nil
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return model.QueryRange{}, errors.New("invalid start; must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return model.QueryRange{}, errors.New("invalid end; must be YYYY-MM-DD")
	}

	rng := model.QueryRange{Start: start, End: end}
	if err := validate.Range(rng); err != nil {
		return model.QueryRange{}, err
	}
	return rng, nil
}
