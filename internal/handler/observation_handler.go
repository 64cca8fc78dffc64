package handler

import (
	"log/slog"
	"net/http"

	"forecast-vintage-api/internal/model"
	"forecast-vintage-api/internal/service"
)

type ObservationHandler struct {
	vintages *service.VintageService
}

func NewObservationHandler(vintages *service.VintageService) *ObservationHandler {
	return &ObservationHandler{vintages: vintages}
}

// AllVintages serves every revision of a series within an optional vintage
// range. Parameters come from the query string.
func (h *ObservationHandler) AllVintages(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	query := r.URL.Query()

	q, err := service.ParseVintageRangeQuery(query.Get("varname"), query.Get("freq"), query.Get("min_vdate"), query.Get("max_vdate"))
	if err != nil {
		writeError(w, err)
		return
	}

	points, err := h.vintages.AllVintages(r.Context(), q)
	writeObservations(w, identity, q.SeriesQuery, points, err)
}

// LastVintage serves each series as of its most recent vintage.
func (h *ObservationHandler) LastVintage(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	query := r.URL.Query()

	q, err := service.ParseSeriesQuery(query.Get("varname"), query.Get("freq"))
	if err != nil {
		writeError(w, err)
		return
	}

	points, err := h.vintages.LastVintage(r.Context(), q)
	writeObservations(w, identity, q, points, err)
}

func writeObservations(w http.ResponseWriter, identity model.Identity, q model.SeriesQuery, points []model.ObservationPoint, err error) {
	response := model.ObservationResponse{
		User:    &identity,
		Freq:    q.Frequency,
		Varname: q.Varname,
	}

	if err != nil {
		slog.Error("observation query failed", "varname", q.Varname, "freq", q.Frequency, "error", err)
		response.Success = model.StatusFailure
		response.ErrorMessage = msgUnknownError
		writeJSON(w, http.StatusOK, response)
		return
	}

	count := len(points)
	response.Success = model.StatusSuccess
	response.Count = &count
	response.Result = points
	writeJSON(w, http.StatusOK, response)
}
