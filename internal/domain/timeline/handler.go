package timeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pr-insights/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/repos/{owner}/{repo}/pulls/{number}/timeline", timelineHandler(svc))
}

// timelineHandler godoc
// @Summary Timeline agregado de un pull request
// @Description Devuelve el historial deduplicado y agrupado por ventanas de tiempo de un PR, más los contadores de resumen. Se computa fresco en cada request a partir del log de entregas; no se persiste.
// @Tags timeline
// @Produce json
// @Param owner path string true "Dueño del repositorio"
// @Param repo path string true "Nombre del repositorio"
// @Param number path int true "Número de pull request"
// @Success 200 {object} Result
// @Failure 400 {string} string "número o repositorio inválido"
// @Failure 404 {string} string "pull request not found"
// @Failure 502 {string} string "fallo de lectura del event store"
// @Router /repos/{owner}/{repo}/pulls/{number}/timeline [get]
func timelineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil || number <= 0 {
			http.Error(w, "number must be a positive integer", http.StatusBadRequest)
			return
		}
		repository := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")

		start := time.Now()
		res, err := svc.Aggregate(r.Context(), repository, number)
		metrics.ObserveAggregation(time.Since(start), err)

		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "invalid repository or number", http.StatusBadRequest)
			return
		case errors.Is(err, ErrNotFound):
			http.Error(w, "pull request not found", http.StatusNotFound)
			return
		case err != nil:
			// fallo transitorio del store: se propaga sin reintentos
			http.Error(w, "event store unavailable", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo para
// no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
