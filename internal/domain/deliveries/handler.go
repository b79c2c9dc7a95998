package deliveries

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pr-insights/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const defaultMaxBody = 1 << 20 // 1 MiB

func RegisterRoutes(r chi.Router, svc *Service, maxBodyBytes int64) {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBody
	}
	r.Post("/webhooks/github", ingestHandler(svc, maxBodyBytes))
	r.Get("/repos/{owner}/{repo}/deliveries", listDeliveriesHandler(svc))
}

type ingestResponse struct {
	DeliveryID string `json:"delivery_id"`
	Duplicate  bool   `json:"duplicate"`
}

// ingestHandler godoc
// @Summary Ingestar una entrega de webhook
// @Description Registra una entrega de webhook de GitHub en el log append-only. Idempotente por X-GitHub-Delivery: reenviar la misma entrega devuelve 200 con duplicate=true en vez de duplicar la fila. La verificación de firma corre en el proxy de entrada, no acá.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-GitHub-Event header string true "Tipo de evento (pull_request, pull_request_review, issue_comment, check_run, status, ...)"
// @Param X-GitHub-Delivery header string false "ID único de la entrega; se genera uno si falta"
// @Success 200 {object} ingestResponse "entrega ya conocida"
// @Success 202 {object} ingestResponse "entrega registrada"
// @Failure 400 {string} string "payload o headers inválidos"
// @Failure 500 {string} string "internal error"
// @Router /webhooks/github [post]
func ingestHandler(svc *Service, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventType := strings.TrimSpace(r.Header.Get("X-GitHub-Event"))

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			metrics.CountDelivery(eventType, "rejected")
			http.Error(w, "payload too large or unreadable", http.StatusBadRequest)
			return
		}

		d, duplicate, err := svc.Ingest(r.Context(), IngestInput{
			DeliveryID: r.Header.Get("X-GitHub-Delivery"),
			EventType:  eventType,
			Payload:    body,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				metrics.CountDelivery(eventType, "rejected")
				http.Error(w, "invalid event type or payload", http.StatusBadRequest)
				return
			}
			metrics.CountDelivery(eventType, "error")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		status := http.StatusAccepted
		result := "stored"
		if duplicate {
			status = http.StatusOK
			result = "duplicate"
		}
		metrics.CountDelivery(eventType, result)

		writeJSON(w, status, ingestResponse{DeliveryID: d.DeliveryID, Duplicate: duplicate})
	}
}

// deliveryResponse es la vista liviana de una entrega (sin payload).
type deliveryResponse struct {
	DeliveryID string    `json:"delivery_id"`
	EventType  string    `json:"event_type"`
	Action     string    `json:"action,omitempty"`
	Repository string    `json:"repository"`
	PRNumber   int       `json:"pr_number,omitempty"`
	HeadSHA    string    `json:"head_sha,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	ReceivedAt time.Time `json:"received_at"`
}

// listDeliveriesHandler godoc
// @Summary Listar entregas crudas de un repositorio
// @Description Lista las entregas de webhook registradas para un repositorio, de más reciente a más antigua. Permite filtrar por tipos de evento, rango de fechas y límite.
// @Tags webhooks
// @Produce json
// @Param owner path string true "Dueño del repositorio"
// @Param repo path string true "Nombre del repositorio"
// @Param limit query int false "Máximo de entregas a devolver (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos de evento (ej: pull_request,check_run)"
// @Param from query string false "Fecha/hora mínima occurred_at (RFC3339)"
// @Param to query string false "Fecha/hora máxima occurred_at (RFC3339)"
// @Success 200 {array} deliveryResponse
// @Failure 400 {string} string "parámetros de filtro inválidos"
// @Failure 500 {string} string "internal error"
// @Router /repos/{owner}/{repo}/deliveries [get]
func listDeliveriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repository := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByRepo(r.Context(), repository, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]deliveryResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDeliveryResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=pull_request,check_run
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

func toDeliveryResponse(d Delivery) deliveryResponse {
	return deliveryResponse{
		DeliveryID: d.DeliveryID,
		EventType:  d.EventType,
		Action:     d.Action,
		Repository: d.Repository,
		PRNumber:   d.PRNumber,
		HeadSHA:    d.HeadSHA,
		OccurredAt: d.OccurredAt,
		ReceivedAt: d.ReceivedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo para
// no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
