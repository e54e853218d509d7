package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"revenue-forecast/internal/errors"
	"revenue-forecast/internal/models"
	"revenue-forecast/internal/observability"
	"revenue-forecast/internal/services"
)

const defaultHistoryMonths = 12

type APIHandlers struct {
	engine         *services.Engine
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewAPIHandlers(engine *services.Engine, logger *slog.Logger, maxUploadBytes int64) *APIHandlers {
	return &APIHandlers{
		engine:         engine,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleUpload ingests a CSV dataset, either as a multipart "file" field or
// as a raw request body.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			errors.WriteError(w, h.logger, errors.BadRequestWrap(err, `upload requires a "file" form field`), requestID)
			return
		}
		defer file.Close()
		src = file
	}

	count, err := h.engine.LoadCSV(r.Context(), src)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccess(w, models.UploadResult{Rows: count})
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, models.ProductList{Products: h.engine.Products()})
}

func (h *APIHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	months := defaultHistoryMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			errors.WriteError(w, h.logger, errors.Validation("months must be an integer"), requestID)
			return
		}
		months = parsed
	}

	points, err := h.engine.History(months)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccess(w, models.HistoryResult{Points: points})
}

func (h *APIHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var req models.ForecastRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid forecast request body"), requestID)
		return
	}

	result, err := h.engine.Forecast(req)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccess(w, result)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.engine.Stats())
}
