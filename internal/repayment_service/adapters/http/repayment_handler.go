package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

const MaxRequestBodySize = 1 << 20 // 1 MB

// RepaymentProcessor is implemented by app.RepaymentService.
type RepaymentProcessor interface {
	Process(ctx context.Context, provider string, fields map[string]string) (domain.Payment, error)
}

// ValidationResponse is returned for every payment that received an outcome,
// accepted or rejected.
type ValidationResponse struct {
	TransactionID string             `json:"transaction_id"`
	Code          domain.OutcomeCode `json:"code"`
	Reason        string             `json:"reason"`
}

type RepaymentHandler struct {
	processor RepaymentProcessor
	logger    *slog.Logger
}

func NewRepaymentHandler(processor RepaymentProcessor, logger *slog.Logger) *RepaymentHandler {
	return &RepaymentHandler{processor: processor, logger: logger.With("handler", "repayment")}
}

// RegisterRoutes mounts the validation endpoint behind auth.
func (h *RepaymentHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.With(auth).Post("/v1/repayments/{provider}/validate", h.Validate)
}

func (h *RepaymentHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "provider", provider)

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}

	fields, err := decodeFields(raw)
	if err != nil {
		logger.WarnContext(ctx, "Undecodable repayment payload", "error", err)
		http.Error(w, "Malformed payload", http.StatusBadRequest)
		return
	}

	payment, err := h.processor.Process(ctx, provider, fields)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedPayload):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrResolverUnavailable):
			logger.ErrorContext(ctx, "Resolver unavailable", "error", err)
			http.Error(w, "Validation temporarily unavailable", http.StatusServiceUnavailable)
		default:
			logger.ErrorContext(ctx, "Unexpected validation error", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	outcome, _ := payment.Outcome()
	writeJSON(w, http.StatusOK, ValidationResponse{
		TransactionID: payment.TransactionID,
		Code:          outcome.Code,
		Reason:        outcome.Reason,
	}, logger)
}

// decodeFields flattens a JSON object of scalars into strings. Numbers keep
// their literal text so amounts are not rounded through float64.
func decodeFields(raw []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("payload is not a JSON object")
	}
	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case nil:
			fields[k] = ""
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("field %q is not a scalar", k)
		}
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}
