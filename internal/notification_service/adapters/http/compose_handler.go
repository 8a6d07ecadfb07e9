package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/notification_service/adapters/infobip"
	"github.com/mmoney/golang_services/internal/notification_service/domain"
)

const (
	MaxRequestBodySize = 1 << 20 // 1 MB
	formatInfobip      = "infobip"
)

// MessageComposer is implemented by app.Composer.
type MessageComposer interface {
	Compose(ctx context.Context, client core_domain.Client, templateID int64, params map[string]string) (domain.Message, error)
	ComposeMany(ctx context.Context, reqs []domain.ComposeRequest) ([]domain.Message, error)
}

var errNoProviderAccount = errors.New("no infobip account configured for country")

type ComposeHandler struct {
	composer MessageComposer
	clients  domain.ClientDirectory
	store    domain.LocalizationStore
	validate *validator.Validate
	logger   *slog.Logger
}

func NewComposeHandler(
	composer MessageComposer,
	clients domain.ClientDirectory,
	store domain.LocalizationStore,
	validate *validator.Validate,
	logger *slog.Logger,
) *ComposeHandler {
	return &ComposeHandler{
		composer: composer,
		clients:  clients,
		store:    store,
		validate: validate,
		logger:   logger.With("handler", "compose"),
	}
}

// RegisterRoutes mounts the compose endpoints behind auth.
func (h *ComposeHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/v1/messages/compose", h.Compose)
		r.Post("/v1/messages/compose/batch", h.ComposeBatch)
	})
}

func (h *ComposeHandler) Compose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req ComposeRequestDTO
	if !h.decode(w, r, logger, &req) {
		return
	}

	client, err := h.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}
	msg, err := h.composer.Compose(ctx, *client, req.TemplateID, req.Parameters)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	if r.URL.Query().Get("format") == formatInfobip {
		if err := h.checkProviderAccount(ctx, *client); err != nil {
			h.writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, infobip.FromMessage(msg), logger)
		return
	}
	writeJSON(w, http.StatusOK, msg, logger)
}

func (h *ComposeHandler) ComposeBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req ComposeBatchRequestDTO
	if !h.decode(w, r, logger, &req) {
		return
	}

	items := make([]domain.ComposeRequest, 0, len(req.Items))
	for i, it := range req.Items {
		client, err := h.clients.GetClient(ctx, it.ClientID)
		if err != nil {
			h.writeError(w, logger, fmt.Errorf("batch item %d: %w", i, err))
			return
		}
		items = append(items, domain.ComposeRequest{Client: *client, TemplateID: it.TemplateID, Parameters: it.Parameters})
	}

	msgs, err := h.composer.ComposeMany(ctx, items)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	if r.URL.Query().Get("format") == formatInfobip {
		for i, it := range items {
			if err := h.checkProviderAccount(ctx, it.Client); err != nil {
				h.writeError(w, logger, fmt.Errorf("batch item %d: %w", i, err))
				return
			}
		}
		writeJSON(w, http.StatusOK, infobip.FromMessages(msgs), logger)
		return
	}
	writeJSON(w, http.StatusOK, ComposeBatchResponse{Messages: msgs}, logger)
}

// checkProviderAccount makes sure the client's country can send through Infobip.
func (h *ComposeHandler) checkProviderAccount(ctx context.Context, client core_domain.Client) error {
	anc, err := h.store.Ancestry(ctx, client.DistrictID)
	if err != nil {
		return err
	}
	if anc == nil {
		return fmt.Errorf("%w: district %d unknown", errNoProviderAccount, client.DistrictID)
	}
	key, err := infobip.APIKeyForCountry(ctx, h.store, anc.CountryID)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: %d", errNoProviderAccount, anc.CountryID)
	}
	return nil
}

func (h *ComposeHandler) decode(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "Failed to decode compose request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"}, logger)
		return false
	}
	if err := h.validate.StructCtx(r.Context(), dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed: " + err.Error()}, logger)
		return false
	}
	return true
}

func (h *ComposeHandler) writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMissingTemplate),
		errors.Is(err, domain.ErrNoRecipient),
		errors.Is(err, domain.ErrNoSender),
		errors.Is(err, errNoProviderAccount):
		status = http.StatusUnprocessableEntity
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Compose failed", "error", err)
		msg = "Internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg}, logger)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}
