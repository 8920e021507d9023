package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,CatalogReader

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mxaddress/internal/address/catalog"
	"mxaddress/internal/address/models"
	dErrors "mxaddress/pkg/domain-errors"
	"mxaddress/pkg/platform/httputil"
	"mxaddress/pkg/requestcontext"
)

// Service defines the address operations exposed over HTTP.
type Service interface {
	Resolve(ctx context.Context, state, municipality string, allowFallback bool) (*models.ResolvedAddress, error)
	Complete(ctx context.Context, partial models.PartialAddress) (*models.CompletedAddress, error)
}

// CatalogReader exposes the postal catalog for inspection.
type CatalogReader interface {
	Lookup(state, municipality string) []models.PostalEntry
	Stats() catalog.Stats
}

// Handler handles address endpoints.
type Handler struct {
	logger         *slog.Logger
	address        Service
	catalog        CatalogReader
	resolveTimeout time.Duration
}

// New creates a new address Handler. resolveTimeout bounds each resolve and
// complete call; zero disables the bound.
func New(address Service, catalog CatalogReader, logger *slog.Logger, resolveTimeout time.Duration) *Handler {
	return &Handler{
		logger:         logger,
		address:        address,
		catalog:        catalog,
		resolveTimeout: resolveTimeout,
	}
}

// Register registers the address routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/address/resolve", h.handleResolve)
	r.Post("/address/complete", h.handleComplete)
	r.Get("/catalog/{state}/{municipality}", h.handleCatalog)
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	addr, err := h.address.Resolve(ctx, req.State, req.Municipality, req.allowFallback())
	if err != nil {
		var noData *models.NoAddressDataError
		if errors.As(err, &noData) {
			h.logger.InfoContext(ctx, "strict resolve found no address data",
				"request_id", requestID,
				"state", noData.State,
				"municipality", noData.Municipality,
			)
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, noData.Error()))
			return
		}
		h.writeServiceError(ctx, w, requestID, "failed to resolve address", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, addr)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CompleteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	out, err := h.address.Complete(ctx, req.partial())
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to complete address", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	municipality := chi.URLParam(r, "municipality")

	entries := h.catalog.Lookup(state, municipality)
	if len(entries) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no postal entries for "+municipality+", "+state))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CatalogResponse{
		State:        state,
		Municipality: municipality,
		Entries:      entries,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := h.catalog.Stats()
	resp := HealthResponse{
		Status:         "ok",
		CatalogLoaded:  stats.Loaded,
		CatalogKeys:    stats.Keys,
		CatalogEntries: stats.Entries,
	}
	status := http.StatusOK
	if !stats.Loaded {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.resolveTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.resolveTimeout)
}

// writeServiceError passes coded errors through and hides everything else
// behind an internal error.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, requestID, msg string, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, msg))
}
