package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"memscope/internal/memory"
	platformmetrics "memscope/internal/platform/metrics"
	"memscope/internal/platform/middleware"
	"memscope/pkg/domain"
	"memscope/pkg/platform/httputil"
	"memscope/pkg/platform/middleware/metadata"
	"memscope/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

// Service is the engine surface the transport depends on.
type Service interface {
	Write(ctx context.Context, in memory.WriteInput) (domain.MemoryID, error)
	Read(ctx context.Context, in memory.ReadInput) (*memory.ReadResult, error)
	ContinueRead(ctx context.Context, token string, maxAgeDays int) (*memory.ContinueResult, error)
	Revoke(ctx context.Context, token string) error
}

// Handler is the thin HTTP layer over the engine. It decodes, delegates,
// and encodes; every rule lives in the service and below.
type Handler struct {
	logger  *slog.Logger
	engine  Service
	metrics *platformmetrics.Metrics
}

// New creates the transport handler.
func New(engine Service, logger *slog.Logger, metrics *platformmetrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		engine:  engine,
		metrics: metrics,
	}
}

// Register mounts the engine routes with the standard middleware chain.
func (h *Handler) Register(r chi.Router) {
	engineRouter := chi.NewRouter()
	engineRouter.Use(middleware.Recovery(h.logger))
	engineRouter.Use(middleware.RequestID)
	engineRouter.Use(metadata.ClientMetadata)
	engineRouter.Use(middleware.Logger(h.logger))
	engineRouter.Use(middleware.Timeout(30 * time.Second))
	engineRouter.Use(middleware.ContentTypeJSON)
	engineRouter.Use(middleware.LatencyMiddleware(h.metrics))
	engineRouter.Use(requesttime.Middleware)
	engineRouter.Post("/memory", h.handleWrite)
	engineRouter.Post("/memory/read", h.handleRead)
	engineRouter.Post("/memory/read/continue", h.handleContinue)
	engineRouter.Post("/memory/revoke", h.handleRevoke)

	r.Mount("/", engineRouter)
}

func (h *Handler) handleWrite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req WriteMemoryRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		h.warn(ctx, "invalid write request", err)
		httputil.WriteError(w, err)
		return
	}

	id, err := h.engine.Write(ctx, memory.WriteInput{
		UserID:  domain.UserID(req.UserID),
		Scope:   domain.Scope(req.Scope),
		Domain:  req.Domain,
		Source:  domain.Source(req.Source),
		Shape:   domain.ValueShape(req.Shape),
		TTLDays: req.TTLDays,
		Value:   req.Value,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, WriteMemoryResponse{MemoryID: id.String()})
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReadMemoryRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		h.warn(ctx, "invalid read request", err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.engine.Read(ctx, memory.ReadInput{
		UserID:     domain.UserID(req.UserID),
		Scope:      domain.Scope(req.Scope),
		Domain:     req.Domain,
		Purpose:    req.Purpose,
		MaxAgeDays: req.MaxAgeDays,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, readResponse(res))
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ContinueReadRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		h.warn(ctx, "invalid continue request", err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.engine.ContinueRead(ctx, req.Token, req.MaxAgeDays)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, continueResponse(res))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RevokeGrantRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		h.warn(ctx, "invalid revoke request", err)
		httputil.WriteError(w, err)
		return
	}

	if err := h.engine.Revoke(ctx, req.Token); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RevokeGrantResponse{Revoked: true})
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
