package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.Error(err),
		)
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
	ctx.ResetBody()
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	var meta interface{}
	var vErr *transport.ValidationError
	if errors.As(err, &vErr) {
		meta = map[string]interface{}{"violations": vErr.Violations}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
		h.respondJSON(ctx, status, transport.NewError(code, "internal server error", nil))
		return
	}

	envelope := transport.NewError(code, err.Error(), meta)
	h.logger.Debug("request rejected",
		zap.String("request_id", httpcontext.RequestID(ctx)),
		zap.Int("status", status),
		zap.Stringer("response", envelope),
	)
	h.respondJSON(ctx, status, envelope)
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	value, _ := ctx.UserValue(name).(string)
	return value
}

func parseTaskID(ctx *fasthttp.RequestCtx) (int64, error) {
	id, err := strconv.ParseInt(pathParam(ctx, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidTaskID
	}
	return id, nil
}
