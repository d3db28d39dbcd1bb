package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskmanager/pkg/logger"
)

func TestRequestID_ReusesInboundHeader(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(HeaderRequestID, "abc-123")

	assert.Equal(t, "abc-123", RequestID(ctx))
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(HeaderRequestID)))
}

func TestRequestID_GeneratedOnceAndMemoized(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}

	first := RequestID(ctx)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(ctx))
}

func TestAdapter_AttachCarriesDeadlineAndRequestID(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(HeaderRequestID, "req-9")
	ctx.Request.Header.SetUserAgent("tests")

	stdCtx, cancel := NewAdapter(time.Second).Attach(ctx)
	defer cancel()

	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	assert.Equal(t, "req-9", appLogger.RequestID(stdCtx))
	assert.Equal(t, "tests", stdCtx.Value(KeyUserAgent))
}
