package middleware

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
)

// CORS answers preflight requests and stamps the allow headers on every
// response whose Origin is in allowedOrigins. "*" allows any origin.
func CORS(allowedOrigins []string) Middleware {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))
			if origin != "" {
				if allowAll {
					ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
				} else if _, ok := allowed[origin]; ok {
					ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
					ctx.Response.Header.Add("Vary", "Origin")
				}
				ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
				ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				ctx.Response.Header.Set("Access-Control-Expose-Headers", "X-Request-ID")
			}

			if ctx.IsOptions() && len(ctx.Request.Header.Peek("Access-Control-Request-Method")) > 0 {
				ctx.SetStatusCode(http.StatusNoContent)
				return
			}

			next(ctx)
		}
	}
}
