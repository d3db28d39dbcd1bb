package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
)

// Middleware decorates a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// HeaderSubject carries the authenticated token subject to handlers.
const HeaderSubject = "X-Auth-Subject"

// JWTAuth accepts HMAC-signed bearer tokens. When issuer is non-empty the
// token's iss claim must match it.
func JWTAuth(secret, issuer string, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(secret)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.Error(err),
				)
				unauthorized(ctx, "invalid token")
				return
			}
			if issuer != "" && !claims.VerifyIssuer(issuer, true) {
				logger.Warn("jwt issuer mismatch", zap.String("request_id", httpcontext.RequestID(ctx)))
				unauthorized(ctx, "invalid token")
				return
			}

			ctx.Request.Header.Del(HeaderSubject)
			if sub, ok := claims["sub"].(string); ok && sub != "" {
				ctx.Request.Header.Set(HeaderSubject, sub)
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="tasks"`)
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBody(body)
}
