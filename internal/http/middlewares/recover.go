package middlewares

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// WithRecover convierte un panic del handler en un 500.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						logger.RequestID(GetRequestID(r.Context())),
						zap.String("panic", fmt.Sprint(rec)),
						zap.Stack("stack"),
					)
					httperrors.WriteError(w, httperrors.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
