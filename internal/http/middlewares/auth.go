package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
	"github.com/dropDatabas3/splice/internal/jwt"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// TokenVerifier valida un bearer token y devuelve su subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda el subject en el
// contexto. Sin token o con token inválido responde 401.
func RequireAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			sub, err := verifier.Verify(raw)
			if err != nil {
				appErr := httperrors.ErrTokenInvalid
				desc := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					appErr = httperrors.ErrTokenExpired
					desc = "token expired"
				}
				logger.From(r.Context()).Debug("bearer rejected", logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="`+desc+`"`)
				httperrors.WriteError(w, appErr)
				return
			}

			ctx := WithUserID(r.Context(), sub)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(sub)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
