package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// statusRecorder guarda el status y los bytes de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status != 0 {
		return
	}
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// WithLogging deja en el contexto un logger con request_id, method y path, y
// al terminar registra una línea por request. El nivel sale del status:
// 5xx error, 4xx warn, resto info.
//
//	{"level":"info","msg":"request","request_id":"…","method":"POST","path":"/v1/login","route":"/v1/login","status":200,"bytes":256,"duration":0.045}
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.L().With(
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(logger.ToContext(r.Context(), reqLog)))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			lvl := zapcore.InfoLevel
			switch {
			case rec.status >= 500:
				lvl = zapcore.ErrorLevel
			case rec.status >= 400:
				lvl = zapcore.WarnLevel
			}
			fields := []zap.Field{
				logger.Status(rec.status),
				logger.Bytes(rec.bytes),
				logger.Duration(time.Since(start)),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				fields = append(fields, zap.String("route", rc.RoutePattern()))
			}
			if lvl >= zapcore.WarnLevel {
				fields = append(fields, logger.ClientIP(clientIP(r)))
			}
			reqLog.Log(lvl, "request", fields...)
		})
	}
}
