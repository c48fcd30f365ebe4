package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
)

// MaxBodySize limita el body de los requests JSON.
const MaxBodySize = 64 * 1024

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodifica un único objeto JSON en v. Rechaza campos desconocidos
// y datos extra después del objeto.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return httperrors.ErrInvalidJSON.WithDetail("Content-Type must be application/json")
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return httperrors.ErrBadRequest.WithDetail("body too large")
		}
		return httperrors.ErrInvalidJSON.WithDetail(err.Error())
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return httperrors.ErrInvalidJSON.WithDetail("unexpected data after object")
	}
	return nil
}
