// Package middlewares contiene los decoradores HTTP de la API.
package middlewares

import "net/http"

// Middleware decora un http.Handler. Es compatible con chi.Router.Use.
type Middleware func(http.Handler) http.Handler

// Chain envuelve h; el primer middleware queda más afuera.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
