package httpx

import (
	"net/http"
	"strings"

	"github.com/target/marketplace-gateway/internal/service"
)

// GatewayMiddleware runs every request through the access gateway before next sees it.
// Client-supplied gateway headers are always stripped so upstream can trust them.
func GatewayMiddleware(gw *service.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stripGatewayHeaders(r.Header)

			ex := &httpExchange{w: w, r: r}
			gw.Handle(r.Context(), ex)
			if !ex.proceed {
				return
			}
			for k, v := range ex.headers {
				r.Header.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func stripGatewayHeaders(h http.Header) {
	for k := range h {
		if strings.HasPrefix(http.CanonicalHeaderKey(k), service.HeaderPrefix) {
			h.Del(k)
		}
	}
}

// httpExchange adapts one net/http request to service.Exchange. Continue only records the
// outcome; the middleware calls the next handler once the gateway has returned.
type httpExchange struct {
	w        http.ResponseWriter
	r        *http.Request
	answered bool
	proceed  bool
	headers  map[string]string
}

var _ service.Exchange = (*httpExchange)(nil)

func (e *httpExchange) Path() string            { return e.r.URL.Path }
func (e *httpExchange) RawQuery() string        { return e.r.URL.RawQuery }
func (e *httpExchange) Cookies() []*http.Cookie { return e.r.Cookies() }

func (e *httpExchange) Redirect(location string) {
	if e.answered {
		return
	}
	e.answered = true
	e.w.Header().Set("Cache-Control", "no-store")
	http.Redirect(e.w, e.r, location, http.StatusFound)
}

func (e *httpExchange) Continue(headers map[string]string) {
	if e.answered {
		return
	}
	e.answered = true
	e.proceed = true
	e.headers = headers
}
