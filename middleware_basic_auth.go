package main

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// basicAuthMiddleware protects admin endpoints only. Everything else is
// passed as is.
type basicAuthMiddleware struct {
	handler       http.Handler
	protectedURLs []string
	user          []byte
	password      []byte
}

func (b *basicAuthMiddleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !b.isProtected(req.URL.Path) {
		b.handler.ServeHTTP(w, req)

		return
	}

	user, pass, _ := req.BasicAuth()

	if subtle.ConstantTimeCompare(b.user, []byte(user))+subtle.ConstantTimeCompare(b.password, []byte(pass)) == 2 {
		b.handler.ServeHTTP(w, req)

		return
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="geointel"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"Authentication is required"}` + "\n")) // nolint: errcheck
}

func (b *basicAuthMiddleware) isProtected(path string) bool {
	path = strings.TrimRight(path, "/")

	for _, v := range b.protectedURLs {
		if path == v {
			return true
		}
	}

	return false
}

func newBasicAuthMiddleware(handler http.Handler, conf configAdmin, protectedURLs ...string) http.Handler {
	if !conf.Enabled() {
		return handler
	}

	return &basicAuthMiddleware{
		handler:       handler,
		protectedURLs: protectedURLs,
		user:          []byte(conf.User),
		password:      []byte(conf.Password),
	}
}
