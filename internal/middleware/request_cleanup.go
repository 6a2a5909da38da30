package middleware

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// unread body bytes discarded before the connection is given up on
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest discards what the handler left unread, up to
// maxDrainBytes, and closes the body so keep-alive connections get reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			if n, _ := io.CopyN(io.Discard, r.Body, maxDrainBytes); n == maxDrainBytes {
				log.Tracef("request body for [%s] over drain limit", r.URL.Path)
			}
			_ = r.Body.Close()
		})
	}
}
