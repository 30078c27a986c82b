package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"fleet-backend/pkg/utils"
)

// PanicRecovery turns a panicking handler into a 500 with the standard error
// body. http.ErrAbortHandler is re-raised so net/http can drop the connection.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("[Panic] %s %s %s: %v\n%s",
				RequestIDFromContext(r.Context()), r.Method, r.URL.Path, rec, debug.Stack())
			utils.Error(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
