package middleware

import (
	"fmt"
	"net/http"

	"github.com/api-sage/ledger-service/src/internal/logger"
)

// Recover converts a handler panic into a 500 response instead of tearing
// down the connection. The panicking transfer's unit of work is rolled back
// by its own deferred cleanup before the panic reaches this point.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("recovery middleware handler panicked", fmt.Errorf("%v", recovered), logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
