package controllers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"student-scores/models"
	"student-scores/utils"
)

// Controller holds the handlers that are not tied to one resource.
type Controller struct {
	// Secret signs service tokens. When empty, mutating routes are open.
	Secret string
}

func (c Controller) TokenVerifyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c.Secret == "" {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := utils.VerifyToken(r.Header.Get("Authorization"), c.Secret); err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: err.Error(), Kind: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (c Controller) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).Truncate(time.Microsecond).String(),
		}).Info("request")
	})
}
