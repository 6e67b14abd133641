package servers

import (
	"github.com/1f349/acme-redirect/logger"
	"io/fs"
	"net/http"
	"time"
)

// NewHttpServer creates the http server for the challenge handler. The caller
// is expected to provide an already bound listener to Serve.
func NewHttpServer(challs fs.FS) *http.Server {
	return &http.Server{
		Handler:           accessLog(NewChallengeServer(challs)),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
		MaxHeaderBytes:    4096,
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

// accessLog logs every request once the response has been written
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		logger.Logger.Info("Request",
			"remote", req.RemoteAddr,
			"method", req.Method,
			"host", req.Host,
			"uri", req.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
