package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rzbill/ringlog/internal/runtime"
	"github.com/rzbill/ringlog/pkg/log"
)

// Server exposes the engine and device operations over HTTP. It is the
// command dispatcher: every route maps onto one engine or device call, and
// the bulk dump brackets itself with the pause gate.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger log.Logger
}

// New builds a Server over the runtime.
func New(rt *runtime.Runtime, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.ErrorLevel))
	}
	mux := http.NewServeMux()
	s := &Server{rt: rt, logger: logger, srv: &http.Server{Handler: cors(mux)}}

	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)

	mux.HandleFunc("/v1/log/append", s.handleAppend)
	mux.HandleFunc("/v1/log/position", s.handlePosition)
	mux.HandleFunc("/v1/log/reset", s.handleReset)
	mux.HandleFunc("/v1/log/pause", s.handlePause)
	mux.HandleFunc("/v1/log/resume", s.handleResume)
	mux.HandleFunc("/v1/log/paused", s.handlePaused)
	mux.HandleFunc("/v1/log/recover", s.handleRecover)

	mux.HandleFunc("/v1/device/info", s.handleDeviceInfo)
	mux.HandleFunc("/v1/device/read", s.handleDeviceRead)
	mux.HandleFunc("/v1/device/dump", s.handleDeviceDump)
	mux.HandleFunc("/v1/device/erase", s.handleErase)
	mux.HandleFunc("/v1/device/erase-range", s.handleEraseRange)
	mux.HandleFunc("/v1/device/erase-all", s.handleEraseAll)
	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close closes the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.rt.Collector().Collect())
}
