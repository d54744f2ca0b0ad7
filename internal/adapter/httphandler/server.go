package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const defaultHandlerTimeout = 5 * time.Second

type ServerOpt func(*HTTPServer)

// HandlerTimeoutOpt bounds a single request handling.
func HandlerTimeoutOpt(d time.Duration) ServerOpt {
	return func(s *HTTPServer) {
		if d > 0 {
			s.handlerTimeout = d
		}
	}
}

type HTTPServer struct {
	httpServer     *http.Server
	handlerTimeout time.Duration
}

// NewHTTPServer serves mux behind request logging, method and media type
// filtering and a per request timeout.
func NewHTTPServer(addr string, mux http.Handler, opts ...ServerOpt) HTTPServer {
	s := HTTPServer{handlerTimeout: defaultHandlerTimeout}
	for _, opt := range opts {
		opt(&s)
	}

	var handler http.Handler = mux
	handler = AllowJSON(handler)
	handler = AllowMethods(http.MethodGet, http.MethodHead, http.MethodPost)(handler)
	handler = http.TimeoutHandler(handler, s.handlerTimeout,
		`{"status":"error","message":"Service unavailable"}`)
	handler = LogRequests(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return s
}

func (s HTTPServer) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op, "addr", s.httpServer.Addr)

	defer wg.Done()

	go func() {
		defer stopFn()
		log.Info("listening")
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("unexpected servers shutdown", "err", err)
		}
	}()
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
