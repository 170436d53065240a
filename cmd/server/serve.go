package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

// newHTTPServer builds the API server. Request contexts derive from ctx, so
// cancelling it on a signal stops confirmation pollers and other long
// handlers instead of leaving them running past shutdown.
func newHTTPServer(ctx context.Context, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// serve runs srv on ln until ctx is cancelled, then drains connections for at
// most drain. A drain that overruns is logged and the remaining connections
// are closed; it is not an error.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, drain time.Duration, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		log.Warn().Dur("drain", drain).Msg("connections still open after drain, closing them")
		if err := srv.Close(); err != nil {
			return err
		}
	}
	return <-errCh
}
