package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"idflow/internal/platform/config"
)

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down within grace.
// TLS is used when tls is enabled.
func Serve(ctx context.Context, srv *http.Server, tls config.TLSConfig, grace time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if tls.Enabled() {
			logger.Info("starting https server", "addr", srv.Addr)
			err = srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			logger.Info("starting http server", "addr", srv.Addr)
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
