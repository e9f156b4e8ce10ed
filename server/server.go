// Package server runs the HTTP listener with optional TLS and graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

const (
	DefaultPort    = "8080"
	DefaultTLSMode = TLSModeAuto

	TLSModeAuto   = "auto"
	TLSModeManual = "manual"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type ServerTLSAutoCert struct {
	CacheDir string
	Domains  []string
	Email    string
}

type ServerTLS struct {
	Enabled  bool
	Mode     string
	AutoCert *ServerTLSAutoCert
	CertFile string
	KeyFile  string
}

type Server struct {
	Port string
	Host string
	TLS  ServerTLS
}

// Run serves handler until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(srv.Host, srv.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.listenAndServe(ctx, httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}

		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}

func (srv *Server) listenAndServe(ctx context.Context, httpServer *http.Server) error {
	if !srv.TLS.Enabled {
		slog.InfoContext(ctx, "serving http", "address", "http://"+httpServer.Addr)

		return httpServer.ListenAndServe()
	}

	switch srv.TLS.Mode {
	case TLSModeAuto:
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(srv.TLS.AutoCert.CacheDir),
			HostPolicy: autocert.HostWhitelist(srv.TLS.AutoCert.Domains...),
			Email:      srv.TLS.AutoCert.Email,
		}

		httpServer.TLSConfig = manager.TLSConfig()

		slog.InfoContext(ctx, "serving https", "address", domainsToHTTPSAddress(srv.TLS.AutoCert.Domains))

		return httpServer.ListenAndServeTLS("", "")
	case TLSModeManual:
		slog.InfoContext(ctx, "serving https", "address", "https://"+httpServer.Addr)

		return httpServer.ListenAndServeTLS(srv.TLS.CertFile, srv.TLS.KeyFile)
	default:
		return fmt.Errorf("unknown tls mode %q", srv.TLS.Mode)
	}
}

func domainsToHTTPSAddress(domains []string) string {
	addresses := make([]string, 0, len(domains))
	for _, domain := range domains {
		addresses = append(addresses, "https://"+domain)
	}

	return strings.Join(addresses, ", ")
}
