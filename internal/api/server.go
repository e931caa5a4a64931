package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"premiumflow/config"
	"premiumflow/internal/premium"
	"premiumflow/logger"
)

// Server hosts the premium lookup API.
type Server struct {
	cfg        config.ServerConfig
	log        *logger.Log
	resolver   *premium.Resolver
	fetcher    premium.ChainFetcher
	symbol     string
	httpServer *http.Server
}

// NewServer wires the resolver and chain fetcher into an HTTP server. The
// fetcher is held separately so the expiries route can serve labels without
// going through premium matching.
func NewServer(cfg *config.Config, resolver *premium.Resolver, fetcher premium.ChainFetcher) *Server {
	return &Server{
		cfg:      cfg.Server,
		log:      logger.GetLogger(),
		resolver: resolver,
		fetcher:  fetcher,
		symbol:   cfg.Source.NSE.Symbol,
	}
}

// Run starts the HTTP server and blocks until the provided context is
// cancelled or the underlying server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	router, err := s.buildRouter()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:         normalizeAddress(s.cfg.Address),
		Handler:      router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutMs) * time.Millisecond,
	}

	log := s.log.WithComponent("api_server")
	log.WithFields(logger.Fields{"address": s.httpServer.Addr, "symbol": s.symbol}).Info("starting api server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownTimeout := time.Duration(s.cfg.ShutdownTimeoutMs) * time.Millisecond
		if shutdownTimeout <= 0 {
			shutdownTimeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		log.Info("api server stopped")
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

// Address reports the network address the server listens on.
func (s *Server) Address() string {
	if s == nil {
		return ""
	}
	return s.cfg.Address
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), s.accessLogMiddleware())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	router.POST("/premium", s.handlePremium)
	router.GET("/expiries", s.handleExpiries)
	router.GET("/healthz", s.handleHealthz)

	return router, nil
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)

	if addr == "" {
		return "0.0.0.0:3000"
	}

	if strings.HasPrefix(addr, ":") {
		if len(addr) > 1 && addr[1] >= '0' && addr[1] <= '9' {
			return "0.0.0.0" + addr
		}
	}

	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "3000"
		}
		return net.JoinHostPort(host, port)
	}

	if !strings.Contains(addr, ":") {
		return net.JoinHostPort(addr, "3000")
	}

	return addr
}
