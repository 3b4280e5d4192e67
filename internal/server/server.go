// Package server exposes the token decoder, encoder and verifier over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/buaazp/fasthttprouter"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/cybergodev/jwtdebug"
	"github.com/cybergodev/jwtdebug/internal/config"
)

const serverName = "jwtdebug"

var ErrShutdownTimeout = errors.New("server shutdown timed out")

// Server is the jwtdebug HTTP service.
type Server struct {
	cfg     config.Config
	log     *zap.Logger
	decoder *jwtdebug.Decoder
	limiter *RateLimiter
	handler fasthttp.RequestHandler
	srv     *fasthttp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock the decode endpoint evaluates expiry against.
func WithClock(clock jwtdebug.Clock) Option {
	return func(s *Server) {
		s.decoder = jwtdebug.NewDecoder(jwtdebug.WithClock(clock))
	}
}

// New builds a Server from cfg. A nil logger discards output.
func New(cfg config.Config, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		log:     log,
		decoder: jwtdebug.NewDecoder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	}

	router := fasthttprouter.New()
	router.HandleMethodNotAllowed = true
	router.NotFound = s.notFound
	router.MethodNotAllowed = s.methodNotAllowed
	router.PanicHandler = s.recoverPanic

	router.POST("/v1/decode", s.withTimeout(s.handleDecode))
	router.POST("/v1/encode", s.withTimeout(s.handleEncode))
	router.POST("/v1/verify", s.withTimeout(s.handleVerify))
	router.GET("/health", s.handleHealth)

	s.handler = s.withRequestID(s.withAccessLog(s.withRateLimit(router.Handler)))

	s.srv = &fasthttp.Server{
		Handler:            s.handler,
		ErrorHandler:       s.transportError,
		Name:               serverName,
		MaxRequestBodySize: cfg.MaxBodyBytes,
		ReadTimeout:        cfg.RequestTimeout,
		WriteTimeout:       cfg.RequestTimeout,
		IdleTimeout:        time.Minute,
		Logger:             zap.NewStdLog(log.Named("fasthttp")),
	}
	return s
}

// Handler returns the full middleware chain and router.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.handler
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	s.log.Info("http service started", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		s.close()
		if err != nil {
			return fmt.Errorf("http service failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http service", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	err := s.shutdown()
	s.close()
	if err != nil {
		return err
	}
	return <-errCh
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) shutdown() error {
	done := make(chan error, 1)
	go func() {
		done <- s.srv.Shutdown()
	}()

	timer := time.NewTimer(s.cfg.ShutdownTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to shut down http service: %w", err)
		}
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

func (s *Server) close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}
