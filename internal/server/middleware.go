package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id on every response.
const HeaderRequestID = "X-Request-ID"

const (
	requestIDKey    = "request_id"
	outcomeKey      = "request_outcome"
	maxRequestIDLen = 128
)

// requestOutcome carries a status decided outside the handler goroutine.
// After a timeout the abandoned handler may still write ctx.Response, so
// the access log reads the status from here instead.
type requestOutcome struct {
	status int
}

func outcomeOf(ctx *fasthttp.RequestCtx) *requestOutcome {
	o, _ := ctx.UserValue(outcomeKey).(*requestOutcome)
	return o
}

func requestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}

// withRequestID reuses a well-formed incoming request id or assigns a new UUID.
func (s *Server) withRequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := string(ctx.Request.Header.Peek(HeaderRequestID))
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		ctx.SetUserValue(requestIDKey, id)
		ctx.Response.Header.Set(HeaderRequestID, id)
		next(ctx)
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}

// withAccessLog writes one entry per request. Bodies are never logged.
func (s *Server) withAccessLog(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		method := string(ctx.Method())
		path := string(ctx.Path())
		outcome := &requestOutcome{}
		ctx.SetUserValue(outcomeKey, outcome)
		next(ctx)

		status := outcome.status
		if status == 0 {
			status = ctx.Response.StatusCode()
		}
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String(requestIDKey, requestID(ctx)),
			zap.String("client_ip", ctx.RemoteIP().String()),
		}
		switch {
		case status >= fasthttp.StatusInternalServerError:
			s.log.Error("request failed", fields...)
		case status >= fasthttp.StatusBadRequest:
			s.log.Warn("request rejected", fields...)
		default:
			s.log.Info("request handled", fields...)
		}
	}
}

func (s *Server) withRateLimit(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if s.limiter == nil {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		ok, wait := s.limiter.Allow(ctx.RemoteIP().String())
		if !ok {
			seconds := int((wait + time.Second - 1) / time.Second)
			ctx.Response.Header.Set(fasthttp.HeaderRetryAfter, strconv.Itoa(max(seconds, 1)))
			s.writeError(ctx, fasthttp.StatusTooManyRequests, "", "rate limit exceeded")
			return
		}
		next(ctx)
	}
}

// withTimeout answers 408 when next does not finish within the request timeout.
// next keeps running on an abandoned context; fasthttp does not reuse it.
func (s *Server) withTimeout(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		outcome := outcomeOf(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			defer func() {
				if rec := recover(); rec != nil {
					s.recoverPanic(ctx, rec)
				}
			}()
			next(ctx)
		}()

		timer := time.NewTimer(s.cfg.RequestTimeout)
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
			var resp fasthttp.Response
			resp.SetStatusCode(fasthttp.StatusRequestTimeout)
			resp.Header.SetContentType(contentTypeJSON)
			resp.Header.Set(HeaderRequestID, requestID(ctx))
			resp.SetBody(errorBody(requestID(ctx), "", "request timed out"))
			ctx.TimeoutErrorWithResponse(&resp)
			if outcome != nil {
				outcome.status = fasthttp.StatusRequestTimeout
			}
		}
	}
}

func (s *Server) recoverPanic(ctx *fasthttp.RequestCtx, rec any) {
	s.log.Error("recovered from panic",
		zap.String(requestIDKey, requestID(ctx)),
		zap.ByteString("path", ctx.Path()),
		zap.String("panic", fmt.Sprint(rec)),
		zap.Stack("stack"),
	)
	s.writeError(ctx, fasthttp.StatusInternalServerError, "", "internal server error")
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusNotFound, "", "not found")
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "", "method not allowed")
}

// transportError answers requests fasthttp rejected before routing.
func (s *Server) transportError(ctx *fasthttp.RequestCtx, err error) {
	id := uuid.NewString()
	ctx.SetUserValue(requestIDKey, id)
	ctx.Response.Header.Set(HeaderRequestID, id)

	status := fasthttp.StatusBadRequest
	message := "malformed request"
	var timeoutErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, fasthttp.ErrBodyTooLarge):
		status, message = fasthttp.StatusRequestEntityTooLarge, "request body too large"
	case errors.As(err, &timeoutErr) && timeoutErr.Timeout():
		status, message = fasthttp.StatusRequestTimeout, "request timed out"
	}

	s.log.Warn("request rejected by transport",
		zap.String(requestIDKey, id),
		zap.String("client_ip", ctx.RemoteIP().String()),
		zap.Error(err),
	)
	s.writeError(ctx, status, "", message)
}
