package server

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/cybergodev/jwtdebug"
)

const contentTypeJSON = "application/json; charset=utf-8"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type decodeResponse struct {
	Header              map[string]any `json:"header"`
	Payload             map[string]any `json:"payload"`
	Signature           *string        `json:"signature"`
	IsStructurallyValid bool           `json:"isStructurallyValid"`
	ErrorMessage        *string        `json:"errorMessage"`
	Expiry              *int64         `json:"expiry"`
	ExpiresAt           *string        `json:"expiresAt"`
	IsExpired           bool           `json:"isExpired"`
	HeaderError         *string        `json:"headerError,omitempty"`
	PayloadError        *string        `json:"payloadError,omitempty"`
}

type encodeResponse struct {
	Token      *string `json:"token"`
	JSONError  *string `json:"jsonError"`
	WeakSecret bool    `json:"weakSecret"`
}

type verifyResponse struct {
	Valid     bool    `json:"valid"`
	Algorithm string  `json:"algorithm,omitempty"`
	Error     *string `json:"error"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId"`
}

func (s *Server) handleDecode(ctx *fasthttp.RequestCtx) {
	var req decodeRequest
	if !s.readRequest(ctx, &req, req.validate) {
		return
	}

	decoded := s.decoder.Decode(*req.Token)
	resp := decodeResponse{
		Header:              decoded.Header,
		Payload:             decoded.Payload,
		Signature:           decoded.Signature,
		IsStructurallyValid: decoded.IsStructurallyValid,
		ErrorMessage:        nonEmpty(decoded.ErrorMessage),
		IsExpired:           decoded.IsExpired,
		HeaderError:         errorText(decoded.HeaderErr),
		PayloadError:        errorText(decoded.PayloadErr),
	}
	if decoded.Expiry != nil {
		ms := decoded.Expiry.UnixMilli()
		at := decoded.Expiry.Format(time.RFC3339)
		resp.Expiry, resp.ExpiresAt = &ms, &at
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleEncode(ctx *fasthttp.RequestCtx) {
	var req encodeRequest
	if !s.readRequest(ctx, &req, req.validate) {
		return
	}

	encoded := jwtdebug.Encode(jwtdebug.EncodingRequest{
		HeaderText:  *req.Header,
		PayloadText: *req.Payload,
		SecretText:  req.Secret,
	})
	if encoded.Err != nil {
		s.log.Debug("encode rejected input", zap.String(requestIDKey, requestID(ctx)), zap.Error(encoded.Err))
	}

	s.writeJSON(ctx, fasthttp.StatusOK, encodeResponse{
		Token:      nonEmpty(encoded.Token),
		JSONError:  nonEmpty(encoded.JSONError),
		WeakSecret: encoded.WeakSecret,
	})
}

func (s *Server) handleVerify(ctx *fasthttp.RequestCtx) {
	var req verifyRequest
	if !s.readRequest(ctx, &req, req.validate) {
		return
	}

	result := jwtdebug.Verify(*req.Token, req.Secret)
	s.writeJSON(ctx, fasthttp.StatusOK, verifyResponse{
		Valid:     result.Valid,
		Algorithm: result.Algorithm,
		Error:     errorText(result.Err),
	})
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

// readRequest decodes the JSON body into dst and validates it. On failure it writes
// the error response and returns false.
func (s *Server) readRequest(ctx *fasthttp.RequestCtx, dst any, validate func() error) bool {
	body := ctx.PostBody()
	if len(body) > s.cfg.MaxBodyBytes {
		s.writeError(ctx, fasthttp.StatusRequestEntityTooLarge, "", "request body too large")
		return false
	}
	if len(body) == 0 {
		s.writeError(ctx, fasthttp.StatusBadRequest, "", "request body is empty")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "", "request body is not valid JSON")
		return false
	}

	if err := validate(); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			s.writeError(ctx, fasthttp.StatusBadRequest, validationErr.Field, validationErr.Field+" "+validationErr.Message)
			return false
		}
		s.writeError(ctx, fasthttp.StatusBadRequest, "", err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode response", zap.String(requestIDKey, requestID(ctx)), zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "", "internal server error")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, field, message string) {
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(errorBody(requestID(ctx), field, message))
}

func errorBody(requestID, field, message string) []byte {
	body, err := json.Marshal(errorResponse{Error: message, Field: field, RequestID: requestID})
	if err != nil {
		return []byte(`{"error":"internal server error"}`)
	}
	return body
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	return nonEmpty(err.Error())
}
