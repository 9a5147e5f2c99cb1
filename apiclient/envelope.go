package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"strings"
)

const successCode = 200

// Fixed user-facing messages per failure category.
const (
	msgRequestFailed    = "request failed"
	msgBadRequest       = "request parameter error"
	msgAuthExpired      = "login session has expired"
	msgForbidden        = "no permission to access this resource"
	msgNotFound         = "the requested resource does not exist"
	msgValidationFailed = "form validation failed"
	msgServerError      = "internal server error, please try again later"
	msgUnavailable      = "service temporarily unavailable, please try again later"
	msgTimeout          = "request timed out, please check the network connection"
	msgNetwork          = "network connection failed, please check network settings"
	msgUnknown          = "network error"
)

// businessKind is the value of the optional "kind" discriminant that marks a
// 400 response as a business rejection.
const businessKind = "business"

var blobContentTypes = []string{
	"application/octet-stream",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats",
}

type envelope struct {
	Code    int                        `json:"code"`
	Message string                     `json:"message"`
	Data    json.RawMessage            `json:"data"`
	Kind    string                     `json:"kind,omitempty"`
	Errors  map[string]json.RawMessage `json:"errors,omitempty"`
}

func isBlobContentType(contentType string) bool {
	for _, ct := range blobContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// unwrapSuccess turns a 2xx response into a Response or a rejection.
func unwrapSuccess(req *Request, resp *http.Response, body []byte) (*Response, error) {
	contentType := resp.Header.Get("Content-Type")
	out := &Response{
		Status:      resp.StatusCode,
		Header:      resp.Header,
		ContentType: contentType,
	}

	if req.ResponseType == ResponseBlob || isBlobContentType(contentType) {
		out.Blob = body
		if out.Blob == nil {
			out.Blob = []byte{}
		}
		return out, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindRejected, Status: resp.StatusCode, Message: msgRequestFailed, Err: err}
	}
	if env.Code != successCode {
		return nil, &Error{
			Kind:    KindRejected,
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: firstNonEmpty(env.Message, msgRequestFailed),
			Data:    env.Data,
		}
	}

	out.Message = env.Message
	out.Data = env.Data
	return out, nil
}

// classifyStatus maps a non-2xx response onto an *Error.
func classifyStatus(status int, body []byte) *Error {
	var env envelope
	_ = json.Unmarshal(body, &env)

	e := &Error{Status: status, Code: env.Code}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthExpired
		e.Message = firstNonEmpty(env.Message, msgAuthExpired)
	case status == http.StatusBadRequest:
		e.Message = firstNonEmpty(env.Message, msgBadRequest)
		if isBusinessRejection(env) {
			e.Kind = KindBusiness
			e.Data = env.Data
		} else {
			e.Kind = KindBadRequest
		}
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
		e.Message = msgForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = msgNotFound
	case status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
		e.FieldErrors = decodeFieldErrors(env.Errors)
		if first := firstFieldError(e.FieldErrors); first != "" {
			e.Message = first
		} else {
			e.Message = firstNonEmpty(env.Message, msgValidationFailed)
		}
	case status == http.StatusInternalServerError:
		e.Kind = KindServer
		e.Message = msgServerError
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		e.Kind = KindUnavailable
		e.Message = msgUnavailable
	default:
		e.Kind = KindUnknown
		e.Message = firstNonEmpty(env.Message, http.StatusText(status), msgUnknown)
	}
	return e
}

// isBusinessRejection prefers the explicit discriminant and falls back to the
// presence of a data payload.
func isBusinessRejection(env envelope) bool {
	if env.Kind != "" {
		return env.Kind == businessKind
	}
	return hasPayload(env.Data)
}

// decodeFieldErrors accepts both {"field": ["msg", ...]} and {"field": "msg"}.
func decodeFieldErrors(raw map[string]json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for field, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			out[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			out[field] = []string{single}
		}
	}
	return out
}

// firstFieldError returns the first message of the alphabetically first field
// that has one.
func firstFieldError(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msgs := fields[name]; len(msgs) > 0 && msgs[0] != "" {
			return msgs[0]
		}
	}
	return ""
}

func transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
