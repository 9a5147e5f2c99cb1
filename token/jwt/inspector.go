package jwt

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

// DefaultExpiryThreshold is the window, in seconds, in which a token counts as
// expiring soon.
const DefaultExpiryThreshold = 300

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	segmentPattern = regexp.MustCompile(`^[A-Za-z0-9+/=_-]*$`)

	// Tokens occasionally arrive in the standard base64 alphabet.
	stdToURLAlphabet = strings.NewReplacer("+", "-", "/", "_")
)

// Inspector reads JWTs without verifying their signature. The server is the
// only party that verifies tokens; the client only needs the claims to decide
// whether a token is worth sending.
type Inspector struct {
	parser  *jwtlib.Parser
	nowFunc func() time.Time
}

type InspectorOption func(*Inspector)

func WithNowFunc(now func() time.Time) InspectorOption {
	return func(i *Inspector) {
		i.nowFunc = now
	}
}

// NewInspector creates a new JWT inspector
func NewInspector(options ...InspectorOption) *Inspector {
	i := &Inspector{
		parser: jwtlib.NewParser(jwtlib.WithPaddingAllowed()),
	}
	for _, opt := range options {
		opt(i)
	}
	if i.nowFunc == nil {
		i.nowFunc = func() time.Time { return NowTimeFunc() }
	}
	return i
}

var defaultInspector = NewInspector()

// IsValidFormat reports whether token has exactly three non-empty base64 segments.
func IsValidFormat(token string) bool {
	if token == "" {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" || !segmentPattern.MatchString(part) {
			return false
		}
	}
	return true
}

// Decode returns the payload claims, or nil and ErrMalformedToken when the
// token is not a decodable JWT.
func (i *Inspector) Decode(token string) (jwtlib.MapClaims, error) {
	if !IsValidFormat(token) {
		return nil, apperrors.ErrMalformedToken
	}

	payload := stdToURLAlphabet.Replace(strings.Split(token, ".")[1])
	raw, err := i.parser.DecodeSegment(payload)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "payload decode: %v", err)
	}

	claims := jwtlib.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "payload json: %v", err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim. ok is false when the token cannot be decoded
// or carries no usable exp.
func (i *Inspector) ExpiresAt(token string) (time.Time, bool) {
	claims, err := i.Decode(token)
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || exp.IsZero() || exp.Unix() == 0 {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired is true when the token is undecodable, has no exp, or now >= exp.
func (i *Inspector) IsExpired(token string) bool {
	exp, ok := i.ExpiresAt(token)
	if !ok {
		return true
	}
	return i.nowFunc().UnixMilli() >= exp.UnixMilli()
}

// RemainingSeconds returns the whole seconds left before exp, or -1 when the
// token is expired or invalid.
func (i *Inspector) RemainingSeconds(token string) int64 {
	exp, ok := i.ExpiresAt(token)
	if !ok {
		return -1
	}
	remaining := exp.UnixMilli() - i.nowFunc().UnixMilli()
	if remaining <= 0 {
		return -1
	}
	return remaining / 1000
}

// IsExpiringSoon is true when the remaining lifetime is in [0, thresholdSeconds).
func (i *Inspector) IsExpiringSoon(token string, thresholdSeconds int64) bool {
	remaining := i.RemainingSeconds(token)
	return remaining != -1 && remaining < thresholdSeconds
}

func Decode(token string) (jwtlib.MapClaims, error) {
	return defaultInspector.Decode(token)
}

func ExpiresAt(token string) (time.Time, bool) {
	return defaultInspector.ExpiresAt(token)
}

func IsExpired(token string) bool {
	return defaultInspector.IsExpired(token)
}

func RemainingSeconds(token string) int64 {
	return defaultInspector.RemainingSeconds(token)
}

func IsExpiringSoon(token string, thresholdSeconds int64) bool {
	return defaultInspector.IsExpiringSoon(token, thresholdSeconds)
}
