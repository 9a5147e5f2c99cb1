// Package apiclient is the request pipeline for the water resources API. It
// authenticates calls with the attached Session, unwraps the {code, message,
// data} envelope, classifies failures, and recovers expired sessions with a
// single-flight token refresh.
package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-waterres-client/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second

	RequestIDHeader = "X-Request-ID"
	cacheBustParam  = "_t"
)

// NowTimeFunc is the clock used for cache-busting parameters and timings.
var NowTimeFunc = time.Now

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	notifier   Notifier
	navigator  Navigator
	metrics    *metrics.Metrics
	nowFunc    func() time.Time
	requestID  func() string
	refresher  *refreshCoordinator

	sessionMu sync.RWMutex
	session   Session
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the fixed deadline applied to every call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithNotifier(n Notifier) ClientOption {
	return func(c *Client) {
		c.notifier = n
	}
}

func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = n
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithNowFunc(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowFunc = nowFunc
	}
}

// New creates a Client rooted at baseURL (DefaultBaseURL when empty).
func New(baseURL string, options ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		notifier:   logNotifier{},
		navigator:  logNavigator{},
		nowFunc:    NowTimeFunc,
		requestID:  uuid.NewString,
		session:    anonymousSession{},
	}
	for _, opt := range options {
		opt(c)
	}
	c.refresher = newRefreshCoordinator(c.navigator, c.metrics)
	return c
}

// AttachSession sets the session the client authenticates with.
func (c *Client) AttachSession(s Session) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if s == nil {
		s = anonymousSession{}
	}
	c.session = s
}

func (c *Client) currentSession() Session {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// RefreshNow refreshes the access token, joining a refresh that is already
// in flight.
func (c *Client) RefreshNow(ctx context.Context) (string, error) {
	return c.refresher.refresh(ctx, c.currentSession())
}

// Do issues req. A 401 runs the refresh protocol and retries the call once
// with the new token; any other failure is returned as an *Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	start := c.nowFunc()

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] failed to encode request body")
	}

	sess := c.currentSession()
	resp, err := c.send(ctx, req, body, contentType, sess.AccessToken())
	if KindOf(err) == KindAuthExpired {
		token, refreshErr := c.refresher.handleUnauthorized(ctx, sess, req.Path)
		if refreshErr == nil {
			resp, err = c.send(ctx, req, body, contentType, token)
		} else {
			log.Debug().Err(refreshErr).Str("path", req.Path).Msg("Refresh did not recover the call")
		}
	}

	outcome := "ok"
	if err != nil {
		kind := KindOf(err)
		outcome = kind.String()
		var apiErr *Error
		if errors.As(err, &apiErr) && kind.notifies() {
			c.notifier.Notify(kind, apiErr.Message)
		}
	}
	c.metrics.ObserveRequest(req.Method, outcome, c.nowFunc().Sub(start).Seconds())

	return resp, err
}

func (c *Client) send(ctx context.Context, req *Request, body []byte, contentType, token string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(method, req), reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] failed to build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, c.requestID())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	log.Debug().
		Str("method", method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Msg("API call")

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return unwrapSuccess(req, httpResp, raw)
	}
	return nil, classifyStatus(httpResp.StatusCode, raw)
}

func (c *Client) buildURL(method string, req *Request) string {
	query := url.Values{}
	for k, v := range req.Query {
		query[k] = append([]string(nil), v...)
	}
	if method == http.MethodGet {
		query.Set(cacheBustParam, strconv.FormatInt(c.nowFunc().UnixMilli(), 10))
	}

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// Call issues req and decodes the envelope data into T.
func Call[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// Exec issues req and discards the envelope data.
func Exec(ctx context.Context, c *Client, req *Request) error {
	_, err := c.Do(ctx, req)
	return err
}
