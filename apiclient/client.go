package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/token/refresh"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultCitySearchRate = 2.5
	maxErrorBodyBytes     = 64 << 10
)

// Session is the part of the session state the gateway works with
type Session interface {
	TokenReader
	refresh.SessionTokens
	Logout(ctx context.Context)
}

// Client calls the campaign API. Every request passes through the gateway
// chain: recovery, credentials, request id, metrics, network.
type Client struct {
	baseURL   string
	http      *http.Client
	refresher *refresh.Coordinator
	cities    *rate.Limiter
}

type options struct {
	transport      http.RoundTripper
	timeout        time.Duration
	metrics        *Metrics
	onSessionEnded func()
	citySearchRate rate.Limit
}

// Option configures a Client
type Option func(*options)

// WithTransport replaces the network transport at the bottom of the chain
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithTimeout bounds each call, refresh and resend included
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMetrics instruments the chain
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSessionEndedHook is called after the gateway has logged the session out
func WithSessionEndedHook(fn func()) Option {
	return func(o *options) {
		o.onSessionEnded = fn
	}
}

// WithCitySearchRate limits city searches per second
func WithCitySearchRate(perSecond float64) Option {
	return func(o *options) {
		if perSecond > 0 {
			o.citySearchRate = rate.Limit(perSecond)
		}
	}
}

// New builds the gateway for baseURL around session
func New(baseURL string, session Session, opts ...Option) *Client {
	o := &options{
		transport:      http.DefaultTransport,
		timeout:        defaultTimeout,
		citySearchRate: defaultCitySearchRate,
	}
	for _, opt := range opts {
		opt(o)
	}

	// The jar carries the API's cookies, the logout call relies on them.
	// cookiejar.New only fails on a bad PublicSuffixList.
	jar, _ := cookiejar.New(nil)
	baseURL = strings.TrimRight(baseURL, "/")

	network := Chain(o.transport, RequestID(), o.metrics.Middleware())

	// The coordinator talks to the API without the recovery stage, so a
	// refresh can never trigger another refresh.
	plain := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: Chain(network, Credentials(session)),
			Timeout:   o.timeout,
			Jar:       jar,
		},
	}
	coordinator := refresh.NewCoordinator(plain, session)

	endSession := func(ctx context.Context) {
		session.Logout(ctx)
		if o.onSessionEnded != nil {
			o.onSessionEnded()
		}
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: Chain(network, Recovery(coordinator, endSession, o.metrics), Credentials(session)),
			Timeout:   o.timeout,
			Jar:       jar,
		},
		refresher: coordinator,
		cities:    rate.NewLimiter(o.citySearchRate, 1),
	}
}

// Refresher returns the coordinator shared by every request of this client
func (c *Client) Refresher() *refresh.Coordinator {
	return c.refresher
}

// envelope is the API's response wrapper
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) (*envelope, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s body", path)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do sends req and decodes the envelope's data into out when out is non-nil
func (c *Client) do(req *http.Request, out interface{}) (*envelope, error) {
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	env := &envelope{}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", req.URL.Path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(raw, env); err != nil {
		if out == nil {
			return env, nil
		}
		return nil, errors.Wrapf(err, "decode %s response", req.URL.Path)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, errors.Wrapf(err, "decode %s data", req.URL.Path)
		}
	}
	return env, nil
}

// send runs the request through the chain and turns non-2xx replies into *APIError
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		apiErr.Message = env.Message
		if apiErr.Message == "" {
			apiErr.Message = env.Error
		}
	}
	return apiErr
}
