// Package webreg is a client for UCSD's WebReg course-enrollment
// service. It wraps the service's quirky JSON endpoints behind a typed
// API: reads return normalized domain values from types, writes go
// through a validate-then-commit flow, and every failure carries a
// classification in Error.
//
// The client does not authenticate. Callers obtain session cookies
// elsewhere and hand them over as an opaque credential string.
package webreg

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/webreg")

// Options configures a Client. Credential is the only required field.
type Options struct {
	// Credential is the opaque cookie string presented on every
	// request.
	Credential string
	// Term is the initial term code, e.g. "FA23". It can be changed
	// later through Session.
	Term string
	// BaseURL overrides the production service, mainly for tests.
	BaseURL string
	// UserAgent overrides the default browser user agent.
	UserAgent string
	// Timeout is the per-request timeout. Defaults to 30 seconds.
	Timeout time.Duration
	// SingleOwner selects the unsynchronized session. Leave false
	// unless the client never leaves one goroutine.
	SingleOwner bool
	// ThrottleEvery inserts ThrottleDelay before every Nth request
	// when positive. A courtesy to the service, not a rate limiter.
	ThrottleEvery uint64
	ThrottleDelay time.Duration
}

// Client talks to the registration service. Safe for concurrent use
// unless built with Options.SingleOwner.
type Client struct {
	http    *resty.Client
	session Session

	throttleEvery uint64
	throttleDelay time.Duration
}

func New(opts Options) (*Client, error) {
	if opts.Credential == "" {
		return nil, newError(KindInvalidRequest, "a credential is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "webreg/http")

	var session Session
	if opts.SingleOwner {
		session = NewOwnedSession(opts.Credential, opts.Term)
	} else {
		session = NewSharedSession(opts.Credential, opts.Term)
	}

	return &Client{
		http:          client,
		session:       session,
		throttleEvery: opts.ThrottleEvery,
		throttleDelay: opts.ThrottleDelay,
	}, nil
}

// Session exposes the client's mutable state: rotate the credential or
// switch terms here.
func (c *Client) Session() Session {
	return c.session
}

// throttle sleeps before every Nth request when configured. Honors
// cancellation.
func (c *Client) throttle(ctx context.Context) error {
	n := c.session.NextRequest()
	if c.throttleEvery == 0 || c.throttleDelay == 0 || n%c.throttleEvery != 0 {
		return nil
	}
	slog.DebugContext(ctx, "throttling request", "request", n, "delay", c.throttleDelay)
	t := time.NewTimer(c.throttleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return wrapError(KindTransport, "canceled while throttling", ctx.Err())
	case <-t.C:
		return nil
	}
}

// req starts a request carrying the credential. The credential is read
// out of the session once, before the request; nothing locks across the
// round trip.
func (c *Client) req(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("cookie", c.session.Credential())
}

// getText performs a GET and applies the service's shared failure
// conventions: non-2xx statuses, and the verification-failure body that
// /secure endpoints return for unassociated terms.
func (c *Client) getText(ctx context.Context, path string, query url.Values) (string, error) {
	if err := c.throttle(ctx); err != nil {
		return "", err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("_", epochMillis())

	res, err := c.req(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		return "", wrapError(KindTransport, "request failed", err)
	}

	body := string(res.Body())
	if res.StatusCode() == 401 || res.StatusCode() == 403 {
		c.session.setValid(false)
		return "", wrapError(KindSessionInvalid, "credential rejected", ErrSessionInvalid)
	}
	if !res.IsSuccess() {
		return "", newError(KindServiceRejected, "status "+res.Status())
	}
	if strings.Contains(body, verifyFailBody) {
		return "", ErrSessionInvalid
	}

	c.session.setValid(true)
	return body, nil
}

// unwrapJSON peels one layer of double encoding: some endpoints return a
// JSON string whose contents are the actual JSON document.
func unwrapJSON(body string) string {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, `"`) {
		return trimmed
	}
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
		return trimmed
	}
	return inner
}

// getJSON fetches and decodes a JSON list endpoint.
func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	body, err := c.getText(ctx, path, query)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(unwrapJSON(body)), &out); err != nil {
		return out, wrapError(KindMalformedResponse, "unexpected response shape from "+path, err)
	}
	return out, nil
}

// postForm performs a mutation and interprets the service's OPS/REASON
// envelope. A REASON is stripped of markup and surfaced verbatim.
func (c *Client) postForm(ctx context.Context, path string, form map[string]string) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	res, err := c.req(ctx).
		SetFormData(form).
		Post(path)
	if err != nil {
		return wrapError(KindTransport, "request failed", err)
	}

	if res.StatusCode() == 401 || res.StatusCode() == 403 {
		c.session.setValid(false)
		return wrapError(KindSessionInvalid, "credential rejected", ErrSessionInvalid)
	}
	if !res.IsSuccess() {
		return newError(KindServiceRejected, "status "+res.Status())
	}

	var envelope struct {
		Ops    string `json:"OPS"`
		Reason string `json:"REASON"`
	}
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return wrapError(KindMalformedResponse, "unexpected response shape from "+path, err)
	}

	c.session.setValid(true)
	if envelope.Ops == "SUCCESS" {
		return nil
	}
	return newError(KindServiceRejected, stripMarkup(envelope.Reason))
}

// stripMarkup removes the HTML tags the service embeds in its rejection
// reasons, keeping the text intact.
func stripMarkup(reason string) string {
	reason = strings.TrimSpace(reason)
	if !strings.Contains(reason, "<") {
		return reason
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(reason))
	if err != nil {
		return reason
	}
	return strings.TrimSpace(doc.Text())
}
