// Package api is the HTTP/JSON transport for the featreq server. Success
// bodies arrive inside a {"data": ...} envelope; failures are normalized to
// *Error. A 403 carrying an "expired" error message additionally triggers
// the injected session-expiry callback before the caller sees the error.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the featreq server. It owns the CSRF default header and
// the expiry interception; stores depend on it through narrow interfaces.
type Client struct {
	rc        *resty.Client
	log       *zap.Logger
	onExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the request logger. Default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient injects the underlying http.Client, e.g. to carry a
// persistent cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.rc = resty.NewWithClient(hc) }
}

// New constructs a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.rc == nil {
		c.rc = resty.New()
	}
	c.rc.SetBaseURL(baseURL)
	c.rc.SetHeader("Accept", "application/json")

	c.rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if !resp.IsError() {
			return nil
		}
		apiErr := &Error{StatusCode: resp.StatusCode(), Message: "request failed"}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
			apiErr.Message = body.Error
		}
		c.log.Debug("request rejected",
			zap.String("path", resp.Request.URL),
			zap.Int("status", apiErr.StatusCode),
			zap.String("error", apiErr.Message),
		)
		if IsSessionExpired(apiErr) && c.onExpired != nil {
			c.onExpired()
		}
		return apiErr
	})
	return c
}

// OnSessionExpired installs the callback run once per response that carries
// the 403 session-expired signal.
func (c *Client) OnSessionExpired(fn func()) { c.onExpired = fn }

// SetCSRFToken sets the default X-CSRFToken header attached to all
// subsequent requests, per the latest successful auth response.
func (c *Client) SetCSRFToken(tok string) {
	c.rc.SetHeader("X-CSRFToken", tok)
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.rc.R().SetContext(ctx).SetResult(out)
	if query != nil {
		req.SetQueryParams(query)
	}
	_, err := req.Get(path)
	return normalize(err)
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	req := c.rc.R().SetContext(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Post(path)
	return normalize(err)
}

func fieldsParam(fields []string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	return map[string]string{"fields": strings.Join(fields, ",")}
}

// --- auth ---

// AuthStatus fetches the current session status.
func (c *Client) AuthStatus(ctx context.Context) (AuthRecord, error) {
	var env authEnvelope
	err := c.get(ctx, "/auth/", nil, &env)
	return env.Data, err
}

// Login posts credentials and returns the resulting session status.
func (c *Client) Login(ctx context.Context, username, password string) (AuthRecord, error) {
	var env authEnvelope
	err := c.post(ctx, "/auth/", map[string]any{
		"action":   "login",
		"username": username,
		"password": password,
	}, &env)
	return env.Data, err
}

// Logout posts the logout action and returns the resulting session status.
func (c *Client) Logout(ctx context.Context) (AuthRecord, error) {
	var env authEnvelope
	err := c.post(ctx, "/auth/", map[string]any{"action": "logout"}, &env)
	return env.Data, err
}

// --- clients ---

// Clients fetches the full client list.
func (c *Client) Clients(ctx context.Context) ([]ClientRecord, error) {
	var env clientListEnvelope
	err := c.get(ctx, "/clients/", nil, &env)
	return env.Data.ClientList, err
}

// ClientByID fetches one client's details.
func (c *Client) ClientByID(ctx context.Context, id string) (ClientRecord, error) {
	var env clientEnvelope
	err := c.get(ctx, "/clients/"+id, nil, &env)
	return env.Data.Client, err
}

// ClientAction posts a create or update for the given client id and returns
// the canonical record.
func (c *Client) ClientAction(ctx context.Context, id, action string, fields map[string]any) (ClientRecord, error) {
	body := map[string]any{"action": action}
	for k, v := range fields {
		body[k] = v
	}
	var env clientEnvelope
	err := c.post(ctx, "/clients/"+id, body, &env)
	return env.Data.Client, err
}

// --- request lists ---

// OpenByClient fetches one client's open attachments, restricted to the
// given embedded request fields.
func (c *Client) OpenByClient(ctx context.Context, clientID string, fields []string) ([]OpenReqRecord, error) {
	var env openListEnvelope
	err := c.get(ctx, "/clients/"+clientID+"/open/", fieldsParam(fields), &env)
	return env.Data.OpenList, err
}

// ClosedByClient fetches one client's closed attachments.
func (c *Client) ClosedByClient(ctx context.Context, clientID string, fields []string) ([]ClosedReqRecord, error) {
	var env closedListEnvelope
	err := c.get(ctx, "/clients/"+clientID+"/closed/", fieldsParam(fields), &env)
	return env.Data.ClosedList, err
}

// AllOpen fetches open attachments across all clients, grouped by request.
func (c *Client) AllOpen(ctx context.Context, fields []string) ([]GroupedOpenRecord, error) {
	var env groupedOpenEnvelope
	err := c.get(ctx, "/requests/open", fieldsParam(fields), &env)
	return env.Data.ReqList, err
}

// AllClosed fetches closed attachments across all clients, grouped by request.
func (c *Client) AllClosed(ctx context.Context, fields []string) ([]GroupedClosedRecord, error) {
	var env groupedClosedEnvelope
	err := c.get(ctx, "/requests/closed", fieldsParam(fields), &env)
	return env.Data.ReqList, err
}

// --- request detail ---

// RequestByID fetches the full request record.
func (c *Client) RequestByID(ctx context.Context, id string) (ReqRecord, error) {
	var env reqEnvelope
	err := c.get(ctx, "/requests/"+id, nil, &env)
	return env.Data.Req, err
}

// RequestLists fetches the request's open and closed attachments across
// clients.
func (c *Client) RequestLists(ctx context.Context, id string) ([]OpenReqRecord, []ClosedReqRecord, error) {
	var env reqListsEnvelope
	err := c.get(ctx, "/requests/"+id+"/all/", nil, &env)
	return env.Data.OpenList, env.Data.ClosedList, err
}

// RequestAction posts a create or update for the given request id and
// returns the canonical record.
func (c *Client) RequestAction(ctx context.Context, id, action string, fields map[string]any) (ReqRecord, error) {
	body := map[string]any{"action": action}
	for k, v := range fields {
		body[k] = v
	}
	var env reqEnvelope
	err := c.post(ctx, "/requests/"+id, body, &env)
	return env.Data.Req, err
}

// OpenAction posts an open/update/close lifecycle action for the request's
// attachments and returns the refreshed open and closed lists.
func (c *Client) OpenAction(ctx context.Context, id, action string, fields map[string]any) ([]OpenReqRecord, []ClosedReqRecord, error) {
	body := map[string]any{"action": action}
	for k, v := range fields {
		body[k] = v
	}
	var env reqListsEnvelope
	err := c.post(ctx, "/requests/"+id+"/all/", body, &env)
	return env.Data.OpenList, env.Data.ClosedList, err
}
