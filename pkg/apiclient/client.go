// Package apiclient is a Go client for the BragaWork site API. Failures never
// surface as Go errors: every call returns an envelope with success=false and
// a message fit for display.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"
)

const (
	MsgSessionExpired = "Sessão expirada. Faça login novamente."

	resultStatusHeader = "X-Result-Status"
)

type Client struct {
	baseURL        string
	httpClient     *http.Client
	onUnauthorized func()

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithOnUnauthorized registers the forced-logout hook run after any 401.
func WithOnUnauthorized(fn func()) Option {
	return func(cl *Client) { cl.onUnauthorized = fn }
}

// WithToken resumes a previously stored session.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) IsAuthenticated() bool {
	return c.Token() != ""
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context, username, password string) LoginResponse {
	var out LoginResponse
	c.postJSON(ctx, "/api/login", false, map[string]string{"username": username, "password": password}, &out)
	if out.Success && out.Token != "" {
		c.setToken(out.Token)
	}
	return out
}

// Logout ends the server session. The local token is dropped either way.
func (c *Client) Logout(ctx context.Context) Envelope {
	var out Envelope
	if c.IsAuthenticated() {
		c.postJSON(ctx, "/api/logout", true, nil, &out)
	} else {
		out.Success = true
	}
	c.setToken("")
	return out
}

func (c *Client) SubmitQuote(ctx context.Context, q QuoteRequest) SubmitQuoteResponse {
	var out SubmitQuoteResponse
	c.postJSON(ctx, "/api/submit-quote", false, q, &out)
	return out
}

func (c *Client) GetQuotes(ctx context.Context) QuotesResponse {
	var out QuotesResponse
	c.getList(ctx, "/api/get-quotes", true, &out.Envelope, &out.Quotes, "Erro ao carregar solicitações.")
	return out
}

func (c *Client) UpdateQuote(ctx context.Context, id int64, status, adminNotes string) Envelope {
	var out Envelope
	c.postJSON(ctx, "/api/update-quote", true, map[string]interface{}{
		"id":         id,
		"status":     status,
		"adminNotes": adminNotes,
	}, &out)
	return out
}

func (c *Client) DeleteQuote(ctx context.Context, id int64) Envelope {
	var out Envelope
	c.postJSON(ctx, "/api/delete-quote", true, map[string]int64{"id": id}, &out)
	return out
}

// GetProjects lists approved projects, or every project when admin is set.
func (c *Client) GetProjects(ctx context.Context, admin bool) ProjectsResponse {
	var out ProjectsResponse
	path := "/api/get-projects"
	if admin {
		path += "?admin=true"
	}
	c.getList(ctx, path, admin, &out.Envelope, &out.Projects, "Erro ao carregar projetos.")
	return out
}

func (c *Client) SaveProject(ctx context.Context, p ProjectInput) SaveProjectResponse {
	var out SaveProjectResponse
	c.postJSON(ctx, "/api/save-project", true, p, &out)
	return out
}

func (c *Client) DeleteProject(ctx context.Context, id int64) Envelope {
	var out Envelope
	c.postJSON(ctx, "/api/delete-project", true, map[string]int64{"id": id}, &out)
	return out
}

func (c *Client) RecordProjectView(ctx context.Context, id int64) Envelope {
	var out Envelope
	c.postJSON(ctx, "/api/project-view", false, map[string]int64{"id": id}, &out)
	return out
}

func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) UploadResponse {
	var out UploadResponse

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err == nil {
		_, err = io.Copy(part, r)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		out.fail(err.Error())
		return out
	}

	c.do(ctx, http.MethodPost, "/api/upload-image", true, mw.FormDataContentType(), &buf, &out)
	return out
}

func (c *Client) ListImages(ctx context.Context) ImagesResponse {
	var out ImagesResponse
	c.do(ctx, http.MethodGet, "/api/list-images", true, "", nil, &out)
	if out.Images == nil {
		out.Images = []Image{}
	}
	return out
}

func (c *Client) postJSON(ctx context.Context, path string, auth bool, body interface{}, out failer) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			out.fail(err.Error())
			return
		}
		r = bytes.NewReader(data)
	}
	c.do(ctx, http.MethodPost, path, auth, "application/json", r, out)
}

// getList decodes a bare JSON array. The server flags a failed listing with
// an empty array plus the result status header.
func (c *Client) getList(ctx context.Context, path string, auth bool, env *Envelope, list interface{}, failMsg string) {
	res, data, ok := c.send(ctx, http.MethodGet, path, auth, "", nil, env)
	if !ok {
		return
	}
	if res.StatusCode != http.StatusOK {
		env.fail(failMsg)
		return
	}
	if err := json.Unmarshal(data, list); err != nil {
		env.fail(err.Error())
		return
	}
	if res.Header.Get(resultStatusHeader) == "error" {
		env.fail(failMsg)
		return
	}
	env.Success = true
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, contentType string, body io.Reader, out failer) {
	_, data, ok := c.send(ctx, method, path, auth, contentType, body, out)
	if !ok {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		out.fail(err.Error())
	}
}

// send performs the round trip. It returns ok=false after writing a failure
// into out for transport errors and 401s.
func (c *Client) send(ctx context.Context, method, path string, auth bool, contentType string, body io.Reader, out failer) (*http.Response, []byte, bool) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		out.fail(err.Error())
		return nil, nil, false
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		out.fail(err.Error())
		return nil, nil, false
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		c.setToken("")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		out.fail(MsgSessionExpired)
		return res, nil, false
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		out.fail(err.Error())
		return nil, nil, false
	}
	return res, data, true
}
