// Package client is a small Go client for the admin API. It keeps the
// session cookie in a jar, the way a browser would.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status=%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type Client struct {
	base    string
	http    *http.Client
	session *Session
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The client's jar is kept if the
// given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second, Jar: jar},
		session: NewSession(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) Session() *Session { return c.session }

// Register creates an account; it does not log in.
func (c *Client) Register(ctx context.Context, email, name, password string) error {
	body := map[string]string{"email": email, "name": name, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, nil); err != nil {
		c.session.clear()
		return err
	}
	c.session.Resolve(ctx, c.me)
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.session.clear()
	return err
}

// Refresh re-reads the identity from the server.
func (c *Client) Refresh(ctx context.Context) Status {
	return c.session.Resolve(ctx, c.me)
}

func (c *Client) me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

type Professor struct {
	ID           int64    `json:"id,omitempty"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Image        string   `json:"image"`
	Profile      string   `json:"profile"`
	Certificates []string `json:"certificates"`
}

type Formation struct {
	ID            int64    `json:"id,omitempty"`
	Title         string   `json:"title"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	Duration      *int     `json:"duration,omitempty"`
	Location      string   `json:"location"`
	ClassSize     *int     `json:"classSize,omitempty"`
	Prerequisites string   `json:"prerequisites"`
	Description   string   `json:"description"`
	Detail        string   `json:"detail"`
	Images        []string `json:"images"`
	ProfessorIDs  []int64  `json:"professorIds"`
}

func (c *Client) CreateProfessor(ctx context.Context, p Professor) (int64, error) {
	if p.Certificates == nil {
		p.Certificates = []string{}
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/professors", p, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) CreateFormation(ctx context.Context, f Formation) (int64, error) {
	if f.ProfessorIDs == nil {
		f.ProfessorIDs = []int64{}
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/formations", f, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error, Fields: e.Fields}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
