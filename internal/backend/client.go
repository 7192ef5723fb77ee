// Package backend reads the user's financial data from the app's REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finnyai/internal/encoding"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

const defaultTimeout = 10 * time.Second

// listKeys are the wrapper keys a list payload may be nested under.
var listKeys = []string{"items", "transactions", "categories", "results", "data"}

// Client implements finance.Source over the backend's read endpoints.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.client = &http.Client{Timeout: d}
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

func (c *Client) Balance(ctx context.Context) (finance.RawRecord, error) {
	return c.getRecord(ctx, "/balance", nil)
}

func (c *Client) RecentTransactions(ctx context.Context, limit int) ([]finance.RawRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	return c.getList(ctx, "/transactions", q)
}

func (c *Client) Categories(ctx context.Context) ([]finance.RawRecord, error) {
	return c.getList(ctx, "/categories", nil)
}

func (c *Client) Profile(ctx context.Context) (finance.RawRecord, error) {
	return c.getRecord(ctx, "/profile", nil)
}

func (c *Client) getRecord(ctx context.Context, path string, q url.Values) (finance.RawRecord, error) {
	data, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var rec finance.RawRecord
	if err := decode(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if rec == nil {
		return nil, fmt.Errorf("%s: %w: empty data", path, finance.ErrUnsuccessful)
	}

	return rec, nil
}

func (c *Client) getList(ctx context.Context, path string, q url.Values) ([]finance.RawRecord, error) {
	data, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var list []finance.RawRecord
	if err := decode(data, &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := decode(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	for _, key := range listKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}

		if err := decode(raw, &list); err == nil {
			return list, nil
		}
	}

	return nil, fmt.Errorf("decoding %s: no list in payload", path)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, path)
	}

	body, err := encoding.ReadAll(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope for %s: %w", path, err)
	}

	if !env.Success {
		if env.Message != "" {
			return nil, fmt.Errorf("%s: %w: %s", path, finance.ErrUnsuccessful, env.Message)
		}

		return nil, fmt.Errorf("%s: %w", path, finance.ErrUnsuccessful)
	}

	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, fmt.Errorf("%s: %w: no data", path, finance.ErrUnsuccessful)
	}

	return env.Data, nil
}

// decode keeps numbers as json.Number so ids and amounts survive unchanged.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	return dec.Decode(v)
}
