// Package registry looks teams up in the RobotEvents API. The only signal
// consumed is whether a (program, team number) query returns any results.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.robotevents.com/api/v2"

// Client - stateless RobotEvents API client
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// New creates a Client authenticating with the given bearer token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type teamsResponse struct {
	Data []json.RawMessage `json:"data"`
}

// TeamRegistered reports whether any team with the given number has ever
// been registered under one of the program IDs. A transport or API failure
// is returned as an error, distinct from an empty result.
func (c *Client) TeamRegistered(ctx context.Context, programIDs []int, number string) (bool, error) {
	params := url.Values{}
	for _, id := range programIDs {
		params.Add("program[]", strconv.Itoa(id))
	}
	params.Add("number[]", number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/teams?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build teams request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("teams lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("teams lookup returned status %d", resp.StatusCode)
	}

	var body teamsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode teams response: %w", err)
	}
	return len(body.Data) > 0, nil
}
