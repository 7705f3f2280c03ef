// Package feed fetches the current boss spawn-chance data from the
// tarkov.dev GraphQL API. The feed is treated as a black box: it returns a
// nested map -> boss -> chance structure which ingestion persists verbatim.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// spawnChanceQuery is the fixed GraphQL query for the current snapshot.
const spawnChanceQuery = `
{
  maps {
    name
    bosses {
      spawnChance
      name
    }
  }
}
`

// Boss is one boss entry under a map in the feed payload.
type Boss struct {
	Name        string  `json:"name"`
	SpawnChance float64 `json:"spawnChance"`
}

// Map is one map entry in the feed payload.
type Map struct {
	Name   string `json:"name"`
	Bosses []Boss `json:"bosses"`
}

// Payload is the full feed response: every map with its current boss
// spawn chances.
type Payload struct {
	Maps []Map `json:"maps"`
}

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlResponse struct {
	Data   *Payload `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client fetches spawn-chance snapshots from the GraphQL feed.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a feed client for the given GraphQL endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch executes the spawn-chance query and returns the decoded payload.
// The payload is validated against the embedded schema before being returned,
// so ingestion never sees a malformed feed response.
func (c *Client) Fetch(ctx context.Context) (*Payload, error) {
	body, err := json.Marshal(graphqlRequest{Query: spawnChanceQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("feed returned error: %s", gqlResp.Errors[0].Message)
	}
	if gqlResp.Data == nil {
		return nil, fmt.Errorf("feed response has no data")
	}

	if err := ValidatePayload(gqlResp.Data); err != nil {
		return nil, fmt.Errorf("feed payload failed validation: %w", err)
	}

	return gqlResp.Data, nil
}
