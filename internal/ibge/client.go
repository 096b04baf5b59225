// Package ibge wraps the public IBGE localidades API used for state/city
// lookup when editing locations. Read-only, no auth.
package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://servicodados.ibge.gov.br/api/v1/localidades"

type State struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type City struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ibge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ibge request: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ibge decode: %w", err)
	}
	return nil
}

// States lists every federative unit ordered by name.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var states []State
	if err := c.get(ctx, "/estados?orderBy=nome", &states); err != nil {
		return nil, err
	}
	return states, nil
}

// Cities lists the municipalities of one state, identified by its UF sigla.
func (c *Client) Cities(ctx context.Context, uf string) ([]City, error) {
	var cities []City
	path := fmt.Sprintf("/estados/%s/municipios", url.PathEscape(uf))
	if err := c.get(ctx, path, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}
