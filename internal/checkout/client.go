package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"genwear/internal/service/order"
)

// APIClient places orders against the storefront's order API with the
// session's bearer token.
type APIClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewAPIClient builds an APIClient for the given server and access token.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *APIClient) Place(ctx context.Context, in order.CreateInput) (Confirmation, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Confirmation{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Confirmation{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Confirmation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return Confirmation{}, errors.New(apiErr.Error)
		}
		return Confirmation{}, fmt.Errorf("order create: unexpected status %d", resp.StatusCode)
	}

	var conf Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return Confirmation{}, fmt.Errorf("order create: decode: %w", err)
	}
	return conf, nil
}
