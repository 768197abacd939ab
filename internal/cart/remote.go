package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"genwear/internal/domain"
)

// APIStore is the RemoteStore backed by the storefront's cart API. Reads
// and writes carry the session's bearer token and replace the full list on
// every write.
type APIStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewAPIStore builds an APIStore for the given server and access token.
func NewAPIStore(baseURL, token string) *APIStore {
	return &APIStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type cartPayload struct {
	Items []domain.CartLine `json:"items"`
}

func (s *APIStore) Fetch(ctx context.Context) ([]domain.CartLine, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/me/cart", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cart fetch: unexpected status %d", resp.StatusCode)
	}

	var payload cartPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cart fetch: decode: %w", err)
	}
	return payload.Items, nil
}

func (s *APIStore) Replace(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	body, err := json.Marshal(cartPayload{Items: lines})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/v1/me/cart", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("cart replace: unexpected status %d", resp.StatusCode)
	}
	return nil
}
