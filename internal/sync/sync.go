// Package sync pushes state snapshots to a remote backup endpoint and
// pulls them back, so a reinstalled device can recover its kitchen
// state. Requests carry a short-lived JWT signed with the device key.
package sync

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cookmate/internal/config"
	"cookmate/internal/state"
)

// Client is an interface for the snapshot backup API.
type Client interface {
	Push(ctx context.Context, snap state.Snapshot) error
	Pull(ctx context.Context) (state.Snapshot, bool, error)
}

// syncClient is the concrete implementation of the backup client.
type syncClient struct {
	httpClient *http.Client
	baseURL    string
	deviceKey  string
}

// NewClient creates a new backup client.
func NewClient(cfg *config.Config) Client {
	return &syncClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(cfg.SyncURL, "/"),
		deviceKey:  cfg.SyncDeviceKey,
	}
}

// Push uploads the snapshot to the backup endpoint.
func (c *syncClient) Push(ctx context.Context, snap state.Snapshot) error {
	token, err := c.createToken()
	if err != nil {
		return fmt.Errorf("failed to create sync token: %w", err)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", c.baseURL+"/v1/snapshot", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("sync api error: status %d", resp.StatusCode)
	}
	return nil
}

// Pull downloads the latest remote snapshot. A 404 means the device has
// never pushed; that is not an error.
func (c *syncClient) Pull(ctx context.Context) (state.Snapshot, bool, error) {
	token, err := c.createToken()
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("failed to create sync token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/snapshot", nil)
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return state.Snapshot{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return state.Snapshot{}, false, fmt.Errorf("sync api error: status %d", resp.StatusCode)
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return state.Snapshot{}, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, true, nil
}

// createToken generates a short-lived JWT from the id:secret device key.
func (c *syncClient) createToken() (string, error) {
	keyParts := strings.Split(c.deviceKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid device key format: expected id:secret")
	}

	id := keyParts[0]
	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"aud": "/v1/snapshot",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
