// Package vision defines the shape of object-detection results and a
// client for a remote detection endpoint. Image capture and compression
// happen on the device; this package only deals with the detection output.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Detection is a single detected ingredient with the model's certainty.
type Detection struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Detector turns image payloads into ingredient detections.
type Detector interface {
	Detect(ctx context.Context, images [][]byte) ([]Detection, error)
}

// httpDetector calls a remote detection endpoint with base64 image payloads.
type httpDetector struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPDetector creates a Detector backed by a remote endpoint.
func NewHTTPDetector(endpoint, apiKey string) Detector {
	return &httpDetector{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Detect sends the images and decodes the name+confidence pairs.
func (d *httpDetector) Detect(ctx context.Context, images [][]byte) ([]Detection, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}

	reqBody := map[string]interface{}{
		"images": encoded,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detection api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var detectResp struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detectResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return detectResp.Detections, nil
}
