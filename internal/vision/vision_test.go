package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuccess(t *testing.T) {
	var gotAuth string
	var gotImages []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Images []string `json:"images"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		gotImages = body.Images

		json.NewEncoder(w).Encode(map[string]interface{}{
			"detections": []Detection{
				{Name: "tomato", Confidence: 0.94},
				{Name: "oat milk", Confidence: 0.71},
			},
		})
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, "test-key")
	detections, err := detector.Detect(context.Background(), [][]byte{[]byte("fake-jpeg")})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if len(gotImages) != 1 || gotImages[0] != base64.StdEncoding.EncodeToString([]byte("fake-jpeg")) {
		t.Errorf("Images should be base64 encoded, got %v", gotImages)
	}
	if len(detections) != 2 {
		t.Fatalf("Expected 2 detections, got %d", len(detections))
	}
	if detections[0].Name != "tomato" || detections[0].Confidence != 0.94 {
		t.Errorf("Unexpected first detection: %+v", detections[0])
	}
}

func TestDetectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, "test-key")
	if _, err := detector.Detect(context.Background(), [][]byte{[]byte("img")}); err == nil {
		t.Fatal("Expected an error for a non-200 response")
	}
}
