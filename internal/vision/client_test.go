package vision

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfujimura/koden-tracker/internal/common"
)

func testConfig(endpoint string) common.VisionConfig {
	return common.VisionConfig{
		APIKey:        "test-key",
		Endpoint:      endpoint,
		LanguageHints: []string{"ja"},
		Timeout:       5 * time.Second,
		RatePerSecond: 100,
		Burst:         10,
	}
}

func TestRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		reqs := req["requests"].([]any)
		require.Len(t, reqs, 1)

		resp := map[string]any{
			"responses": []any{map[string]any{
				"fullTextAnnotation": map[string]any{"text": "御霊前\n山田太郎"},
				"textAnnotations": []any{
					map[string]any{"description": "御霊前\n山田太郎"},
					map[string]any{
						"description":  "御霊前",
						"boundingPoly": map[string]any{"vertices": []any{map[string]any{"x": 40, "y": 12}}},
					},
					map[string]any{
						"description":  "山田太郎",
						"boundingPoly": map[string]any{"vertices": []any{map[string]any{"x": 38, "y": 310}}},
					},
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	got, err := c.Recognize(context.Background(), []byte("fake-image"))
	require.NoError(t, err)

	assert.Equal(t, "御霊前\n山田太郎", got.Text)
	require.Len(t, got.Fragments, 2)
	assert.Equal(t, "御霊前", got.Fragments[0].Text)
	assert.Equal(t, 12, got.Fragments[0].Y)
	assert.Equal(t, 0.85, got.Confidence)
}

func TestRecognizeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"responses": []any{map[string]any{
				"error": map[string]any{"code": 3, "message": "image too large"},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	_, err := c.Recognize(context.Background(), []byte("fake-image"))
	assert.ErrorIs(t, err, common.ErrRecognition)
}

func TestRecognizeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	_, err := c.Recognize(context.Background(), []byte("fake-image"))
	assert.ErrorIs(t, err, common.ErrRecognition)
}

func TestRecognizeMissingAPIKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.APIKey = ""
	c := NewClient(cfg, slog.Default())
	_, err := c.Recognize(context.Background(), []byte("fake-image"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRecognizeLocale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"responses": []any{map[string]any{
				"textAnnotations": []any{
					map[string]any{"locale": "ja", "description": "御霊前"},
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	got, err := c.Recognize(context.Background(), []byte("fake-image"))
	require.NoError(t, err)
	assert.Equal(t, "ja", got.Locale)
	assert.Equal(t, "御霊前", got.Text)
}

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"responses": []any{}}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	assert.NoError(t, c.Validate(context.Background()))
}

func TestValidateBadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key not valid", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	assert.ErrorIs(t, c.Validate(context.Background()), common.ErrRecognition)
}

func TestRecognizeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"responses": []any{}}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	got, err := c.Recognize(context.Background(), []byte("fake-image"))
	require.NoError(t, err)
	assert.Empty(t, got.Text)
	assert.Equal(t, float64(0), got.Confidence)
}
