// Package vision is a thin client for the Google Cloud Vision
// images:annotate REST endpoint, the external recognition service that
// turns an envelope photo into raw text.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/extract"
)

const Provider = "google_vision"

// Recognition is the per-image result the pipeline consumes.
type Recognition struct {
	Text       string
	Locale     string
	Fragments  []extract.PositionedFragment
	Confidence float64
}

// Recognizer is the narrow interface the capture pipeline depends on.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
}

type Client struct {
	cfg     common.VisionConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg common.VisionConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  logger,
	}
}

type annotateRequest struct {
	Requests []annotateItem `json:"requests"`
}

type annotateItem struct {
	Image        imagePayload   `json:"image"`
	Features     []feature      `json:"features"`
	ImageContext map[string]any `json:"imageContext,omitempty"`
}

type imagePayload struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Locale       string `json:"locale"`
			Description  string `json:"description"`
			BoundingPoly struct {
				Vertices []struct {
					X int `json:"x"`
					Y int `json:"y"`
				} `json:"vertices"`
			} `json:"boundingPoly"`
		} `json:"textAnnotations"`
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// Recognize sends one image through the annotate endpoint and returns the
// full recognized text plus the individual fragments with their vertical
// positions.
func (c *Client) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	if c.cfg.APIKey == "" {
		return nil, common.NewAppError("VISION_CONFIG", "GOOGLE_VISION_API_KEY is not set", common.ErrInvalidInput)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	hints := map[string]any{}
	if len(c.cfg.LanguageHints) > 0 {
		hints["languageHints"] = c.cfg.LanguageHints
	}
	body, err := json.Marshal(annotateRequest{
		Requests: []annotateItem{{
			Image: imagePayload{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{
				{Type: "TEXT_DETECTION", MaxResults: 50},
				{Type: "DOCUMENT_TEXT_DETECTION"},
			},
			ImageContext: hints,
		}},
	})
	if err != nil {
		return nil, common.WrapError(err, "marshal annotate request")
	}

	url := fmt.Sprintf("%s?key=%s", c.cfg.Endpoint, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, common.WrapError(err, "build annotate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("vision request failed",
			"request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.NewAppError("VISION_UNAVAILABLE", "recognition request failed", common.ErrRecognition)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, common.WrapError(err, "read annotate response")
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("vision returned error status", "status", resp.StatusCode)
		return nil, common.NewAppError("VISION_STATUS",
			fmt.Sprintf("recognition service returned %d", resp.StatusCode), common.ErrRecognition)
	}

	var parsed annotateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, common.WrapError(err, "decode annotate response")
	}
	if len(parsed.Responses) == 0 {
		return &Recognition{}, nil
	}
	r := parsed.Responses[0]
	if r.Error != nil {
		c.logger.Error("vision returned error", "code", r.Error.Code, "message", r.Error.Message)
		return nil, common.NewAppError("VISION_ERROR", r.Error.Message, common.ErrRecognition)
	}

	out := &Recognition{}
	if r.FullTextAnnotation != nil {
		out.Text = r.FullTextAnnotation.Text
	}
	// textAnnotations[0] is the whole-image text; the rest are fragments
	if len(r.TextAnnotations) > 0 {
		if out.Text == "" {
			out.Text = r.TextAnnotations[0].Description
		}
		out.Locale = r.TextAnnotations[0].Locale
		for _, ta := range r.TextAnnotations[1:] {
			y := 0
			if len(ta.BoundingPoly.Vertices) > 0 {
				y = ta.BoundingPoly.Vertices[0].Y
			}
			out.Fragments = append(out.Fragments, extract.PositionedFragment{
				Text: ta.Description,
				Y:    y,
			})
		}
	}
	out.Confidence = gradeConfidence(r.FullTextAnnotation != nil, len(out.Fragments), out.Text)
	return out, nil
}

// probeImage is a 1x1 transparent PNG, enough to exercise authentication
// and quota without spending a real recognition.
const probeImage = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// Validate checks that the configured API key and endpoint accept
// requests. Callers run it at startup or from a settings screen.
func (c *Client) Validate(ctx context.Context) error {
	img, err := base64.StdEncoding.DecodeString(probeImage)
	if err != nil {
		return common.WrapError(err, "decode probe image")
	}
	if _, err := c.Recognize(ctx, img); err != nil {
		return err
	}
	c.logger.Info("vision configuration validated", "endpoint", c.cfg.Endpoint)
	return nil
}

// gradeConfidence is a coarse ladder: document-level recognition with many
// fragments reads best, a bare handful of fragments worst.
func gradeConfidence(hasDocument bool, fragments int, text string) float64 {
	switch {
	case text == "":
		return 0
	case hasDocument && fragments >= 10:
		return 0.95
	case hasDocument:
		return 0.85
	case fragments >= 10:
		return 0.75
	default:
		return 0.65
	}
}
