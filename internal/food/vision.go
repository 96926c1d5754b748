// Copyright (c) 2026 NutriSync. All rights reserved.

// Vision analysis: the HTTP client for the AI sidecar plus the deterministic
// mock fallback used when the sidecar is unreachable.
package food

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/constants"
)

// Analyzer estimates the food and macros shown in a photo.
type Analyzer interface {
	// Analyze returns an analysis or an [apperr.Upstream] error. Callers
	// treat upstream failures as a signal to fall back, never as fatal.
	Analyze(ctx context.Context, image []byte, filename, contentType string) (*Analysis, error)
}

// HTTPAnalyzer calls the Python vision sidecar over HTTP.
//
// # Wire Contract
//
// POST {baseURL}/analyze with a multipart body, field name "foodImage".
// The sidecar answers {"success": true, "food": ..., "macros": {...},
// "confidence": ..., "details": ...}.
type HTTPAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAnalyzer creates an analyzer pointed at the sidecar base URL.
func NewHTTPAnalyzer(baseURL string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: constants.VisionAnalyzeTimeout,
		},
	}
}

// sidecarResponse mirrors the sidecar's JSON answer.
type sidecarResponse struct {
	Success bool   `json:"success"`
	Food    string `json:"food"`
	Macros  struct {
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
	} `json:"macros"`
	Confidence string `json:"confidence"`
	Details    string `json:"details"`
}

// Analyze sends the image to the sidecar and maps its response.
func (analyzer *HTTPAnalyzer) Analyze(ctx context.Context, image []byte, filename, contentType string) (*Analysis, error) {
	// ── 1. Multipart Body Construction ────────────────────────────────────

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	part, err := form.CreateFormFile("foodImage", filename)
	if err != nil {
		return nil, fmt.Errorf("vision_analyzer_form_failed: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("vision_analyzer_form_write_failed: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("vision_analyzer_form_close_failed: %w", err)
	}

	// ── 2. Request Execution ──────────────────────────────────────────────

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzer.baseURL+"/analyze", body)
	if err != nil {
		return nil, fmt.Errorf("vision_analyzer_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", form.FormDataContentType())

	response, err := analyzer.client.Do(request)
	if err != nil {
		return nil, apperr.Upstream("Vision service", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("Vision service",
			fmt.Errorf("vision_analyzer_bad_status: %d", response.StatusCode))
	}

	// ── 3. Response Mapping ───────────────────────────────────────────────

	payload, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, apperr.Upstream("Vision service", err)
	}

	var decoded sidecarResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, apperr.Upstream("Vision service",
			fmt.Errorf("vision_analyzer_invalid_json: %w", err))
	}

	if !decoded.Success {
		return nil, apperr.Upstream("Vision service",
			fmt.Errorf("vision_analyzer_unsuccessful_response"))
	}

	return &Analysis{
		Food:       decoded.Food,
		Calories:   decoded.Macros.Calories,
		Protein:    decoded.Macros.Protein,
		Carbs:      decoded.Macros.Carbs,
		Fat:        decoded.Macros.Fat,
		Confidence: decoded.Confidence,
		Details:    decoded.Details,
		Source:     SourceAI,
	}, nil
}

// ── Mock Fallback ────────────────────────────────────────────────────────────

// mockFoods is the fallback estimation table used when the sidecar is down.
var mockFoods = []Analysis{
	{Food: "Grilled Chicken Breast", Calories: 284, Protein: 53, Carbs: 0, Fat: 6},
	{Food: "Caesar Salad", Calories: 360, Protein: 14, Carbs: 20, Fat: 26},
	{Food: "Banana", Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4},
	{Food: "Pasta Bolognese", Calories: 520, Protein: 24, Carbs: 68, Fat: 16},
	{Food: "Avocado Toast", Calories: 290, Protein: 7, Carbs: 30, Fat: 16},
	{Food: "Protein Smoothie", Calories: 340, Protein: 30, Carbs: 42, Fat: 6},
	{Food: "Salmon Fillet", Calories: 367, Protein: 34, Carbs: 0, Fat: 22},
	{Food: "Rice & Beans Bowl", Calories: 440, Protein: 16, Carbs: 72, Fat: 8},
}

// MockAnalysis returns a deterministic fallback analysis for an image hash.
//
// # Determinism
//
// The entry is selected by the first byte of the content hash rather than
// randomly, so re-uploading the same photo while the sidecar is down always
// yields the same answer (and agrees with whatever got cached).
func MockAnalysis(imageHash string) *Analysis {
	index := 0
	if len(imageHash) > 0 {
		index = int(imageHash[0]) % len(mockFoods)
	}

	analysis := mockFoods[index]
	analysis.Source = SourceMock
	return &analysis
}
