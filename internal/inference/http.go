package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are an agricultural expert assistant for Indian farmers. " +
	"Give practical, concise advice on crops, pests, fertilizers, irrigation and weather. " +
	"When an image is provided, analyse it for crop or soil problems."

// HTTPClient calls a Gemini-style generateContent endpoint.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
	}
}

type generatePart struct {
	Text       string              `json:"text,omitempty"`
	InlineData *generateInlineData `json:"inline_data,omitempty"`
}

type generateInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateReq struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
}

type generateResp struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func languageInstruction(language string) string {
	switch language {
	case "hi":
		return "Answer in Hindi."
	case "kn":
		return "Answer in Kannada."
	case "te":
		return "Answer in Telugu."
	default:
		return "Answer in English."
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.Client == nil {
		return "", errors.New("inference: http client is nil")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return "", errors.New("inference: api key is required")
	}

	parts := make([]generatePart, 0, 2)
	if req.Prompt != "" {
		parts = append(parts, generatePart{Text: req.Prompt})
	}
	if req.Image != nil {
		parts = append(parts, generatePart{InlineData: &generateInlineData{
			MIMEType: req.Image.MIME,
			Data:     base64.StdEncoding.EncodeToString(req.Image.Data),
		}})
	}
	if len(parts) == 0 {
		return "", errors.New("inference: empty request")
	}

	body := generateReq{
		SystemInstruction: &generateContent{
			Parts: []generatePart{{Text: systemPrompt + " " + languageInstruction(req.Language)}},
		},
		Contents: []generateContent{{Role: "user", Parts: parts}},
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.BaseURL, "/"), c.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("inference: %s", msg)
	}

	var decoded generateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 {
		return "", errors.New("inference: empty response")
	}

	var out strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	if out.Len() == 0 {
		return "", errors.New("inference: response without text")
	}
	return out.String(), nil
}
