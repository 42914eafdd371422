package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrStopStream can be returned from a StreamFunc to stop consuming the
// upstream stream without treating the run as failed.
var ErrStopStream = errors.New("stop streaming")

// StreamFunc receives one incremental text delta per call.
type StreamFunc func(delta string) error

// Client is an abstraction over text-generation providers.
type Client interface {
	// Complete generates text from the concatenated prompt parts in one
	// non-streaming call.
	Complete(ctx context.Context, parts ...string) (string, error)
	// Stream generates text from prompt, delivering deltas to onDelta in
	// generation order. When useSearch is set the call is augmented with the
	// provider's web-search grounding tool.
	Stream(ctx context.Context, prompt string, useSearch bool, onDelta StreamFunc) error
	// Transcribe converts spoken audio to plain text following instruction.
	Transcribe(ctx context.Context, audio []byte, mimeType, instruction string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

const defaultStreamBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implements Client for Google Gemini. Non-streaming calls go
// through the SDK; streaming goes over the REST API directly because the SDK
// does not expose the search grounding tool (same situation as the speech
// configuration in the tts package).
type GeminiClient struct {
	client     *genai.Client
	httpClient *http.Client
	baseURL    string
	apiKey     string
	config     *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		baseURL:    defaultStreamBaseURL,
		apiKey:     apiKey,
		config:     config,
	}, nil
}

// WithBaseURL overrides the streaming API endpoint. Used in tests.
func (c *GeminiClient) WithBaseURL(url string) *GeminiClient {
	c.baseURL = url
	return c
}

// Complete generates text from the given prompt parts
func (c *GeminiClient) Complete(ctx context.Context, parts ...string) (string, error) {
	model := c.client.GenerativeModel(c.config.TextModel)

	genaiParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		genaiParts = append(genaiParts, genai.Text(p))
	}

	resp, err := model.GenerateContent(ctx, genaiParts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Request/response wire types for the streaming endpoint, limited to the
// fields this client uses.

type streamRequest struct {
	Contents []wireContent `json:"contents"`
	Tools    []wireTool    `json:"tools,omitempty"`
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text string `json:"text,omitempty"`
}

type wireTool struct {
	GoogleSearch *googleSearch `json:"googleSearch,omitempty"`
}

type googleSearch struct{}

type streamChunk struct {
	Candidates []struct {
		Content wireContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *streamChunk) text() string {
	if len(c.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Stream generates text from prompt and feeds each delta to onDelta. The
// call goes over streamGenerateContent with server-sent events framing.
func (c *GeminiClient) Stream(ctx context.Context, prompt string, useSearch bool, onDelta StreamFunc) error {
	req := streamRequest{
		Contents: []wireContent{{Parts: []wirePart{{Text: prompt}}}},
	}
	if useSearch {
		req.Tools = []wireTool{{GoogleSearch: &googleSearch{}}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode stream request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, c.config.TextModel, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("stream call failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		msg := httpResp.Status
		var chunk streamChunk
		if json.Unmarshal(respBody, &chunk) == nil && chunk.Error != nil && chunk.Error.Message != "" {
			msg = chunk.Error.Message
		}
		return fmt.Errorf("stream call failed: %s", msg)
	}

	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to parse stream chunk: %w", err)
		}
		delta := chunk.text()
		if delta == "" {
			// Chunks without text parts (tool metadata etc.) are skipped.
			continue
		}
		if err := onDelta(delta); err != nil {
			if errors.Is(err, ErrStopStream) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream failed: %w", err)
	}
	return nil
}

// Transcribe converts audio bytes to a plain-text transcript
func (c *GeminiClient) Transcribe(ctx context.Context, audio []byte, mimeType, instruction string) (string, error) {
	model := c.client.GenerativeModel(c.config.TextModel)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(instruction),
	)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
