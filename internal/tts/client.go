// Package tts provides the speech-synthesis capability abstraction and a
// Gemini implementation over the Generative Language REST API (the speech
// configuration is not exposed by the generative-ai-go SDK).
package tts

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

// DefaultModel is the Gemini speech model.
const DefaultModel = "gemini-2.5-flash-preview-tts"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Synthesizer converts a transcript into playable audio using the given
// voice identities (one or two; two-voice calls expect "Speaker 1:" /
// "Speaker 2:" line labels in the transcript).
type Synthesizer interface {
	Synthesize(ctx context.Context, transcript string, voiceNames []string) (data []byte, mimeType string, err error)
}

// GeminiSynthesizer implements Synthesizer against the Generative Language API.
type GeminiSynthesizer struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// NewGeminiSynthesizer creates a synthesizer for the default speech model.
func NewGeminiSynthesizer(apiKey string) (*GeminiSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return &GeminiSynthesizer{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultBaseURL,
		model:      DefaultModel,
		apiKey:     apiKey,
	}, nil
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (s *GeminiSynthesizer) WithBaseURL(url string) *GeminiSynthesizer {
	s.baseURL = url
	return s
}

// WithModel overrides the speech model.
func (s *GeminiSynthesizer) WithModel(model string) *GeminiSynthesizer {
	if model != "" {
		s.model = model
	}
	return s
}

// Request/response wire types, limited to the fields this client uses.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig             *voiceConfig             `json:"voiceConfig,omitempty"`
	MultiSpeakerVoiceConfig *multiSpeakerVoiceConfig `json:"multiSpeakerVoiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type speakerVoiceConfig struct {
	Speaker     string      `json:"speaker"`
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type multiSpeakerVoiceConfig struct {
	SpeakerVoiceConfigs []speakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Synthesize issues one generateContent call with an AUDIO response modality.
func (s *GeminiSynthesizer) Synthesize(ctx context.Context, transcript string, voiceNames []string) ([]byte, string, error) {
	if len(voiceNames) == 0 {
		return nil, "", fmt.Errorf("no voice names configured")
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: transcript}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       buildSpeechConfig(voiceNames),
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build synthesis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("synthesis call failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read synthesis response: %w", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, "", fmt.Errorf("failed to parse synthesis response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return nil, "", fmt.Errorf("synthesis call failed: %s", msg)
	}

	return extractAudio(&resp)
}

// buildSpeechConfig selects single- or multi-speaker voice configuration.
// Speaker labels match the "Speaker N:" line prefixes the transcript uses.
func buildSpeechConfig(voiceNames []string) *speechConfig {
	if len(voiceNames) == 1 {
		return &speechConfig{
			VoiceConfig: &voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voiceNames[0]},
			},
		}
	}

	configs := make([]speakerVoiceConfig, 0, len(voiceNames))
	for i, name := range voiceNames {
		configs = append(configs, speakerVoiceConfig{
			Speaker: fmt.Sprintf("Speaker %d", i+1),
			VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: name},
			},
		})
	}
	return &speechConfig{
		MultiSpeakerVoiceConfig: &multiSpeakerVoiceConfig{SpeakerVoiceConfigs: configs},
	}
}

func extractAudio(resp *generateResponse) ([]byte, string, error) {
	if len(resp.Candidates) == 0 {
		return nil, "", fmt.Errorf("no candidates in synthesis response")
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode synthesis audio: %w", err)
		}
		return data, p.InlineData.MimeType, nil
	}
	return nil, "", fmt.Errorf("no audio in synthesis response")
}
