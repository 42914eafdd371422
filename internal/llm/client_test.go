package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseBody frames each chunk payload as one server-sent event.
func sseBody(deltas ...string) string {
	body := ""
	for _, d := range deltas {
		chunk := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": d}},
				},
			}},
		}
		out, _ := json.Marshal(chunk)
		body += "data: " + string(out) + "\r\n\r\n"
	}
	return body
}

func newStreamClient(t *testing.T, handler http.HandlerFunc) (*GeminiClient, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)

	client, err := NewGeminiClient(context.Background(), DefaultConfig(), "test-key")
	require.NoError(t, err)
	client.WithBaseURL(srv.URL)
	return client, srv.Close
}

func TestStreamDeliversDeltasInOrder(t *testing.T) {
	var gotReq streamRequest
	client, closeSrv := newStreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultConfig().TextModel+":streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(sseBody("Speaker 1: Hello. ", "Speaker 2: Hi."))) //nolint:errcheck
	})
	defer closeSrv()

	var deltas []string
	err := client.Stream(context.Background(), "a prompt", false, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Speaker 1: Hello. ", "Speaker 2: Hi."}, deltas)

	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "a prompt", gotReq.Contents[0].Parts[0].Text)
	assert.Empty(t, gotReq.Tools, "no tools without search")
}

func TestStreamSearchGrounding(t *testing.T) {
	var gotReq streamRequest
	client, closeSrv := newStreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(sseBody("grounded text"))) //nolint:errcheck
	})
	defer closeSrv()

	err := client.Stream(context.Background(), "latest news", true, func(string) error { return nil })
	require.NoError(t, err)

	require.Len(t, gotReq.Tools, 1)
	assert.NotNil(t, gotReq.Tools[0].GoogleSearch)
}

func TestStreamStopSentinel(t *testing.T) {
	client, closeSrv := newStreamClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sseBody("one", "two", "three"))) //nolint:errcheck
	})
	defer closeSrv()

	var seen int
	err := client.Stream(context.Background(), "p", false, func(string) error {
		seen++
		if seen == 2 {
			return ErrStopStream
		}
		return nil
	})
	assert.NoError(t, err, "stop sentinel is not an error")
	assert.Equal(t, 2, seen)
}

func TestStreamCallbackErrorPropagates(t *testing.T) {
	client, closeSrv := newStreamClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sseBody("one"))) //nolint:errcheck
	})
	defer closeSrv()

	wantErr := fmt.Errorf("consumer gone")
	err := client.Stream(context.Background(), "p", false, func(string) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestStreamAPIError(t *testing.T) {
	client, closeSrv := newStreamClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`)) //nolint:errcheck
	})
	defer closeSrv()

	err := client.Stream(context.Background(), "p", false, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestStreamSkipsChunksWithoutText(t *testing.T) {
	client, closeSrv := newStreamClient(t, func(w http.ResponseWriter, _ *http.Request) {
		body := `data: {"candidates": [{"content": {"parts": []}}]}` + "\r\n\r\n" + sseBody("real delta")
		w.Write([]byte(body)) //nolint:errcheck
	})
	defer closeSrv()

	var deltas []string
	err := client.Stream(context.Background(), "p", false, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"real delta"}, deltas)
}
