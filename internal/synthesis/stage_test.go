package synthesis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/podcast-studio/internal/audio"
	"github.com/jonathan/podcast-studio/internal/store"
	"github.com/jonathan/podcast-studio/internal/types"
)

// fakeSynth counts calls and returns a scripted payload.
type fakeSynth struct {
	calls    atomic.Int32
	data     []byte
	mimeType string
	err      error
}

func (f *fakeSynth) Synthesize(context.Context, string, []string) ([]byte, string, error) {
	f.calls.Add(1)
	return f.data, f.mimeType, f.err
}

func doneJob(id string) *types.Job {
	return &types.Job{
		ID:           id,
		Status:       types.StatusDone,
		SpeakerCount: 2,
		VoiceGenders: []string{"F", "M"},
		VoiceNames:   []string{"Kore", "Puck"},
		Transcript:   "Speaker 1: Hi.\nSpeaker 2: Hello.",
	}
}

func TestAudioWrapsRawPCM(t *testing.T) {
	st := store.New(nil)
	st.Create(doneJob("j1"))
	fake := &fakeSynth{data: []byte{1, 2, 3, 4}, mimeType: "audio/L16;codec=pcm;rate=24000"}

	res, err := New(st, fake).Audio(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, audio.MimeWAV, res.MimeType)
	assert.Equal(t, audio.MimeWAV, audio.DetectContainer(res.Data))
	assert.Len(t, res.Data, 44+4)
}

func TestAudioPassesThroughContainers(t *testing.T) {
	st := store.New(nil)
	st.Create(doneJob("j1"))
	wav := audio.WrapPCM([]byte{0, 0}, 24000)
	fake := &fakeSynth{data: wav, mimeType: "audio/wav"}

	res, err := New(st, fake).Audio(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, wav, res.Data)
	assert.Equal(t, audio.MimeWAV, res.MimeType)
}

func TestAudioSynthesizesAtMostOnce(t *testing.T) {
	st := store.New(nil)
	st.Create(doneJob("j1"))
	fake := &fakeSynth{data: []byte{1, 2}, mimeType: "audio/L16;rate=24000"}
	stage := New(st, fake)

	first, err := stage.Audio(context.Background(), "j1")
	require.NoError(t, err)
	second, err := stage.Audio(context.Background(), "j1")
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestAudioConcurrentRequestsShareOneCall(t *testing.T) {
	st := store.New(nil)
	st.Create(doneJob("j1"))
	fake := &fakeSynth{data: []byte{1, 2}, mimeType: "audio/L16;rate=24000"}
	stage := New(st, fake)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stage.Audio(context.Background(), "j1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestAudioFallsBackToTones(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeSynth
	}{
		{"backend error", &fakeSynth{err: fmt.Errorf("quota exceeded")}},
		{"empty payload", &fakeSynth{data: nil, mimeType: "audio/wav"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New(nil)
			st.Create(doneJob("j1"))

			res, err := New(st, tt.fake).Audio(context.Background(), "j1")
			require.NoError(t, err)
			assert.Equal(t, audio.MimeWAV, res.MimeType)
			assert.Equal(t, audio.MimeWAV, audio.DetectContainer(res.Data))
			assert.Greater(t, len(res.Data), 44)
		})
	}
}

func TestAudioFallbackIsCached(t *testing.T) {
	st := store.New(nil)
	st.Create(doneJob("j1"))
	fake := &fakeSynth{err: fmt.Errorf("down")}
	stage := New(st, fake)

	_, err := stage.Audio(context.Background(), "j1")
	require.NoError(t, err)
	_, err = stage.Audio(context.Background(), "j1")
	require.NoError(t, err)

	// The failing backend is not retried once the fallback is cached.
	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestAudioNotReadyBeforeDone(t *testing.T) {
	st := store.New(nil)
	job := doneJob("j1")
	job.Status = types.StatusStreaming
	st.Create(job)
	fake := &fakeSynth{}

	_, err := New(st, fake).Audio(context.Background(), "j1")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, int32(0), fake.calls.Load())
}

func TestAudioUnknownJob(t *testing.T) {
	st := store.New(nil)
	_, err := New(st, &fakeSynth{}).Audio(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPCMRate(t *testing.T) {
	assert.Equal(t, 24000, pcmRate("audio/L16;codec=pcm;rate=24000"))
	assert.Equal(t, 16000, pcmRate("audio/L16; rate=16000"))
	assert.Equal(t, speechSampleRate, pcmRate("audio/L16"))
	assert.Equal(t, speechSampleRate, pcmRate(""))
	assert.Equal(t, speechSampleRate, pcmRate("audio/L16;rate=abc"))
}
