// Package synthesis turns a finished transcript into playable audio on
// demand. Results are cached on the job record so each job is synthesized
// at most once, and any speech-backend failure degrades to a locally
// rendered placeholder rather than an error.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/podcast-studio/internal/audio"
	"github.com/jonathan/podcast-studio/internal/store"
	"github.com/jonathan/podcast-studio/internal/tts"
	"github.com/jonathan/podcast-studio/internal/types"
)

// ErrNotFound is returned when the job id is unknown.
var ErrNotFound = errors.New("job not found")

// ErrNotReady is returned when the transcript has not finished generating.
var ErrNotReady = errors.New("transcript not ready")

// speechSampleRate is the PCM rate the speech backend emits when it
// returns raw samples instead of a recognizable container.
const speechSampleRate = 24000

// Result is one synthesized audio payload.
type Result struct {
	Data     []byte
	MimeType string
}

// Stage coordinates on-demand audio synthesis for completed jobs.
type Stage struct {
	store *store.Store
	tts   tts.Synthesizer
	group singleflight.Group
}

// New creates a synthesis stage over the given store and speech backend.
func New(st *store.Store, synth tts.Synthesizer) *Stage {
	return &Stage{store: st, tts: synth}
}

// Audio returns the audio for jobID, synthesizing and caching it on first
// request. Concurrent requests for the same job share a single synthesis
// call. The job must be done; earlier statuses return ErrNotReady.
func (s *Stage) Audio(ctx context.Context, jobID string) (Result, error) {
	job, ok := s.store.Get(jobID)
	if !ok {
		return Result{}, ErrNotFound
	}
	if job.Status != types.StatusDone {
		return Result{}, fmt.Errorf("%w: job %s is %s", ErrNotReady, jobID, job.Status)
	}
	if len(job.Audio) > 0 {
		return Result{Data: job.Audio, MimeType: job.AudioMime}, nil
	}

	v, err, _ := s.group.Do(jobID, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// already populated the cache before we were admitted.
		if cached, ok := s.store.Get(jobID); ok && len(cached.Audio) > 0 {
			return Result{Data: cached.Audio, MimeType: cached.AudioMime}, nil
		}
		res := s.synthesize(ctx, job)
		s.store.Update(jobID, func(j *types.Job) {
			j.Audio = res.Data
			j.AudioMime = res.MimeType
		})
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// synthesize calls the speech backend and normalizes the payload into a
// servable container. Any failure falls back to the tone renderer, which
// cannot fail, so the returned result is always playable.
func (s *Stage) synthesize(ctx context.Context, job *types.Job) Result {
	data, mimeType, err := s.tts.Synthesize(ctx, job.Transcript, job.VoiceNames)
	if err != nil {
		log.Printf("Warning: speech synthesis failed for job %s, using tone fallback: %v", job.ID, err)
		return s.fallback(job)
	}
	if len(data) == 0 {
		log.Printf("Warning: speech synthesis returned no audio for job %s, using tone fallback", job.ID)
		return s.fallback(job)
	}

	if detected := audio.DetectContainer(data); detected != "" {
		return Result{Data: data, MimeType: detected}
	}
	// Raw PCM16 samples; wrap them so clients get a playable file.
	return Result{Data: audio.WrapPCM(data, pcmRate(mimeType)), MimeType: audio.MimeWAV}
}

// pcmRate extracts the sample rate from a raw-PCM mime type such as
// "audio/L16;codec=pcm;rate=24000", defaulting to the backend's usual rate.
func pcmRate(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(param), "rate="); ok {
			if rate, err := strconv.Atoi(rest); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return speechSampleRate
}

func (s *Stage) fallback(job *types.Job) Result {
	return Result{
		Data:     audio.EncodeTones(job.Transcript, job.VoiceGenders),
		MimeType: audio.MimeWAV,
	}
}
