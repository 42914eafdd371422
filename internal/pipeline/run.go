// Package pipeline drives one generation job from pending input to a
// finished transcript, publishing typed progress events and mutating the
// job record in the store as the single source of truth.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/podcast-studio/internal/llm"
	"github.com/jonathan/podcast-studio/internal/store"
	"github.com/jonathan/podcast-studio/internal/types"
)

// ErrJobNotFound is returned when a run targets an unknown job id.
var ErrJobNotFound = errors.New("job not found")

// Pipeline owns the generation state machine. One Run drives one job;
// runs never share a job id, so the pipeline is the job's only writer
// while streaming is active.
type Pipeline struct {
	store *store.Store
	llm   llm.Client
}

// New creates a pipeline over the given store and text-generation client.
func New(st *store.Store, client llm.Client) *Pipeline {
	return &Pipeline{store: st, llm: client}
}

// Run executes the full generation flow for jobID, delivering events via
// emit. It emits at most one terminal done/error event and returns after
// the first terminal condition. Consumer disconnects (emit errors or ctx
// cancellation) stop the run at the next suspension point without marking
// the job failed.
func (p *Pipeline) Run(ctx context.Context, jobID string, emit EmitFunc) error {
	job, ok := p.store.Get(jobID)
	if !ok {
		return ErrJobNotFound
	}

	// Step 1: resolve raw input, transcribing lazily for audio jobs.
	rawInput := p.resolveRawInput(ctx, job)
	if job.Category == types.CategoryLocalisation && strings.TrimSpace(rawInput) == "" {
		rawInput = localisationSeed(job.Theme, job.GeoLocation)
	}

	// Steps 2-3: deterministic instruction derivation.
	parts := []string{improvementInstruction, speakerInstructions(job.SpeakerCount, job.VoiceGenders)}
	if job.Category == types.CategoryLocalisation {
		parts = append(parts, localisationInstruction(job.Theme, job.GeoLocation))
	}
	if job.Language != "" && !MentionsLanguage(rawInput) {
		parts = append(parts, languageInstruction(job.Language))
	}
	parts = append(parts, rawInput)

	// Step 4: improve the prompt.
	p.setStatus(jobID, types.StatusImproving)
	improved, err := p.llm.Complete(ctx, parts...)
	if err != nil {
		return p.fail(ctx, jobID, emit, fmt.Errorf("prompt improvement failed: %w", err))
	}
	if err := emit(Event{Type: EventMeta, Data: MetaPayload{ImprovedPrompt: improved}}); err != nil {
		return p.consumerGone(jobID, err)
	}

	// Step 5: stream the transcript under the word budget.
	p.setStatus(jobID, types.StatusStreaming)
	full, truncated, err := p.streamTranscript(ctx, jobID, improved, job.UseInternet, emit)
	if err != nil {
		if isConsumerGone(ctx, err) {
			return p.consumerGone(jobID, err)
		}
		return p.fail(ctx, jobID, emit, fmt.Errorf("transcript generation failed: %w", err))
	}

	// Step 6: synthesize the title.
	title, err := p.llm.Complete(ctx, titlePrompt(job.Category, job.Theme, job.GeoLocation, full))
	if err != nil {
		return p.fail(ctx, jobID, emit, fmt.Errorf("title generation failed: %w", err))
	}
	title = cleanTitle(title)

	// Step 7: finalize and persist.
	p.store.Update(jobID, func(j *types.Job) {
		j.Title = title
		if j.Status.CanTransition(types.StatusDone) {
			j.Status = types.StatusDone
		}
	})
	p.store.Persist(jobID)

	if err := emit(Event{Type: EventDone, Data: DonePayload{Title: title, Full: full, Truncated: truncated}}); err != nil {
		return p.consumerGone(jobID, err)
	}
	return nil
}

// resolveRawInput returns the text the improvement step should work from.
// Audio inputs are transcribed at most once; transcription failures degrade
// to a fixed fallback sentence instead of failing the job.
func (p *Pipeline) resolveRawInput(ctx context.Context, job *types.Job) string {
	if job.InputMode != types.InputAudio {
		return job.RawInput
	}
	if job.TranscribedAudio != "" {
		return job.TranscribedAudio
	}
	if len(job.AudioBytesIn) == 0 {
		return job.RawInput
	}

	p.setStatus(job.ID, types.StatusTranscribing)
	text, err := p.llm.Transcribe(ctx, job.AudioBytesIn, job.AudioMimeIn, transcriptionInstruction)
	if err != nil {
		log.Printf("Warning: audio transcription failed for job %s: %v", job.ID, err)
		return failedTranscriptFallback
	}
	if text == "" {
		return emptyTranscriptFallback
	}
	p.store.Update(job.ID, func(j *types.Job) {
		j.TranscribedAudio = text
	})
	return text
}

// streamTranscript consumes the streaming generation call, persisting the
// accumulator per delta and enforcing the word budget. Once the budget is
// hit the transcript is frozen at exactly MaxTranscriptWords words and the
// upstream stream is no longer consumed.
func (p *Pipeline) streamTranscript(ctx context.Context, jobID, prompt string, useInternet bool, emit EmitFunc) (string, bool, error) {
	var full string
	truncated := false

	err := p.llm.Stream(ctx, prompt, useInternet, func(delta string) error {
		candidate := full + delta
		if countWords(candidate) > MaxTranscriptWords {
			full = truncateWords(candidate, MaxTranscriptWords)
			truncated = true
			p.store.Update(jobID, func(j *types.Job) {
				j.Transcript = full
				j.Truncated = true
			})
			if err := emit(Event{Type: EventChunk, Data: ChunkPayload{Full: full, Truncated: true}}); err != nil {
				return err
			}
			return llm.ErrStopStream
		}

		full = candidate
		p.store.Update(jobID, func(j *types.Job) {
			j.Transcript = full
		})
		return emit(Event{Type: EventChunk, Data: ChunkPayload{Delta: delta, Full: full}})
	})
	if err != nil {
		return full, truncated, err
	}
	return full, truncated, nil
}

// setStatus advances the job status, respecting the monotonic lifecycle.
func (p *Pipeline) setStatus(jobID string, next types.Status) {
	p.store.Update(jobID, func(j *types.Job) {
		if j.Status.CanTransition(next) {
			j.Status = next
		}
	})
}

// fail marks the job failed and emits the terminal error event. The partial
// transcript already written to the record is retained for inspection.
func (p *Pipeline) fail(ctx context.Context, jobID string, emit EmitFunc, cause error) error {
	if isConsumerGone(ctx, cause) {
		return p.consumerGone(jobID, cause)
	}
	p.setStatus(jobID, types.StatusError)
	log.Printf("Job %s failed: %v", jobID, cause)
	if err := emit(Event{Type: EventError, Data: ErrorPayload{Message: cause.Error()}}); err != nil {
		log.Printf("Job %s: could not deliver error event: %v", jobID, err)
	}
	return cause
}

// consumerGone handles a disconnected stream consumer: stop work, keep the
// job in whatever status it last reached.
func (p *Pipeline) consumerGone(jobID string, cause error) error {
	log.Printf("Job %s: stream consumer gone, stopping run: %v", jobID, cause)
	return nil
}

func isConsumerGone(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
