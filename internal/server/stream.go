package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/podcast-studio/internal/pipeline"
	"github.com/jonathan/podcast-studio/internal/types"
)

// handleStream runs the generation pipeline for a pending job, delivering
// progress as Server-Sent Events. For a job that already finished it replays
// the terminal event so reconnecting clients converge on the same state.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	job, ok := s.store.Get(id)
	if !ok {
		s.respondError(w, &ErrJobNotFound{JobID: id})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Claim the run atomically so concurrent stream requests on the same
	// pending job never start two writers.
	var claimed bool
	job, _ = s.store.Update(id, func(j *types.Job) {
		if j.Status == types.StatusPending && !j.RunStarted {
			j.RunStarted = true
			claimed = true
		}
	})
	if !claimed {
		switch job.Status {
		case types.StatusDone:
			sse.WriteEvent(pipeline.EventDone, pipeline.DonePayload{ //nolint:errcheck
				Title:     job.Title,
				Full:      job.Transcript,
				Truncated: job.Truncated,
			})
		case types.StatusError:
			sse.WriteError("generation previously failed")
		default:
			sse.WriteError("generation already in progress")
		}
		return
	}

	emit := func(ev pipeline.Event) error {
		if err := r.Context().Err(); err != nil {
			return err
		}
		return sse.WriteEvent(ev.Type, ev.Data)
	}

	if err := s.pipeline.Run(r.Context(), id, emit); err != nil {
		if errors.Is(err, pipeline.ErrJobNotFound) {
			sse.WriteError("job not found")
			return
		}
		// Terminal error event was already emitted by the run.
		log.Printf("Stream for job %s ended with error: %v", id, err)
	}
}
