package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/podcast-studio/internal/synthesis"
	"github.com/jonathan/podcast-studio/internal/types"
	"github.com/jonathan/podcast-studio/internal/voices"
)

// maxUploadBytes bounds the multipart form, dominated by the audio upload.
const maxUploadBytes = 32 << 20

// GenerateResponse represents the response for /api/generate
type GenerateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// StatusResponse represents one entry of /api/status
type StatusResponse struct {
	Status   string   `json:"status"`
	Title    string   `json:"title"`
	Length   int      `json:"length"`
	Speakers int      `json:"speakers"`
	Voices   []string `json:"voices"`
}

// SavedResponse represents one entry of /api/saved
type SavedResponse struct {
	JobID       string    `json:"job_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Theme       string    `json:"theme,omitempty"`
	GeoLocation string    `json:"geo_location,omitempty"`
	Speakers    int       `json:"speakers"`
	SavedAt     time.Time `json:"saved_at"`
}

// handleGenerate registers a new generation job from a multipart form.
// Generation itself is deferred until the client opens the event stream.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, &ErrInvalidInput{Field: "form", Message: "could not parse multipart form: " + err.Error()})
		return
	}

	req := types.CreateJobRequest{
		PromptMode:  strings.TrimSpace(r.FormValue("prompt_mode")),
		Text:        r.FormValue("text"),
		UseInternet: parseFormBool(r.FormValue("use_internet")),
		Speakers:    parseFormInt(r.FormValue("speakers"), 1),
		Voices:      parseGenderList(r.FormValue("voices")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Theme:       strings.TrimSpace(r.FormValue("theme")),
		GeoLocation: strings.TrimSpace(r.FormValue("geo_location")),
		Language:    strings.TrimSpace(r.FormValue("language")),
	}
	if req.PromptMode == "" {
		req.PromptMode = string(types.InputText)
	}
	if req.Category == "" {
		req.Category = string(types.CategoryGenerated)
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, &ErrInvalidInput{Field: "form", Message: err.Error()})
		return
	}

	job := &types.Job{
		ID:           uuid.New().String(),
		Status:       types.StatusPending,
		CreatedAt:    time.Now(),
		InputMode:    types.InputMode(req.PromptMode),
		RawInput:     req.Text,
		UseInternet:  req.UseInternet,
		SpeakerCount: req.Speakers,
		VoiceGenders: req.Voices,
		Category:     types.Category(req.Category),
		GeoLocation:  req.GeoLocation,
		Language:     req.Language,
	}
	if job.Category == types.CategoryLocalisation {
		job.Theme = types.NormalizeTheme(req.Theme)
		// Localisation episodes are single-host local guide segments.
		job.SpeakerCount = 1
		if len(job.VoiceGenders) > 1 {
			job.VoiceGenders = job.VoiceGenders[:1]
		}
	}

	switch job.InputMode {
	case types.InputText:
		if strings.TrimSpace(job.RawInput) == "" {
			// A localisation job with a location can seed its own prompt.
			if !(job.Category == types.CategoryLocalisation && job.GeoLocation != "") {
				s.respondError(w, &ErrInvalidInput{Field: "text", Message: "text is required in text mode"})
				return
			}
		}
	case types.InputAudio:
		file, header, err := r.FormFile("audio_file")
		if err != nil {
			s.respondError(w, &ErrInvalidInput{Field: "audio_file", Message: "audio_file is required in audio mode"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			s.respondError(w, &ErrInvalidInput{Field: "audio_file", Message: "could not read audio upload"})
			return
		}
		job.AudioBytesIn = data
		job.AudioMimeIn = header.Header.Get("Content-Type")
	}

	// Voices are drawn once here and stay with the job for its lifetime.
	job.VoiceNames = voices.Assign(job.VoiceGenders, job.SpeakerCount, voices.RandomPick)

	s.store.Create(job)
	log.Printf("Created job %s (mode=%s category=%s speakers=%d)", job.ID, job.InputMode, job.Category, job.SpeakerCount)

	s.jsonResponse(w, http.StatusAccepted, GenerateResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

// handleStatus returns a summary for a single job
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	job, ok := s.store.Get(id)
	if !ok {
		s.respondError(w, &ErrJobNotFound{JobID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, statusSummary(job))
}

// handleStatusAll returns summaries for every known job
func (s *Server) handleStatusAll(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]StatusResponse)
	for _, job := range s.store.List() {
		out[job.ID] = statusSummary(job)
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleGetJob returns the full job record
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	job, ok := s.store.Get(id)
	if !ok {
		s.respondError(w, &ErrJobNotFound{JobID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob removes the job from memory. Persisted snapshots survive.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	if !s.store.Delete(id) {
		s.respondError(w, &ErrJobNotFound{JobID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleAudio serves the synthesized episode audio, producing it on first
// request.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	res, err := s.audioFor(r, id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		log.Printf("Error writing audio response for job %s: %v", id, err)
	}
}

// handleSave marks a finished job as saved, synthesizing its audio eagerly
// and persisting the snapshot.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	job, ok := s.store.Get(id)
	if !ok {
		s.respondError(w, &ErrJobNotFound{JobID: id})
		return
	}
	if job.Status != types.StatusDone {
		s.respondError(w, &ErrNotReady{JobID: id, Status: string(job.Status)})
		return
	}

	category := job.Category
	if v := strings.TrimSpace(r.FormValue("category")); v != "" {
		category = types.Category(v)
	}
	if !types.ValidCategory(category) {
		s.respondError(w, &ErrInvalidInput{Field: "category", Message: "unknown category: " + string(category)})
		return
	}

	// Synthesize up front so a saved episode always has playable audio.
	if _, err := s.audioFor(r, id); err != nil {
		s.respondError(w, err)
		return
	}

	s.store.Update(id, func(j *types.Job) {
		j.Saved = true
		j.SavedAt = time.Now()
		j.Category = category
	})
	s.store.Persist(id)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"saved":    true,
		"category": string(category),
	})
}

// handleListSaved lists saved jobs, most recently saved first.
func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	category := types.Category(strings.TrimSpace(r.URL.Query().Get("category")))
	if category != "" && !types.ValidCategory(category) {
		s.respondError(w, &ErrInvalidInput{Field: "category", Message: "unknown category: " + string(category)})
		return
	}

	out := make([]SavedResponse, 0)
	for _, job := range s.store.ListSaved(category) {
		out = append(out, SavedResponse{
			JobID:       job.ID,
			Title:       job.Title,
			Category:    string(job.Category),
			Theme:       job.Theme,
			GeoLocation: job.GeoLocation,
			Speakers:    job.SpeakerCount,
			SavedAt:     job.SavedAt,
		})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleUnsave clears the saved flag and category and removes the persisted
// snapshot. A save-time category override does not outlive the save.
func (s *Server) handleUnsave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")
	_, ok := s.store.Update(id, func(j *types.Job) {
		j.Saved = false
		j.SavedAt = time.Time{}
		j.Category = types.CategoryGenerated
	})
	if !ok {
		s.respondError(w, &ErrJobNotFound{JobID: id})
		return
	}
	s.store.RemoveSnapshot(id)
	s.jsonResponse(w, http.StatusOK, map[string]bool{"unsaved": true})
}

// audioFor fetches or synthesizes the job's audio, translating stage errors
// into the handler error taxonomy.
func (s *Server) audioFor(r *http.Request, id string) (synthesis.Result, error) {
	res, err := s.synthesis.Audio(r.Context(), id)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, synthesis.ErrNotFound):
		return synthesis.Result{}, &ErrJobNotFound{JobID: id}
	case errors.Is(err, synthesis.ErrNotReady):
		status := ""
		if job, ok := s.store.Get(id); ok {
			status = string(job.Status)
		}
		return synthesis.Result{}, &ErrNotReady{JobID: id, Status: status}
	default:
		return synthesis.Result{}, &ErrUpstream{Op: "speech synthesis", Cause: err}
	}
}

func statusSummary(job *types.Job) StatusResponse {
	return StatusResponse{
		Status:   string(job.Status),
		Title:    job.Title,
		Length:   len(job.Transcript),
		Speakers: job.SpeakerCount,
		Voices:   job.VoiceGenders,
	}
}

func parseFormBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func parseFormInt(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseGenderList splits the comma-separated voices field ("F,M") into
// normalized gender codes.
func parseGenderList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
