// Package types provides type definitions for structured data used throughout the podcast-studio system.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the lifecycle phase of a generation job. Transitions are
// monotonic along the success path; StatusError is terminal from any
// non-terminal state.
type Status string

// Job lifecycle states.
const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusImproving    Status = "improving"
	StatusStreaming    Status = "streaming"
	StatusDone         Status = "done"
	StatusError        Status = "error"
)

// statusRank orders the success path. Error is handled separately.
var statusRank = map[Status]int{
	StatusPending:      0,
	StatusTranscribing: 1,
	StatusImproving:    2,
	StatusStreaming:    3,
	StatusDone:         4,
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether moving from s to next preserves the
// monotonic lifecycle order.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// InputMode distinguishes how the user supplied their idea.
type InputMode string

// Input modes.
const (
	InputText  InputMode = "text"
	InputAudio InputMode = "audio"
)

// Category selects the generation variant.
type Category string

// Job categories.
const (
	CategoryGenerated    Category = "generated"
	CategoryLocalisation Category = "localisation"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	return c == CategoryGenerated || c == CategoryLocalisation
}

// Localisation themes. Anything else normalizes to culture.
const (
	ThemeCulture = "culture"
	ThemeHistory = "history"
	ThemeMusic   = "music"
	ThemeSport   = "sport"
)

// NormalizeTheme maps an arbitrary string onto a supported theme,
// defaulting to culture.
func NormalizeTheme(theme string) string {
	switch theme {
	case ThemeHistory, ThemeMusic, ThemeSport:
		return theme
	default:
		return ThemeCulture
	}
}

// MaxSynthesisSpeakers is the maximum number of distinct voices the speech
// capability supports in one call. VoiceNames is capped at this length.
const MaxSynthesisSpeakers = 2

// Job is the central entity: one user-requested generation task and its
// accumulated state. Mutated only through the store so concurrent readers
// always observe a consistent copy.
type Job struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	InputMode    InputMode `json:"input_mode"`
	RawInput     string    `json:"raw_input"`
	AudioBytesIn []byte    `json:"-"`
	AudioMimeIn  string    `json:"-"`
	// TranscribedAudio caches the transcription of AudioBytesIn so repeated
	// stream requests never re-transcribe.
	TranscribedAudio string `json:"-"`

	UseInternet  bool     `json:"use_internet"`
	SpeakerCount int      `json:"speakers"`
	VoiceGenders []string `json:"voices"`
	VoiceNames   []string `json:"voice_names"`

	Category    Category `json:"category"`
	Theme       string   `json:"theme,omitempty"`
	GeoLocation string   `json:"geo_location,omitempty"`
	Language    string   `json:"language,omitempty"`

	// RunStarted is set exactly once, by the stream request that claims the
	// generation run; later stream requests observe it and never start a
	// second writer for the same job.
	RunStarted bool `json:"-"`

	Transcript string `json:"transcript"`
	Truncated  bool   `json:"truncated"`
	Title      string `json:"title,omitempty"`

	// Audio is the lazily synthesized episode audio, populated at most once.
	Audio     []byte `json:"-"`
	AudioMime string `json:"-"`

	Saved   bool      `json:"saved"`
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// Clone returns a deep copy so readers never share mutable slices with the
// store's record.
func (j *Job) Clone() *Job {
	c := *j
	c.AudioBytesIn = append([]byte(nil), j.AudioBytesIn...)
	c.VoiceGenders = append([]string(nil), j.VoiceGenders...)
	c.VoiceNames = append([]string(nil), j.VoiceNames...)
	c.Audio = append([]byte(nil), j.Audio...)
	return &c
}

// Snapshot is the persisted form of a completed job. It carries exactly the
// fields that survive a process restart; raw upload bytes and synthesized
// audio are deliberately excluded.
type Snapshot struct {
	Status      Status    `json:"status"`
	Title       string    `json:"title"`
	Transcript  string    `json:"transcript"`
	Speakers    int       `json:"speakers"`
	Voices      []string  `json:"voices"`
	UseInternet bool      `json:"use_internet"`
	Saved       bool      `json:"saved"`
	Category    Category  `json:"category"`
	SavedAt     time.Time `json:"saved_at,omitempty"`
	Theme       string    `json:"theme,omitempty"`
	GeoLocation string    `json:"geo_location,omitempty"`
	VoiceNames  []string  `json:"voice_names"`
	Language    string    `json:"language,omitempty"`
	Truncated   bool      `json:"truncated"`
}

// ToSnapshot projects the persistable fields of a job.
func (j *Job) ToSnapshot() *Snapshot {
	return &Snapshot{
		Status:      j.Status,
		Title:       j.Title,
		Transcript:  j.Transcript,
		Speakers:    j.SpeakerCount,
		Voices:      append([]string(nil), j.VoiceGenders...),
		UseInternet: j.UseInternet,
		Saved:       j.Saved,
		Category:    j.Category,
		SavedAt:     j.SavedAt,
		Theme:       j.Theme,
		GeoLocation: j.GeoLocation,
		VoiceNames:  append([]string(nil), j.VoiceNames...),
		Language:    j.Language,
		Truncated:   j.Truncated,
	}
}

// JobFromSnapshot reconstructs an in-memory job from its persisted snapshot.
func JobFromSnapshot(id string, s *Snapshot) *Job {
	return &Job{
		ID:           id,
		Status:       s.Status,
		InputMode:    InputText,
		UseInternet:  s.UseInternet,
		SpeakerCount: s.Speakers,
		VoiceGenders: append([]string(nil), s.Voices...),
		VoiceNames:   append([]string(nil), s.VoiceNames...),
		Category:     s.Category,
		Theme:        s.Theme,
		GeoLocation:  s.GeoLocation,
		Language:     s.Language,
		Transcript:   s.Transcript,
		Truncated:    s.Truncated,
		Title:        s.Title,
		Saved:        s.Saved,
		SavedAt:      s.SavedAt,
	}
}

// CreateJobRequest represents the parsed form fields of a job creation
// request. Field presence beyond tag validation (empty text, missing audio)
// is checked at the handler boundary.
type CreateJobRequest struct {
	PromptMode  string   `json:"prompt_mode" validate:"required,oneof=text audio"`
	Text        string   `json:"text"`
	UseInternet bool     `json:"use_internet"`
	Speakers    int      `json:"speakers" validate:"omitempty,min=1"`
	Voices      []string `json:"voices"`
	Category    string   `json:"category" validate:"omitempty,oneof=generated localisation"`
	Theme       string   `json:"theme"`
	GeoLocation string   `json:"geo_location"`
	Language    string   `json:"language"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
