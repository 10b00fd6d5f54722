package domain

import "time"

// SessionStatus tells whether an action currently owns the session.
type SessionStatus string

const (
	SessionIdle    SessionStatus = "idle"
	SessionWorking SessionStatus = "working"
)

// Stage names the step an in-flight action is executing.
type Stage string

const (
	StageIngesting Stage = "ingesting"
	StageThinking  Stage = "thinking"
	StageSearching Stage = "searching"
	StageFetching  Stage = "fetching_product"
	StageRendering Stage = "rendering"
)

// Session aggregates everything one user works with: the prompt, the
// append-only image history with its active index, the latest search
// results, and the action/progress flags. A session is mutated only by the
// single action that holds it and is discarded on delete or expiry.
type Session struct {
	ID            string
	Prompt        string
	History       []ImageObject
	ActiveIndex   int
	Results       []ProductListing
	Status        SessionStatus
	Stage         Stage
	StatusMessage string
	LastError     string
	Locale        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSession returns an empty idle session.
func NewSession(id, locale string, now time.Time) *Session {
	return &Session{
		ID:          id,
		ActiveIndex: -1,
		Status:      SessionIdle,
		Locale:      locale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ActiveImage returns the currently selected history entry.
func (s *Session) ActiveImage() (ImageObject, bool) {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.History) {
		return ImageObject{}, false
	}
	return s.History[s.ActiveIndex], true
}

// AppendImage adds a generated result to the history and makes it active.
func (s *Session) AppendImage(img ImageObject) {
	s.History = append(s.History, img)
	s.ActiveIndex = len(s.History) - 1
}

// ReplaceImage starts the history over with a single new base image, as on
// upload or example selection. Results and the error banner are cleared; the
// prompt survives so the user can re-run it against the new photo.
func (s *Session) ReplaceImage(img ImageObject) {
	s.History = []ImageObject{img}
	s.ActiveIndex = 0
	s.Results = nil
	s.LastError = ""
}

// SelectImage moves the active index to an existing history entry.
func (s *Session) SelectImage(index int) error {
	if index < 0 || index >= len(s.History) {
		return ErrInvalidIndex
	}
	s.ActiveIndex = index
	return nil
}

// Reset returns the session to its initial empty state.
func (s *Session) Reset() {
	s.Prompt = ""
	s.History = nil
	s.ActiveIndex = -1
	s.Results = nil
	s.StatusMessage = ""
	s.LastError = ""
}

// Clone returns a deep copy safe to serialize outside the store lock.
func (s *Session) Clone() *Session {
	dup := *s
	dup.History = append([]ImageObject(nil), s.History...)
	dup.Results = append([]ProductListing(nil), s.Results...)
	return &dup
}
