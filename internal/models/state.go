package models

// StateVersion is the current AppState schema tag.
const StateVersion = 1

// AppState is the persisted navigation state: note order and selection.
// It is overwritten wholesale on every save.
type AppState struct {
	NoteIDs      []string `json:"noteIds"`
	CurrentIndex int      `json:"currentIndex"`
	Version      int      `json:"version"`
}

// DefaultAppState returns the state used on first launch or when the
// state file cannot be read.
func DefaultAppState() AppState {
	return AppState{
		NoteIDs:      []string{},
		CurrentIndex: 0,
		Version:      StateVersion,
	}
}

// Normalize clamps CurrentIndex into [0, len(NoteIDs)) when there are ids
// and fills in a missing version tag.
func (s *AppState) Normalize() {
	if s.NoteIDs == nil {
		s.NoteIDs = []string{}
	}
	if s.Version == 0 {
		s.Version = StateVersion
	}
	if len(s.NoteIDs) == 0 {
		s.CurrentIndex = 0
		return
	}
	if s.CurrentIndex < 0 {
		s.CurrentIndex = 0
	}
	if s.CurrentIndex > len(s.NoteIDs)-1 {
		s.CurrentIndex = len(s.NoteIDs) - 1
	}
}
