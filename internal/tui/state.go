package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/boomarks/internal/tui/layout"
)

// SearchState holds the search input and the term currently applied.
type SearchState struct {
	Input textinput.Model
	Term  string // applied term; trails Input while the debouncer waits
}

// NewSearchState creates a new SearchState with initialized input.
func NewSearchState(cfg layout.LayoutConfig) SearchState {
	input := textinput.New()
	input.Placeholder = "title, url or #tag"
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Width = cfg.Input.SearchWidth
	return SearchState{Input: input}
}

// Reset clears the input and the applied term.
func (s *SearchState) Reset() {
	s.Input.Reset()
	s.Term = ""
}

// Set fills the input and applies term at once.
func (s *SearchState) Set(term string) {
	s.Input.SetValue(term)
	s.Term = term
}

// FormState holds the inputs of the add bookmark modal.
type FormState struct {
	URLInput   textinput.Model
	TitleInput textinput.Model
	TagsInput  textinput.Model
	Focus      int // index into inputs()
}

// NewFormState creates a new FormState with initialized inputs.
func NewFormState(cfg layout.LayoutConfig) FormState {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://..."
	urlInput.CharLimit = cfg.Input.URLCharLimit
	urlInput.Width = cfg.Input.StandardWidth

	titleInput := textinput.New()
	titleInput.Placeholder = "Title (optional)"
	titleInput.CharLimit = cfg.Input.TitleCharLimit
	titleInput.Width = cfg.Input.StandardWidth

	tagsInput := textinput.New()
	tagsInput.Placeholder = "tag1, tag2, tag3"
	tagsInput.CharLimit = cfg.Input.TagsCharLimit
	tagsInput.Width = cfg.Input.StandardWidth

	return FormState{
		URLInput:   urlInput,
		TitleInput: titleInput,
		TagsInput:  tagsInput,
	}
}

func (f *FormState) inputs() []*textinput.Model {
	return []*textinput.Model{&f.URLInput, &f.TitleInput, &f.TagsInput}
}

// FocusNext moves focus to the next input, wrapping around.
func (f *FormState) FocusNext() {
	inputs := f.inputs()
	inputs[f.Focus].Blur()
	f.Focus = (f.Focus + 1) % len(inputs)
	inputs[f.Focus].Focus()
}

// Focused returns the input that receives key presses.
func (f *FormState) Focused() *textinput.Model {
	return f.inputs()[f.Focus]
}

// Open prepares the form for a new bookmark, keeping pre-filled values.
func (f *FormState) Open() {
	for _, in := range f.inputs() {
		in.Blur()
	}
	f.Focus = 0
	if f.URLInput.Value() != "" {
		f.Focus = 1
	}
	f.inputs()[f.Focus].Focus()
}

// Reset clears all inputs.
func (f *FormState) Reset() {
	for _, in := range f.inputs() {
		in.Reset()
		in.Blur()
	}
	f.Focus = 0
}

// UserState holds the handle input used to view another user.
type UserState struct {
	Input textinput.Model
}

// NewUserState creates a new UserState with initialized input.
func NewUserState(cfg layout.LayoutConfig) UserState {
	input := textinput.New()
	input.Placeholder = "alice.bsky.social (empty: your own)"
	input.CharLimit = cfg.Input.HandleCharLimit
	input.Width = cfg.Input.StandardWidth
	return UserState{Input: input}
}

// Reset clears the handle input.
func (u *UserState) Reset() {
	u.Input.Reset()
	u.Input.Blur()
}
