package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/boomarks/internal/picker"
	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/search"
	"github.com/nikbrunner/boomarks/internal/session"
	"github.com/nikbrunner/boomarks/internal/tui/layout"
)

// Mode is the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeViewUser
	ModeAdd
	ModeConfirmDelete
	ModeHelp
)

// MessageType selects how the message line is styled.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageError
)

// App is the main bubbletea model. It renders the session's view-model
// and turns key presses into session operations.
type App struct {
	sess         *session.AppSession
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode    Mode
	filter  SearchState
	user    UserState
	form    FormState
	pending Item // bookmark awaiting delete confirmation

	view   render.View
	items  []Item
	cursor int

	// For gg command
	lastKeyWasG bool

	debouncer   *search.Debouncer[string]
	ctx         context.Context
	timeout     time.Duration
	now         func() time.Time
	openURL     func(string) error
	copyURL     func(string) error
	initialUser string

	loading     bool
	messageText string
	messageType MessageType

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Session      *session.AppSession
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil

	Context  context.Context // parent of every remote call
	Timeout  time.Duration   // per remote call, 0 for none
	Debounce time.Duration   // search debounce, 0 for search.DefaultDelay

	User         string // handle to view instead of the signed-in user
	Search       string // initial search term
	PrefillURL   string // opens the add modal with these values
	PrefillTitle string

	Now     func() time.Time
	OpenURL func(string) error // defaults to picker.OpenURL
	CopyURL func(string) error // defaults to the system clipboard
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	openURL := params.OpenURL
	if openURL == nil {
		openURL = picker.OpenURL
	}
	copyURL := params.CopyURL
	if copyURL == nil {
		copyURL = writeClipboard
	}

	app := App{
		sess:         params.Session,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutCfg,
		filter:       NewSearchState(layoutCfg),
		user:         NewUserState(layoutCfg),
		form:         NewFormState(layoutCfg),
		debouncer:    search.NewDebouncer[string](params.Debounce),
		ctx:          ctx,
		timeout:      params.Timeout,
		now:          now,
		openURL:      openURL,
		copyURL:      copyURL,
		initialUser:  params.User,
		width:        80,
		height:       24,
	}

	app.loading = params.User != "" || params.Session.AuthState() == session.Authenticated
	if params.Search != "" {
		app.filter.Set(params.Search)
	}

	if params.PrefillURL != "" || params.PrefillTitle != "" {
		if params.Session.Writable() {
			app.form.URLInput.SetValue(params.PrefillURL)
			app.form.TitleInput.SetValue(params.PrefillTitle)
			app.form.Open()
			app.mode = ModeAdd
		} else {
			app.setMessage(MessageError, session.Notice(session.ErrReadOnly))
		}
	}

	app.refresh()
	return app
}

// refresh rebuilds the rendered view from the session.
func (a *App) refresh() {
	a.view = a.sess.Render(a.now(), a.filter.Term)
	a.items = visibleItems(a.view)
	if a.cursor >= len(a.items) {
		a.cursor = len(a.items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Items returns the visible bookmarks in display order.
func (a App) Items() []Item {
	return a.items
}

// SearchTerm returns the applied search term.
func (a App) SearchTerm() string {
	return a.filter.Term
}

// Message returns the message line text.
func (a App) Message() string {
	return a.messageText
}

// Loading reports whether a load is in flight.
func (a App) Loading() bool {
	return a.loading
}

// WithDimensions returns a copy of the App sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

func (a App) selected() (Item, bool) {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return Item{}, false
	}
	return a.items[a.cursor], true
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageText = ""
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForSearch()}
	switch {
	case a.initialUser != "":
		cmds = append(cmds, a.viewUserCmd(a.initialUser))
	case a.sess.AuthState() == session.Authenticated:
		cmds = append(cmds, a.loadSelfCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loadedMsg:
		if errors.Is(msg.err, session.ErrStale) {
			// A newer load is still running.
			return a, nil
		}
		a.loading = false
		a.cursor = 0
		a.refresh()
		if msg.err != nil {
			a.setMessage(MessageError, session.Notice(msg.err))
		} else {
			a.clearMessage()
		}
		return a, nil

	case createdMsg:
		a.refresh()
		if msg.err != nil {
			a.setMessage(MessageError, session.Notice(msg.err))
			return a, nil
		}
		a.setMessage(MessageSuccess, "Saved "+render.DisplayTitle(msg.bookmark.ResolvedTitle()))
		return a, nil

	case deletedMsg:
		a.refresh()
		if msg.err != nil {
			a.setMessage(MessageError, session.Notice(msg.err))
			return a, nil
		}
		a.setMessage(MessageSuccess, "Deleted "+msg.title)
		return a, nil

	case searchSettledMsg:
		// Ignore terms that were cleared or superseded meanwhile.
		if msg.term == a.filter.Input.Value() && msg.term != a.filter.Term {
			a.filter.Term = msg.term
			a.cursor = 0
			a.refresh()
		}
		return a, a.waitForSearch()

	case tea.KeyMsg:
		switch a.mode {
		case ModeHelp:
			return a.updateHelp(msg)
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeViewUser:
			return a.updateViewUser(msg)
		case ModeAdd:
			return a.updateAdd(msg)
		case ModeConfirmDelete:
			return a.updateConfirmDelete(msg)
		default:
			return a.updateNormal(msg)
		}
	}

	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	step := 1
	if a.sess.View().Layout == render.LayoutGrid {
		step = a.gridLayout().Columns
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.debouncer.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(step)

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-step)

	case key.Matches(msg, a.keys.Right):
		if step > 1 {
			a.moveCursor(1)
		}

	case key.Matches(msg, a.keys.Left):
		if step > 1 {
			a.moveCursor(-1)
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.Layout):
		a.sess.ToggleLayout()
		a.refresh()

	case key.Matches(msg, a.keys.Sort):
		a.sess.ToggleSort()
		a.cursor = 0
		a.refresh()

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		return a, a.filter.Input.Focus()

	case key.Matches(msg, a.keys.TagFilter):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		tag, ok := item.FirstTag()
		if !ok {
			a.setMessage(MessageInfo, "This bookmark has no tags")
			return a, nil
		}
		a.filter.Set(search.TagTerm(tag))
		a.cursor = 0
		a.refresh()

	case key.Matches(msg, a.keys.ViewUser):
		a.user.Reset()
		a.mode = ModeViewUser
		return a, a.user.Input.Focus()

	case key.Matches(msg, a.keys.Reload):
		return a.reload()

	case key.Matches(msg, a.keys.Add):
		if !a.sess.Writable() {
			a.setMessage(MessageError, session.Notice(session.ErrReadOnly))
			return a, nil
		}
		a.form.Open()
		a.mode = ModeAdd

	case key.Matches(msg, a.keys.Delete):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		if !item.Deletable || !a.sess.Writable() {
			a.setMessage(MessageError, session.Notice(session.ErrReadOnly))
			return a, nil
		}
		a.pending = item
		a.mode = ModeConfirmDelete

	case key.Matches(msg, a.keys.YankURL):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		if err := a.copyURL(item.URL); err != nil {
			a.setMessage(MessageError, "Clipboard unavailable: "+err.Error())
			return a, nil
		}
		a.setMessage(MessageSuccess, "Copied "+item.URL)

	case key.Matches(msg, a.keys.Open):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		if err := a.openURL(item.URL); err != nil {
			a.setMessage(MessageError, "Could not open browser: "+err.Error())
		}
	}

	return a, nil
}

func (a *App) moveCursor(delta int) {
	if len(a.items) == 0 {
		return
	}
	next := a.cursor + delta
	if next < 0 || next >= len(a.items) {
		return
	}
	a.cursor = next
}

func (a App) gridLayout() layout.GridLayout {
	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	paneWidth := layout.CalculatePaneWidth(a.width, a.layoutConfig.Pane)
	return layout.CalculateGrid(paneWidth, paneHeight, a.layoutConfig.Grid)
}

func (a App) reload() (tea.Model, tea.Cmd) {
	viewed := a.sess.View().Viewed
	switch {
	case viewed.DID != "" && !viewed.Self:
		a.loading = true
		return a, a.viewUserCmd(viewed.Handle)
	case a.sess.AuthState() == session.Authenticated:
		a.loading = true
		return a, a.loadSelfCmd()
	}
	return a, nil
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "q", "esc":
		a.mode = ModeNormal
	case "ctrl+c":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.filter.Reset()
		a.filter.Input.Blur()
		a.mode = ModeNormal
		a.cursor = 0
		a.refresh()
		return a, nil

	case tea.KeyEnter:
		a.filter.Term = a.filter.Input.Value()
		a.filter.Input.Blur()
		a.mode = ModeNormal
		a.cursor = 0
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.filter.Input, cmd = a.filter.Input.Update(msg)
	a.debouncer.Push(a.filter.Input.Value())
	return a, cmd
}

func (a App) updateViewUser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.user.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyEnter:
		handle := a.user.Input.Value()
		a.user.Reset()
		a.mode = ModeNormal
		a.loading = true
		return a, a.viewUserCmd(handle)
	}

	var cmd tea.Cmd
	a.user.Input, cmd = a.user.Input.Update(msg)
	return a, cmd
}

func (a App) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.form.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyTab:
		a.form.FocusNext()
		return a, nil

	case tea.KeyEnter:
		subject := a.form.URLInput.Value()
		title := a.form.TitleInput.Value()
		tags := a.form.TagsInput.Value()
		a.form.Reset()
		a.mode = ModeNormal
		a.setMessage(MessageInfo, "Saving...")
		return a, a.createCmd(subject, title, tags)
	}

	in := a.form.Focused()
	updated, cmd := in.Update(msg)
	*in = updated
	return a, cmd
}

func (a App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		item := a.pending
		a.pending = Item{}
		a.mode = ModeNormal
		return a, a.deleteCmd(item)
	case "esc", "n", "q":
		a.pending = Item{}
		a.mode = ModeNormal
	}
	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
