package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Grid  GridConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds dimensions of the bookmark pane.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status bar (3) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// HorizontalPadding is the app padding on both sides plus pane borders.
	HorizontalPadding int

	// ContentPadding is subtracted from pane width for row rendering.
	ContentPadding int
}

// GridConfig holds card grid configuration.
type GridConfig struct {
	// MinCardWidth is the narrowest a card may get before a column is dropped.
	MinCardWidth int

	// MaxColumns caps the number of cards per row on wide terminals.
	MaxColumns int

	// Gap is the horizontal space between two cards.
	Gap int

	// CardHeight is the outer card height: border (2) + title lines (2) + tags (1).
	CardHeight int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// HelpLeftColumnWidth: width for help overlay left column.
	HelpLeftColumnWidth int

	// HelpRightColumnWidth: width for help overlay right column.
	HelpRightColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit  int
	URLCharLimit    int
	TagsCharLimit   int
	SearchCharLimit int
	HandleCharLimit int

	// Display widths
	StandardWidth int // Used for title, URL, tags, handle
	SearchWidth   int // Used for the inline search input
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:   7, // app padding (1) + header (1) + pane borders (2) + status bar (3)
			MinHeight:         5,
			HorizontalPadding: 6, // app padding (2+2) + pane borders (1+1)
			ContentPadding:    2,
		},
		Grid: GridConfig{
			MinCardWidth: 24,
			MaxColumns:   6,
			Gap:          2,
			CardHeight:   5,
		},
		Modal: ModalConfig{
			DefaultWidthPercent:  40,
			MinWidth:             50,
			MaxWidth:             80,
			HelpLeftColumnWidth:  20,
			HelpRightColumnWidth: 24,
		},
		Input: InputConfig{
			TitleCharLimit:  300,
			URLCharLimit:    2000,
			TagsCharLimit:   200,
			SearchCharLimit: 100,
			HandleCharLimit: 253,
			StandardWidth:   40,
			SearchWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
