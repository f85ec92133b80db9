package layout

import "testing"

func TestCalculatePaneHeight(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name           string
		terminalHeight int
		want           int
	}{
		{"normal terminal", 24, 17},           // 24 - 7
		{"large terminal", 50, 43},            // 50 - 7
		{"small terminal enforces min", 8, 5}, // 1, min 5
		{"smaller than reduction", 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculatePaneHeight(tt.terminalHeight, cfg); got != tt.want {
				t.Errorf("CalculatePaneHeight(%d) = %d, want %d", tt.terminalHeight, got, tt.want)
			}
		})
	}
}

func TestCalculatePaneWidth(t *testing.T) {
	cfg := DefaultConfig().Pane

	if got := CalculatePaneWidth(80, cfg); got != 74 {
		t.Errorf("CalculatePaneWidth(80) = %d, want 74", got)
	}
	if got := CalculatePaneWidth(3, cfg); got != 1 {
		t.Errorf("CalculatePaneWidth(3) = %d, want 1", got)
	}
	if got := CalculateItemWidth(74, cfg); got != 72 {
		t.Errorf("CalculateItemWidth(74) = %d, want 72", got)
	}
}

func TestCalculateVisibleHeight(t *testing.T) {
	tests := []struct {
		paneHeight, headerLines, want int
	}{
		{17, 1, 16},
		{17, 0, 17},
		{5, 10, 1},
	}

	for _, tt := range tests {
		if got := CalculateVisibleHeight(tt.paneHeight, tt.headerLines); got != tt.want {
			t.Errorf("CalculateVisibleHeight(%d, %d) = %d, want %d",
				tt.paneHeight, tt.headerLines, got, tt.want)
		}
	}
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name                            string
		selected, total, viewportHeight int
		want                            int
	}{
		{"no scroll needed", 2, 5, 10, 0},
		{"selection near start", 1, 20, 10, 0},
		{"selection in middle", 10, 20, 10, 5},
		{"selection near end", 18, 20, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateViewportOffset(tt.selected, tt.total, tt.viewportHeight); got != tt.want {
				t.Errorf("CalculateViewportOffset(%d, %d, %d) = %d, want %d",
					tt.selected, tt.total, tt.viewportHeight, got, tt.want)
			}
		})
	}
}

func TestCalculateGrid(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name          string
		width, height int
		want          GridLayout
	}{
		{"standard terminal", 74, 17, GridLayout{Columns: 2, CardWidth: 36, Rows: 3}}, // (74+2)/26 = 2
		{"wide terminal", 114, 23, GridLayout{Columns: 4, CardWidth: 27, Rows: 4}},
		{"narrow terminal", 30, 17, GridLayout{Columns: 1, CardWidth: 30, Rows: 3}},
		{"tiny terminal", 6, 2, GridLayout{Columns: 1, CardWidth: 6, Rows: 1}},
		{"very wide caps columns", 400, 17, GridLayout{Columns: 6, CardWidth: 65, Rows: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateGrid(tt.width, tt.height, cfg); got != tt.want {
				t.Errorf("CalculateGrid(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestCalculateGridOffset(t *testing.T) {
	g := GridLayout{Columns: 3, CardWidth: 20, Rows: 2}

	if got := CalculateGridOffset(1, 12, g); got != 0 {
		t.Errorf("first row should not scroll, got %d", got)
	}
	// 12 cards = 4 rows; card 11 is on row 3, max offset is 2.
	if got := CalculateGridOffset(11, 12, g); got != 2 {
		t.Errorf("last row offset = %d, want 2", got)
	}
}

func TestCalculateModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		name          string
		terminalWidth int
		want          int
	}{
		{"wide terminal clamps to max", 300, 80},
		{"normal terminal uses min", 100, 50}, // 40 < min 50
		{"narrow terminal", 40, 36},           // min 50 > 40-4
		{"tiny terminal clamps to 1", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateModalWidth(tt.terminalWidth, cfg.DefaultWidthPercent, cfg); got != tt.want {
				t.Errorf("CalculateModalWidth(%d) = %d, want %d", tt.terminalWidth, got, tt.want)
			}
		})
	}
}

func TestCalculateVisibleListItems(t *testing.T) {
	tests := []struct {
		name                                string
		maxVisible, selectedIdx, totalItems int
		wantStart, wantEnd                  int
	}{
		{"at start", 5, 0, 10, 0, 5},
		{"at end", 5, 9, 10, 5, 10},
		{"fewer than max", 5, 2, 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateVisibleListItems(tt.maxVisible, tt.selectedIdx, tt.totalItems)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("CalculateVisibleListItems(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.maxVisible, tt.selectedIdx, tt.totalItems, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
