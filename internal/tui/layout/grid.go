package layout

// GridLayout holds calculated card grid dimensions.
type GridLayout struct {
	Columns   int
	CardWidth int
	Rows      int // card rows that fit the pane
}

// CalculateGrid fits as many cards per row as MinCardWidth allows and
// spreads the remaining width over them.
func CalculateGrid(paneWidth, paneHeight int, cfg GridConfig) GridLayout {
	columns := (paneWidth + cfg.Gap) / (cfg.MinCardWidth + cfg.Gap)
	if columns < 1 {
		columns = 1
	}
	if cfg.MaxColumns > 0 && columns > cfg.MaxColumns {
		columns = cfg.MaxColumns
	}

	cardWidth := (paneWidth - cfg.Gap*(columns-1)) / columns
	if cardWidth < 1 {
		cardWidth = 1
	}

	rows := 1
	if cfg.CardHeight > 0 && paneHeight/cfg.CardHeight > 1 {
		rows = paneHeight / cfg.CardHeight
	}

	return GridLayout{
		Columns:   columns,
		CardWidth: cardWidth,
		Rows:      rows,
	}
}

// CalculateGridOffset returns the first card row to draw so the row holding
// selected stays visible.
func CalculateGridOffset(selected, total int, g GridLayout) int {
	if g.Columns < 1 {
		return 0
	}
	totalRows := (total + g.Columns - 1) / g.Columns
	return CalculateViewportOffset(selected/g.Columns, totalRows, g.Rows)
}
