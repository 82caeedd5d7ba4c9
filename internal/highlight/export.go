package highlight

// ExportCell is the id-free view of a highlight handed to the PDF exporter
type ExportCell struct {
	Row     string `json:"row"`
	Col     string `json:"col"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

// ForExport strips formula ids and details, keeping order
func ForExport(cells []HighlightedCell) []ExportCell {
	out := make([]ExportCell, len(cells))
	for i, c := range cells {
		out[i] = ExportCell{Row: c.Row, Col: c.Col, Color: c.Color, Message: c.Message}
	}
	return out
}
