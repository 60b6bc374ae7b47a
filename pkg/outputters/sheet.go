package outputters

// Column describes one output column of a sheet. Width is the display width
// in the workbook; zero means "leave the default".
type Column struct {
	Header string
	Width  float64
}

// Sheet is one named table handed to the renderers: an ordered column spec
// plus rows of cell values. Cell values may be nil for "no value".
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}
