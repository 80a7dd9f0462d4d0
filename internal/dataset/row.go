package dataset

// Row is one typed observation of the firm-year panel. The validate
// tags carry the schema bounds; the schema package registers the
// custom "finite" rule and runs the checks.
type Row struct {
	FirmID int64   `json:"firm_id" validate:"gte=0"`
	Year   int64   `json:"year" validate:"gte=2000,lte=2035"`
	X      float64 `json:"x" validate:"finite"`
	Treat  int64   `json:"treat" validate:"oneof=0 1"`
	Y      float64 `json:"y" validate:"finite"`
}

// Panel is a validated, typed dataset. Row order is whatever the source
// table carried; the estimator does not depend on it.
type Panel struct {
	Rows []Row
}

// NumRows returns the number of observations
func (p *Panel) NumRows() int {
	return len(p.Rows)
}

// Table renders the panel back into canonical string form. Integer
// columns print without a decimal point, float columns in shortest
// round-trip form.
func (p *Panel) Table() *Table {
	records := make([][]string, len(p.Rows))
	for i, r := range p.Rows {
		records[i] = []string{
			FormatInt(r.FirmID),
			FormatInt(r.Year),
			FormatFloat(r.X),
			FormatInt(r.Treat),
			FormatFloat(r.Y),
		}
	}
	return &Table{Columns: Columns(), Records: records}
}

// Frame builds the column-vector view the estimator consumes. Integer
// columns widen to float64.
func (p *Panel) Frame() *Frame {
	n := len(p.Rows)
	cols := map[string][]float64{
		ColFirmID: make([]float64, n),
		ColYear:   make([]float64, n),
		ColX:      make([]float64, n),
		ColTreat:  make([]float64, n),
		ColY:      make([]float64, n),
	}
	for i, r := range p.Rows {
		cols[ColFirmID][i] = float64(r.FirmID)
		cols[ColYear][i] = float64(r.Year)
		cols[ColX][i] = r.X
		cols[ColTreat][i] = float64(r.Treat)
		cols[ColY][i] = r.Y
	}
	return &Frame{names: Columns(), cols: cols, n: n}
}

// Frame is a name-addressed set of float64 columns of equal length
type Frame struct {
	names []string
	cols  map[string][]float64
	n     int
}

// NewFrame builds a frame from explicit columns. Caller guarantees the
// vectors share one length.
func NewFrame(names []string, cols map[string][]float64) *Frame {
	n := 0
	if len(names) > 0 {
		n = len(cols[names[0]])
	}
	return &Frame{names: names, cols: cols, n: n}
}

// Len returns the number of observations
func (f *Frame) Len() int {
	return f.n
}

// Names returns the column names in their table order
func (f *Frame) Names() []string {
	return f.names
}

// Column returns the named vector and whether it exists
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.cols[name]
	return col, ok
}
