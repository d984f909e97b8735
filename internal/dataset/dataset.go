// Package dataset provides the column-oriented in-memory table the
// cleaning pipeline mutates in place.
//
// A Dataset holds typed columns (numeric, text, or time) with an
// explicit per-cell validity mask for nulls. The schema is an ordered
// list of (name, kind) pairs plus a version counter that is bumped on
// every schema mutation, so a stage can check the inter-stage column
// contract before it runs.
package dataset

import (
	"fmt"
	"time"
)

// Kind identifies the type of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindText
	KindTime
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// ColumnInfo describes one schema entry.
type ColumnInfo struct {
	Name string
	Kind Kind
}

// column stores the values for one column. Only the slice matching the
// kind is populated; valid marks non-null cells.
type column struct {
	name  string
	kind  Kind
	nums  []float64
	texts []string
	times []time.Time
	valid []bool
}

// Dataset is an ordered sequence of rows sharing a uniform schema.
// It is not safe for concurrent use; the pipeline is single-threaded.
type Dataset struct {
	rows    int
	cols    []*column
	index   map[string]int
	version int
}

// New creates an empty dataset with a fixed row count.
func New(rows int) *Dataset {
	return &Dataset{rows: rows, index: make(map[string]int)}
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int { return d.rows }

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int { return len(d.cols) }

// Version returns the schema version. It is bumped on every column
// addition, removal, or kind change.
func (d *Dataset) Version() int { return d.version }

// Columns returns the column names in schema order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.name
	}
	return names
}

// Schema returns the ordered (name, kind) pairs.
func (d *Dataset) Schema() []ColumnInfo {
	infos := make([]ColumnInfo, len(d.cols))
	for i, c := range d.cols {
		infos[i] = ColumnInfo{Name: c.name, Kind: c.kind}
	}
	return infos
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnKind returns the kind of a column.
func (d *Dataset) ColumnKind(name string) (Kind, bool) {
	i, ok := d.index[name]
	if !ok {
		return 0, false
	}
	return d.cols[i].kind, true
}

// normalizeValid returns an all-true mask when valid is nil and
// verifies lengths otherwise.
func (d *Dataset) normalizeValid(name string, n int, valid []bool) ([]bool, error) {
	if n != d.rows {
		return nil, fmt.Errorf("column %s has %d values, dataset has %d rows", name, n, d.rows)
	}
	if valid == nil {
		valid = make([]bool, n)
		for i := range valid {
			valid[i] = true
		}
		return valid, nil
	}
	if len(valid) != d.rows {
		return nil, fmt.Errorf("column %s validity mask has %d entries, dataset has %d rows", name, len(valid), d.rows)
	}
	return valid, nil
}

func (d *Dataset) add(c *column) error {
	if _, ok := d.index[c.name]; ok {
		return fmt.Errorf("column %s already exists", c.name)
	}
	d.index[c.name] = len(d.cols)
	d.cols = append(d.cols, c)
	d.version++
	return nil
}

// AddNumeric appends a numeric column. The dataset takes ownership of
// the slices. A nil valid mask means every cell is non-null.
func (d *Dataset) AddNumeric(name string, values []float64, valid []bool) error {
	v, err := d.normalizeValid(name, len(values), valid)
	if err != nil {
		return err
	}
	return d.add(&column{name: name, kind: KindNumeric, nums: values, valid: v})
}

// AddText appends a text column.
func (d *Dataset) AddText(name string, values []string, valid []bool) error {
	v, err := d.normalizeValid(name, len(values), valid)
	if err != nil {
		return err
	}
	return d.add(&column{name: name, kind: KindText, texts: values, valid: v})
}

// AddTime appends a time column.
func (d *Dataset) AddTime(name string, values []time.Time, valid []bool) error {
	v, err := d.normalizeValid(name, len(values), valid)
	if err != nil {
		return err
	}
	return d.add(&column{name: name, kind: KindTime, times: values, valid: v})
}

// Drop removes a column from the schema.
func (d *Dataset) Drop(name string) error {
	i, ok := d.index[name]
	if !ok {
		return fmt.Errorf("column %s does not exist", name)
	}
	d.cols = append(d.cols[:i], d.cols[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.cols); j++ {
		d.index[d.cols[j].name] = j
	}
	d.version++
	return nil
}

// ReplaceTime converts an existing column to a time column in place,
// preserving its position in the schema.
func (d *Dataset) ReplaceTime(name string, values []time.Time, valid []bool) error {
	i, ok := d.index[name]
	if !ok {
		return fmt.Errorf("column %s does not exist", name)
	}
	v, err := d.normalizeValid(name, len(values), valid)
	if err != nil {
		return err
	}
	d.cols[i] = &column{name: name, kind: KindTime, times: values, valid: v}
	d.version++
	return nil
}

func (d *Dataset) column(name string, kind Kind) (*column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("column %s does not exist", name)
	}
	c := d.cols[i]
	if c.kind != kind {
		return nil, fmt.Errorf("column %s is %s, not %s", name, c.kind, kind)
	}
	return c, nil
}

// Numeric returns the live value and validity slices of a numeric
// column. Mutating them mutates the dataset.
func (d *Dataset) Numeric(name string) ([]float64, []bool, error) {
	c, err := d.column(name, KindNumeric)
	if err != nil {
		return nil, nil, err
	}
	return c.nums, c.valid, nil
}

// Text returns the live value and validity slices of a text column.
func (d *Dataset) Text(name string) ([]string, []bool, error) {
	c, err := d.column(name, KindText)
	if err != nil {
		return nil, nil, err
	}
	return c.texts, c.valid, nil
}

// Times returns the live value and validity slices of a time column.
func (d *Dataset) Times(name string) ([]time.Time, []bool, error) {
	c, err := d.column(name, KindTime)
	if err != nil {
		return nil, nil, err
	}
	return c.times, c.valid, nil
}

// NullCount returns the number of null cells in a column.
func (d *Dataset) NullCount(name string) int {
	i, ok := d.index[name]
	if !ok {
		return 0
	}
	count := 0
	for _, v := range d.cols[i].valid {
		if !v {
			count++
		}
	}
	return count
}

// TotalNulls returns the number of null cells across all columns.
func (d *Dataset) TotalNulls() int {
	total := 0
	for _, c := range d.cols {
		for _, v := range c.valid {
			if !v {
				total++
			}
		}
	}
	return total
}

// Row returns a read-only view over one record.
func (d *Dataset) Row(i int) Row {
	return Row{d: d, idx: i}
}

// Row is a per-record view used by pure row functions such as the
// position inference.
type Row struct {
	d   *Dataset
	idx int
}

// Float returns the numeric value of the named column for this row.
// A missing column or a null cell yields ok == false without error;
// a column of the wrong kind yields an error.
func (r Row) Float(name string) (value float64, ok bool, err error) {
	i, exists := r.d.index[name]
	if !exists {
		return 0, false, nil
	}
	c := r.d.cols[i]
	if c.kind != KindNumeric {
		return 0, false, fmt.Errorf("column %s is %s, not numeric", name, c.kind)
	}
	if !c.valid[r.idx] {
		return 0, false, nil
	}
	return c.nums[r.idx], true, nil
}
