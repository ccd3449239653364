package main

const (
	tableNameHeader  = "TableName"
	columnNameHeader = "ColumnName"
)

// Report is a flat table with one header per column.
type Report struct {
	Headers []string
	Rows    [][]string
}

func presenceCell(present bool) string {
	if present {
		return Present
	}
	return NotPresent
}

func sourceHeaders(leading []string, sources []Source) []string {
	headers := make([]string, 0, len(leading)+len(sources))
	headers = append(headers, leading...)
	for _, src := range sources {
		headers = append(headers, src.Name)
	}
	return headers
}

// BuildPresenceReport emits one row per table with a Present/Not Present cell per source.
func BuildPresenceReport(tables *Reconciliation, sources []Source) *Report {
	report := &Report{
		Headers: sourceHeaders([]string{tableNameHeader}, sources),
		Rows:    make([][]string, 0, len(tables.Names)),
	}

	for _, table := range tables.Names {
		row := make([]string, 0, len(report.Headers))
		row = append(row, table)
		for _, src := range sources {
			row = append(row, presenceCell(tables.Present(table, src.Key)))
		}
		report.Rows = append(report.Rows, row)
	}

	return report
}

// BuildColumnReport emits one row per (table, column) pair seen in any source.
// Tables without any observed column contribute no rows.
func BuildColumnReport(tables *Reconciliation, columns map[string]*Reconciliation, sources []Source) *Report {
	report := &Report{
		Headers: sourceHeaders([]string{tableNameHeader, columnNameHeader}, sources),
	}

	for _, table := range tables.Names {
		cols, ok := columns[table]
		if !ok {
			continue
		}
		for _, column := range cols.Names {
			row := make([]string, 0, len(report.Headers))
			row = append(row, table, column)
			for _, src := range sources {
				row = append(row, presenceCell(cols.Present(column, src.Key)))
			}
			report.Rows = append(report.Rows, row)
		}
	}

	return report
}

// Head returns a report with at most n rows.
func (r *Report) Head(n int) *Report {
	if n < 0 || n > len(r.Rows) {
		n = len(r.Rows)
	}
	return &Report{Headers: r.Headers, Rows: r.Rows[:n]}
}

// keyColumns is the number of leading name columns before the per-source cells.
func (r *Report) keyColumns() int {
	n := 0
	for n < len(r.Headers) && (r.Headers[n] == tableNameHeader || r.Headers[n] == columnNameHeader) {
		n++
	}
	return n
}

// DriftRows counts rows with at least one Not Present source cell.
func (r *Report) DriftRows() int {
	keys := r.keyColumns()
	count := 0
	for _, row := range r.Rows {
		if len(row) <= keys {
			continue
		}
		for _, cell := range row[keys:] {
			if cell == NotPresent {
				count++
				break
			}
		}
	}
	return count
}

// Summary is the console digest printed after a run.
type Summary struct {
	Tables           int
	TablesWithDrift  int
	Columns          int
	ColumnsWithDrift int
	// ColumnFailures counts failed column queries per source display name.
	ColumnFailures map[string]int
}

func Summarize(presence, columns *Report, invs []*Inventory) Summary {
	s := Summary{
		Tables:           len(presence.Rows),
		TablesWithDrift:  presence.DriftRows(),
		Columns:          len(columns.Rows),
		ColumnsWithDrift: columns.DriftRows(),
		ColumnFailures:   make(map[string]int),
	}
	for _, inv := range invs {
		if n := len(inv.Failures()); n > 0 {
			s.ColumnFailures[inv.Source.Name] = n
		}
	}
	return s
}

func (s Summary) HasDrift() bool {
	return s.TablesWithDrift > 0 || s.ColumnsWithDrift > 0
}
