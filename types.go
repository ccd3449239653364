package main

import "sort"

// Cell values used in both reports.
const (
	Present    = "Present"
	NotPresent = "Not Present"
)

// Source is one configured database/schema being compared.
type Source struct {
	Key      string
	Name     string
	Driver   string
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Schema   string
	// SSLMode is passed to Postgres as sslmode when set.
	SSLMode string
}

// NameSet is a set of table or column names.
type NameSet map[string]struct{}

func newNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexicographic order.
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnResult is the outcome of listing the columns of one table.
// An empty Columns with a nil Err means the table really has no columns.
type ColumnResult struct {
	Columns NameSet
	Err     error
}

func (r ColumnResult) Failed() bool {
	return r.Err != nil
}

// Inventory is everything collected from one source.
type Inventory struct {
	Source  Source
	Tables  NameSet
	Columns map[string]ColumnResult
}

// Failures returns the tables whose column query failed, sorted.
func (inv *Inventory) Failures() []string {
	var failed []string
	for table, res := range inv.Columns {
		if res.Failed() {
			failed = append(failed, table)
		}
	}
	sort.Strings(failed)
	return failed
}
