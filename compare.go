package main

import (
	"sort"
	"strings"
)

// Reconciler unions name sets across sources and answers per-source membership.
// With IgnoreCase set, names differing only in case are treated as the same name and
// shown with the spelling of the first source that has it.
type Reconciler struct {
	IgnoreCase bool
}

func (r Reconciler) key(name string) string {
	if r.IgnoreCase {
		return strings.ToLower(name)
	}
	return name
}

// Reconciliation is the union of names over a fixed list of sources.
type Reconciliation struct {
	// Names is the union, sorted.
	Names []string

	sourceKeys []string
	presence   map[string]map[string]bool
	display    map[string]string
	r          Reconciler
}

// Reconcile computes the union of sets and the membership of every name in every source.
// sourceKeys fixes the source order; a key missing from sets counts as an empty set.
func (r Reconciler) Reconcile(sourceKeys []string, sets map[string]NameSet) *Reconciliation {
	rc := &Reconciliation{
		sourceKeys: sourceKeys,
		presence:   make(map[string]map[string]bool),
		display:    make(map[string]string),
		r:          r,
	}

	for _, src := range sourceKeys {
		for _, name := range sets[src].Sorted() {
			k := r.key(name)
			shown, ok := rc.display[k]
			if !ok {
				shown = name
				rc.display[k] = shown
				rc.presence[shown] = make(map[string]bool, len(sourceKeys))
			}
			rc.presence[shown][src] = true
		}
	}

	rc.Names = make([]string, 0, len(rc.presence))
	for name := range rc.presence {
		rc.Names = append(rc.Names, name)
	}
	sort.Strings(rc.Names)

	return rc
}

// Present reports whether name is in the set of the given source.
func (rc *Reconciliation) Present(name, sourceKey string) bool {
	shown, ok := rc.Lookup(name)
	if !ok {
		return false
	}
	return rc.presence[shown][sourceKey]
}

// Membership returns an entry for every source, true where name is present.
func (rc *Reconciliation) Membership(name string) map[string]bool {
	m := make(map[string]bool, len(rc.sourceKeys))
	for _, src := range rc.sourceKeys {
		m[src] = rc.Present(name, src)
	}
	return m
}

// Lookup maps any spelling of a name to the spelling used in Names.
func (rc *Reconciliation) Lookup(name string) (string, bool) {
	shown, ok := rc.display[rc.r.key(name)]
	return shown, ok
}

// Complete reports whether name is present in every source.
func (rc *Reconciliation) Complete(name string) bool {
	for _, src := range rc.sourceKeys {
		if !rc.Present(name, src) {
			return false
		}
	}
	return true
}

// Comparison holds table and per-table column reconciliations for a set of inventories.
type Comparison struct {
	Sources []Source
	Tables  *Reconciliation
	// Columns is keyed by table name as it appears in Tables.Names.
	Columns map[string]*Reconciliation
}

// Compare reconciles table names across inventories, then column names per table.
// A source lacking a table contributes an empty column set for it, as does a source
// whose column query for that table failed.
func Compare(invs []*Inventory, r Reconciler) *Comparison {
	sources := make([]Source, len(invs))
	keys := make([]string, len(invs))
	tableSets := make(map[string]NameSet, len(invs))
	for i, inv := range invs {
		sources[i] = inv.Source
		keys[i] = inv.Source.Key
		tableSets[inv.Source.Key] = inv.Tables
	}

	tables := r.Reconcile(keys, tableSets)

	// each source's own spelling of a table
	spellings := make([]map[string]string, len(invs))
	for i, inv := range invs {
		idx := make(map[string]string, len(inv.Tables))
		for _, table := range inv.Tables.Sorted() {
			if _, ok := idx[r.key(table)]; !ok {
				idx[r.key(table)] = table
			}
		}
		spellings[i] = idx
	}

	result := &Comparison{
		Sources: sources,
		Tables:  tables,
		Columns: make(map[string]*Reconciliation, len(tables.Names)),
	}
	for _, table := range tables.Names {
		columnSets := make(map[string]NameSet, len(invs))
		for i, inv := range invs {
			if !tables.Present(table, inv.Source.Key) {
				continue
			}
			own := spellings[i][r.key(table)]
			columnSets[inv.Source.Key] = inv.Columns[own].Columns
		}
		result.Columns[table] = r.Reconcile(keys, columnSets)
	}

	return result
}
