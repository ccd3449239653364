package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuildPresenceReport(t *testing.T) {
	result := Compare(exampleInventories(), Reconciler{})

	got := BuildPresenceReport(result.Tables, result.Sources)

	expected := &Report{
		Headers: []string{"TableName", "A", "B"},
		Rows: [][]string{
			{"Orders", "Present", "Present"},
			{"Products", "Not Present", "Present"},
			{"Users", "Present", "Not Present"},
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("presence report mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildColumnReport(t *testing.T) {
	result := Compare(exampleInventories(), Reconciler{})

	got := BuildColumnReport(result.Tables, result.Columns, result.Sources)

	expected := &Report{
		Headers: []string{"TableName", "ColumnName", "A", "B"},
		Rows: [][]string{
			{"Orders", "id", "Present", "Present"},
			{"Orders", "tax", "Not Present", "Present"},
			{"Orders", "total", "Present", "Present"},
			{"Products", "id", "Not Present", "Present"},
			{"Products", "sku", "Not Present", "Present"},
			{"Users", "email", "Present", "Not Present"},
			{"Users", "id", "Present", "Not Present"},
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("column report mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildColumnReport_TableWithoutColumnsHasNoRows(t *testing.T) {
	invs := exampleInventories()
	invs[0].Columns["Users"] = ColumnResult{Columns: NameSet{}, Err: errors.New("timeout")}

	result := Compare(invs, Reconciler{})
	got := BuildColumnReport(result.Tables, result.Columns, result.Sources)

	for _, row := range got.Rows {
		assert.NotEqual(t, "Users", row[0], "no column rows expected for Users")
	}
	// the presence report still lists the table
	presence := BuildPresenceReport(result.Tables, result.Sources)
	assert.Contains(t, presence.Rows, []string{"Users", "Present", "Not Present"})
}

func TestReport_EveryRowHasOneCellPerSource(t *testing.T) {
	result := Compare(exampleInventories(), Reconciler{})
	presence := BuildPresenceReport(result.Tables, result.Sources)
	columns := BuildColumnReport(result.Tables, result.Columns, result.Sources)

	for _, row := range presence.Rows {
		assert.Len(t, row, len(presence.Headers))
	}
	for _, row := range columns.Rows {
		assert.Len(t, row, len(columns.Headers))
	}
}

func TestReport_Head(t *testing.T) {
	r := &Report{Headers: []string{"TableName"}, Rows: [][]string{{"a"}, {"b"}, {"c"}}}

	assert.Len(t, r.Head(2).Rows, 2)
	assert.Len(t, r.Head(10).Rows, 3)
	assert.Len(t, r.Head(-1).Rows, 3)
	assert.Empty(t, r.Head(0).Rows)
}

func TestSummarize(t *testing.T) {
	invs := exampleInventories()
	invs[1].Columns["Products"] = ColumnResult{Columns: NameSet{}, Err: errors.New("boom")}

	result := Compare(invs, Reconciler{})
	presence := BuildPresenceReport(result.Tables, result.Sources)
	columns := BuildColumnReport(result.Tables, result.Columns, result.Sources)

	s := Summarize(presence, columns, invs)

	assert.Equal(t, 3, s.Tables)
	assert.Equal(t, 2, s.TablesWithDrift)
	assert.Equal(t, 5, s.Columns)
	assert.Equal(t, 3, s.ColumnsWithDrift)
	assert.Equal(t, map[string]int{"B": 1}, s.ColumnFailures)
	assert.True(t, s.HasDrift())
}

func TestSummarize_NoDrift(t *testing.T) {
	src := []Source{{Key: "a", Name: "A"}, {Key: "b", Name: "B"}}
	invs := []*Inventory{
		{Source: src[0], Tables: newNameSet("t"), Columns: map[string]ColumnResult{"t": {Columns: newNameSet("id")}}},
		{Source: src[1], Tables: newNameSet("t"), Columns: map[string]ColumnResult{"t": {Columns: newNameSet("id")}}},
	}
	result := Compare(invs, Reconciler{})

	s := Summarize(
		BuildPresenceReport(result.Tables, result.Sources),
		BuildColumnReport(result.Tables, result.Columns, result.Sources),
		invs)

	assert.False(t, s.HasDrift())
	assert.Empty(t, s.ColumnFailures)
}

func TestReport_DriftRowsIgnoresNameCells(t *testing.T) {
	presence := &Report{
		Headers: []string{"TableName", "A", "B"},
		Rows: [][]string{
			{"Not Present", "Present", "Present"},
			{"Orders", "Present", "Not Present"},
		},
	}
	columns := &Report{
		Headers: []string{"TableName", "ColumnName", "A", "B"},
		Rows: [][]string{
			{"Not Present", "Not Present", "Present", "Present"},
		},
	}

	assert.Equal(t, 1, presence.DriftRows())
	assert.Equal(t, 0, columns.DriftRows())
}
