package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_UnionAndMembership(t *testing.T) {
	rc := Reconciler{}.Reconcile([]string{"a", "b", "c"}, map[string]NameSet{
		"a": newNameSet("Users", "Orders"),
		"b": newNameSet("Orders", "Products"),
		"c": newNameSet(),
	})

	assert.Equal(t, []string{"Orders", "Products", "Users"}, rc.Names)
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": false}, rc.Membership("Users"))
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": false}, rc.Membership("Orders"))
	assert.Equal(t, map[string]bool{"a": false, "b": true, "c": false}, rc.Membership("Products"))
	assert.False(t, rc.Complete("Orders"))
}

func TestReconcile_EdgeCases(t *testing.T) {
	t.Run("all sources empty", func(t *testing.T) {
		rc := Reconciler{}.Reconcile([]string{"a", "b"}, map[string]NameSet{"a": {}, "b": {}})
		assert.Empty(t, rc.Names)
	})

	t.Run("source missing from map counts as empty", func(t *testing.T) {
		rc := Reconciler{}.Reconcile([]string{"a", "b"}, map[string]NameSet{"a": newNameSet("t1")})
		assert.Equal(t, []string{"t1"}, rc.Names)
		assert.True(t, rc.Present("t1", "a"))
		assert.False(t, rc.Present("t1", "b"))
	})

	t.Run("unknown name is not present anywhere", func(t *testing.T) {
		rc := Reconciler{}.Reconcile([]string{"a"}, map[string]NameSet{"a": newNameSet("t1")})
		assert.False(t, rc.Present("nope", "a"))
		_, ok := rc.Lookup("nope")
		assert.False(t, ok)
	})

	t.Run("present everywhere", func(t *testing.T) {
		rc := Reconciler{}.Reconcile([]string{"a", "b"}, map[string]NameSet{
			"a": newNameSet("t1"),
			"b": newNameSet("t1"),
		})
		assert.True(t, rc.Complete("t1"))
	})
}

func TestReconcile_CaseSensitivity(t *testing.T) {
	sets := map[string]NameSet{
		"a": newNameSet("Users"),
		"b": newNameSet("users"),
	}

	exact := Reconciler{}.Reconcile([]string{"a", "b"}, sets)
	assert.Equal(t, []string{"Users", "users"}, exact.Names)
	assert.False(t, exact.Present("Users", "b"))

	folded := Reconciler{IgnoreCase: true}.Reconcile([]string{"a", "b"}, sets)
	require.Equal(t, []string{"Users"}, folded.Names)
	assert.True(t, folded.Present("Users", "a"))
	assert.True(t, folded.Present("Users", "b"))
	assert.True(t, folded.Present("USERS", "b"))
}

func exampleInventories() []*Inventory {
	a := Source{Key: "a", Name: "A"}
	b := Source{Key: "b", Name: "B"}
	return []*Inventory{
		{
			Source: a,
			Tables: newNameSet("Users", "Orders"),
			Columns: map[string]ColumnResult{
				"Users":  {Columns: newNameSet("id", "email")},
				"Orders": {Columns: newNameSet("id", "total")},
			},
		},
		{
			Source: b,
			Tables: newNameSet("Orders", "Products"),
			Columns: map[string]ColumnResult{
				"Orders":   {Columns: newNameSet("id", "total", "tax")},
				"Products": {Columns: newNameSet("id", "sku")},
			},
		},
	}
}

func TestCompare_ColumnScoping(t *testing.T) {
	result := Compare(exampleInventories(), Reconciler{})

	require.Equal(t, []string{"Orders", "Products", "Users"}, result.Tables.Names)

	users := result.Columns["Users"]
	require.NotNil(t, users)
	assert.Equal(t, []string{"email", "id"}, users.Names)
	for _, col := range users.Names {
		assert.True(t, users.Present(col, "a"))
		assert.False(t, users.Present(col, "b"), "Users is not in b so %s must be Not Present", col)
	}

	orders := result.Columns["Orders"]
	assert.Equal(t, []string{"id", "tax", "total"}, orders.Names)
	assert.False(t, orders.Present("tax", "a"))
	assert.True(t, orders.Present("tax", "b"))
}

func TestCompare_FailedColumnQueryDegrades(t *testing.T) {
	invs := exampleInventories()
	invs[1].Columns["Orders"] = ColumnResult{Columns: NameSet{}, Err: errors.New("permission denied")}

	result := Compare(invs, Reconciler{})

	orders := result.Columns["Orders"]
	assert.Equal(t, []string{"id", "total"}, orders.Names)
	for _, col := range orders.Names {
		assert.True(t, orders.Present(col, "a"))
		assert.False(t, orders.Present(col, "b"))
	}
	// the table itself is still present in b
	assert.True(t, result.Tables.Present("Orders", "b"))
}

func TestCompare_NoColumnsAnywhere(t *testing.T) {
	invs := []*Inventory{
		{
			Source:  Source{Key: "a", Name: "A"},
			Tables:  newNameSet("empty"),
			Columns: map[string]ColumnResult{"empty": {Columns: NameSet{}, Err: errors.New("boom")}},
		},
	}

	result := Compare(invs, Reconciler{})
	assert.Empty(t, result.Columns["empty"].Names)
}

func TestCompare_IgnoreCaseUsesEachSourcesSpelling(t *testing.T) {
	invs := []*Inventory{
		{
			Source:  Source{Key: "a", Name: "A"},
			Tables:  newNameSet("Orders"),
			Columns: map[string]ColumnResult{"Orders": {Columns: newNameSet("ID", "Total")}},
		},
		{
			Source:  Source{Key: "b", Name: "B"},
			Tables:  newNameSet("orders"),
			Columns: map[string]ColumnResult{"orders": {Columns: newNameSet("id", "total", "tax")}},
		},
	}

	result := Compare(invs, Reconciler{IgnoreCase: true})

	require.Equal(t, []string{"Orders"}, result.Tables.Names)
	orders := result.Columns["Orders"]
	assert.Equal(t, []string{"ID", "Total", "tax"}, orders.Names)
	assert.True(t, orders.Present("ID", "b"))
	assert.False(t, orders.Present("tax", "a"))
}
