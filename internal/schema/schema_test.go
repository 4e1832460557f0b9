package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdered_ParentsComeFirst(t *testing.T) {
	pos := make(map[string]int)
	for i, tbl := range Ordered() {
		pos[tbl.Name] = i
	}

	for _, tbl := range Ordered() {
		if tbl.Parent == "" {
			continue
		}
		pp, ok := pos[tbl.Parent]
		require.True(t, ok, "parent %q of %q is not registered", tbl.Parent, tbl.Name)
		assert.Less(t, pp, pos[tbl.Name], "%q must come after its parent %q", tbl.Name, tbl.Parent)
	}
}

func TestOrdered_BookkeepingColumns(t *testing.T) {
	for _, tbl := range Ordered() {
		assert.True(t, tbl.HasColumn("id"), "%s missing id", tbl.Name)
		assert.True(t, tbl.HasColumn("created_at"), "%s missing created_at", tbl.Name)
		assert.True(t, tbl.HasColumn("updated_at"), "%s missing updated_at", tbl.Name)
		assert.False(t, tbl.HasColumn(StatusColumn), "%s must not list %s as a shared column", tbl.Name, StatusColumn)
	}
}

func TestByName(t *testing.T) {
	tbl, ok := ByName("invoice_line_items")
	require.True(t, ok)
	assert.Equal(t, "invoices", tbl.Parent)

	_, ok = ByName("nope")
	assert.False(t, ok)
}

func TestStripLocal(t *testing.T) {
	row := Row{"id": "a", StatusColumn: "pending", "name": "Acme"}
	got := StripLocal(row)

	assert.Equal(t, Row{"id": "a", "name": "Acme"}, got)
	// original untouched
	assert.Contains(t, row, StatusColumn)
}
