// Package schema defines the table registry shared by the local store and
// the remote rows API. The registry is a fixed, dependency-ordered list of
// table descriptors: parent tables come before child tables so that batch
// upserts never reference a row the remote store has not seen yet.
package schema

// StatusColumn is the local-only bookkeeping column tracking whether a row's
// last known state matches the remote store. It is never sent over the wire.
const StatusColumn = "sync_status"

// Row is a flat record matching the shared column set of one table.
// Values are JSON-compatible scalars (string, float64, int64, bool, nil).
type Row map[string]any

// Table describes one syncable table.
type Table struct {
	// Name is the table name, identical locally and remotely.
	Name string

	// Columns is the shared column set, including the bookkeeping columns
	// id, created_at and updated_at, but excluding StatusColumn.
	Columns []string

	// Parent is the name of the table this one references via a foreign
	// key, or empty. Parents always precede children in Ordered().
	Parent string
}

var tables = []Table{
	{
		Name:    "profiles",
		Columns: []string{"id", "business_name", "owner_email", "address", "currency", "created_at", "updated_at"},
	},
	{
		Name:    "clients",
		Columns: []string{"id", "name", "email", "phone", "address", "created_at", "updated_at"},
	},
	{
		Name:    "invoices",
		Columns: []string{"id", "client_id", "number", "status", "issue_date", "due_date", "total_amount", "notes", "created_at", "updated_at"},
		Parent:  "clients",
	},
	{
		Name:    "invoice_line_items",
		Columns: []string{"id", "invoice_id", "description", "quantity", "unit_price", "total", "created_at", "updated_at"},
		Parent:  "invoices",
	},
	{
		Name:    "payments",
		Columns: []string{"id", "invoice_id", "amount", "method", "paid_at", "created_at", "updated_at"},
		Parent:  "invoices",
	},
	{
		Name:    "expenses",
		Columns: []string{"id", "description", "category", "amount", "incurred_at", "receipt_key", "created_at", "updated_at"},
	},
}

var byName = func() map[string]Table {
	m := make(map[string]Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}()

// Ordered returns all syncable tables in dependency order (parents first).
// Callers must not mutate the returned slice.
func Ordered() []Table {
	return tables
}

// ByName looks up a table descriptor by name.
func ByName(name string) (Table, bool) {
	t, ok := byName[name]
	return t, ok
}

// HasColumn reports whether col is part of the table's shared column set.
func (t Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// StripLocal returns a copy of row without local-only bookkeeping columns.
// Rows must never carry StatusColumn to the remote store.
func StripLocal(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		if k == StatusColumn {
			continue
		}
		out[k] = v
	}
	return out
}
