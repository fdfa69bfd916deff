package store

import "sort"

// Collection describes one named keyed collection and its secondary indexes.
type Collection struct {
	// Name is the logical name used in snapshots (e.g. "candidateNotes").
	Name string
	// Table is the physical table backing the collection.
	Table string
	// Model is a pointer to the gorm model, used for migrations and clear.
	Model any
	// Indexes maps a field name to its indexed column for equality lookups.
	Indexes map[string]string
}

// Column 返回字段对应的索引列；主键 id 总是可查询。
func (c Collection) Column(field string) (string, bool) {
	if field == "id" {
		return "id", true
	}
	column, ok := c.Indexes[field]
	return column, ok
}

// IndexedFields returns the declared secondary index fields in sorted order.
func (c Collection) IndexedFields() []string {
	fields := make([]string, 0, len(c.Indexes))
	for field := range c.Indexes {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Reference is a foreign key held by a record.
type Reference struct {
	Field  string
	Target Collection
	ID     string
}

// Validator is implemented by records that carry write-time invariants.
type Validator interface {
	Validate() error
}

// Referencer is implemented by records holding foreign keys.
type Referencer interface {
	References() []Reference
}
