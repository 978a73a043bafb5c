package parser

import "strings"

// Separator joins record fields in the rendered output form.
const Separator = ";"

// Record is one extracted row: the configured column values in template
// order. The first field is always the entity name. Records stay structured
// internally and are joined with Separator only at the output boundary.
type Record []string

// String renders the record in its wire form.
func (r Record) String() string {
	return strings.Join(r, Separator)
}

// Name returns the entity name of the record.
func (r Record) Name() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Timestamp returns the field the ledger reads as the record's timestamp,
// or "" for records too short to carry one.
func (r Record) Timestamp() string {
	if timestampColumn < len(r) {
		return r[timestampColumn]
	}
	return ""
}

// stockNames lists the entity name of every record in batch order. It is
// used to seed the timestamp ledger from the data itself, so membership
// changes in the index need no configuration change.
func stockNames(records []Record) []string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name())
	}
	return names
}
