package recorder

// Row is one emitted record together with the file it came from. Rendered
// is the record in its wire form; it is the output contract and is stored
// untouched.
type Row struct {
	SourceFile string
	Name       string
	Timestamp  string // time field of stock-shaped records, empty for the index shape
	Rendered   string
}

// Recorder persists emitted records for later analysis.
type Recorder interface {
	RecordBatch(rows []Row) error
	Close() error
}
