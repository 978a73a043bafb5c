package parser

import "strconv"

const (
	// closeMarker is the literal the exchange prints in the timestamp
	// column once a stock's session has closed for the day.
	closeMarker = "Cierre"
	// timestampColumn is the position of the time field inside an
	// extracted record.
	timestampColumn = 2

	// ledgerUnset marks an entity the ledger knows about but has not seen
	// a timestamp for yet.
	ledgerUnset = -1
	// ledgerClosed marks an entity whose session has closed; no further
	// entries are expected until the next trading day. It doubles as the
	// encoding of any timestamp that fails to parse.
	ledgerClosed = 0
)

// seedLedger initializes the ledger once: only when it is still empty and a
// non-empty name universe is available. Every name starts at the unset
// sentinel, distinct from any real timestamp.
func (p *Parser) seedLedger(names []string) {
	if len(p.ledger) > 0 || len(names) == 0 {
		return
	}
	for _, name := range names {
		p.ledger[name] = ledgerUnset
	}
}

// dedup runs a batch through the timestamp ledger, keeping only records
// whose timestamp differs from the last one recorded for that entity. The
// comparison is inequality, not ordering: an entry is admitted whenever its
// timestamp changed at all, which also re-admits out-of-order snapshots.
// A close-marker entry carries no price data; it is dropped and pins the
// entity's slot to the closed sentinel.
func (p *Parser) dedup(batch []Record) []Record {
	kept := make([]Record, 0, len(batch))
	for _, rec := range batch {
		name := rec.Name()
		ts := rec.Timestamp()

		if ts == closeMarker {
			p.ledger[name] = ledgerClosed
			continue
		}

		current := encodeTimestamp(ts)
		last, ok := p.ledger[name]
		if !ok {
			// An entity added to the index after seeding.
			last = ledgerUnset
		}
		if last != current {
			kept = append(kept, rec)
			p.ledger[name] = current
		}
	}
	return kept
}

// encodeTimestamp flattens "15:19:51" into 151951 so timestamps compare as
// plain integers. Anything that does not reduce to digits encodes as the
// zero value.
func encodeTimestamp(ts string) int {
	planar := make([]byte, 0, len(ts))
	for i := 0; i < len(ts); i++ {
		if ts[i] != ':' {
			planar = append(planar, ts[i])
		}
	}
	n, err := strconv.Atoi(string(planar))
	if err != nil {
		return ledgerClosed
	}
	return n
}

// Ledger returns a copy of the per-entity timestamp ledger, suitable for
// persisting between runs.
func (p *Parser) Ledger() map[string]int {
	snapshot := make(map[string]int, len(p.ledger))
	for name, ts := range p.ledger {
		snapshot[name] = ts
	}
	return snapshot
}

// RestoreLedger replaces the ledger with a previously saved snapshot. A nil
// or empty snapshot leaves the parser ready to seed itself from data.
func (p *Parser) RestoreLedger(snapshot map[string]int) {
	p.ledger = make(map[string]int, len(snapshot))
	for name, ts := range snapshot {
		p.ledger[name] = ts
	}
}
