package drift

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/theimaginaryfoundation/tonal-drift/drift/fileutils"
)

// JournalResult is the subset of a Result kept in the journal.
type JournalResult struct {
	Label      Label   `json:"label"`
	Rationale  string  `json:"rationale"`
	DriftScore float64 `json:"drift_score"`
}

// JournalRecord is one line of the drift journal and of a session export.
type JournalRecord struct {
	Timestamp string        `json:"timestamp"`
	Baseline  string        `json:"baseline"`
	Incoming  string        `json:"incoming"`
	Result    JournalResult `json:"result"`
	Heatmap   []TokenScore  `json:"heatmap"`
}

// Journal appends classification records to a JSONL file. An empty path makes
// Record build the record without writing it.
type Journal struct {
	path  string
	clock clockwork.Clock
}

// NewJournal returns a journal writing to path. A nil clock uses wall time.
func NewJournal(path string, clock clockwork.Clock) *Journal {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Journal{path: path, clock: clock}
}

// Path returns the file backing the journal, or "".
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Record builds the journal entry for one classification and appends it to the
// journal file when one is configured.
func (j *Journal) Record(baseline, incoming string, r Result, heatmap []TokenScore) (JournalRecord, error) {
	clock := clockwork.Clock(clockwork.NewRealClock())
	if j != nil && j.clock != nil {
		clock = j.clock
	}
	if heatmap == nil {
		heatmap = []TokenScore{}
	}
	rec := JournalRecord{
		Timestamp: clock.Now().Format(time.RFC3339Nano),
		Baseline:  baseline,
		Incoming:  incoming,
		Result: JournalResult{
			Label:      r.Label,
			Rationale:  r.Rationale,
			DriftScore: r.DriftScore,
		},
		Heatmap: heatmap,
	}
	if j.Path() == "" {
		return rec, nil
	}
	if err := fileutils.AppendJSONLine(j.path, rec); err != nil {
		return rec, fmt.Errorf("Journal.Record: %w", err)
	}
	return rec, nil
}

// ExportSession writes the accumulated records to path as JSONL, replacing any
// existing file.
func ExportSession(path string, records []JournalRecord) error {
	if path == "" {
		return errors.New("ExportSession: path is empty")
	}
	if err := fileutils.WriteJSONLinesAtomic(path, records); err != nil {
		return fmt.Errorf("ExportSession: %w", err)
	}
	return nil
}
