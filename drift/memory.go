package drift

// DefaultMemorySize is the number of observations a Memory keeps when no size is given.
const DefaultMemorySize = 5

// agitationHits is how many strongly negative entries within the window count as agitation.
const agitationHits = 2

// MemoryEntry is one logged observation.
type MemoryEntry struct {
	Baseline   string  `json:"baseline"`
	Incoming   string  `json:"incoming"`
	DriftScore float64 `json:"drift_score"`
}

// Memory is a fixed-size FIFO of recent observations. Once full, each Log evicts
// the oldest entry.
//
// A Memory belongs to one session and is not safe for concurrent use; callers
// sharing one across goroutines must serialize Log and RecentAgitation.
type Memory struct {
	entries []MemoryEntry
	start   int
	count   int
}

// NewMemory returns an empty memory holding up to capacity entries
// (DefaultMemorySize when capacity < 1).
func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = DefaultMemorySize
	}
	return &Memory{entries: make([]MemoryEntry, capacity)}
}

// Log appends an observation, evicting the oldest one when full.
func (m *Memory) Log(baseline, incoming string, driftScore float64) {
	e := MemoryEntry{Baseline: baseline, Incoming: incoming, DriftScore: driftScore}
	if m.count < len(m.entries) {
		m.entries[(m.start+m.count)%len(m.entries)] = e
		m.count++
		return
	}
	m.entries[m.start] = e
	m.start = (m.start + 1) % len(m.entries)
}

// Len returns the number of entries held.
func (m *Memory) Len() int { return m.count }

// Cap returns the configured capacity.
func (m *Memory) Cap() int { return len(m.entries) }

// Entries returns a copy of the held entries, oldest first.
func (m *Memory) Entries() []MemoryEntry {
	out := make([]MemoryEntry, 0, m.count)
	for i := 0; i < m.count; i++ {
		out = append(out, m.entries[(m.start+i)%len(m.entries)])
	}
	return out
}

// RecentAgitation reports whether at least two of the last window entries (or all
// entries, if fewer) have a drift score below threshold.
func (m *Memory) RecentAgitation(threshold float64, window int) bool {
	if window < 1 {
		return false
	}
	from := m.count - window
	if from < 0 {
		from = 0
	}
	hits := 0
	for i := from; i < m.count; i++ {
		if m.entries[(m.start+i)%len(m.entries)].DriftScore < threshold {
			hits++
		}
	}
	return hits >= agitationHits
}
