// Package errjournal is the append-only diagnostic ring. Every latched
// fault, transient warning and fatal condition in the LVDU core is
// posted here as a timestamped errcode.Code; nothing branches on the
// journal's contents -- it exists purely for observability.
//
// The ring itself is grounded on x/shmring's fixed power-of-two capacity,
// overwrite-oldest design, adapted from a byte-span API to a slice of
// fixed-size Entry records: a journal entry can never be partially
// written or torn the way a byte stream can, so the two-phase
// acquire/commit dance collapses to a single Push.
package errjournal

import (
	"sync"

	"lvducore/errcode"
	"lvducore/x/conv"
)

// Entry is one journal record.
type Entry struct {
	Code errcode.Code
	TSms int64
}

// AppendTo renders the entry as "<tsMs>ms <code>" into buf without
// allocating, using conv's digit writers instead of fmt/strconv -- the
// journal is diagnostic output a constrained build still needs to print
// over a UART with no heap pressure.
func (e Entry) AppendTo(buf []byte) []byte {
	var tmp [20]byte
	buf = append(buf, conv.Itoa(tmp[:], e.TSms)...)
	buf = append(buf, "ms "...)
	buf = append(buf, string(e.Code)...)
	return buf
}

// Journal is a fixed-capacity ring; once full, Push overwrites the oldest
// entry. Capacity must be a power of two (mirrors x/shmring's invariant
// and lets index wraparound use a mask instead of a modulo).
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	mask    uint32
	wr      uint32 // next write index (monotonic, mod len via mask)
	count   uint32 // number of valid entries, saturates at len(entries)
}

// New returns a Journal with the given power-of-two capacity (>= 2).
func New(capacity int) *Journal {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		panic("errjournal: capacity must be a power of two >= 2")
	}
	return &Journal{
		entries: make([]Entry, capacity),
		mask:    uint32(capacity - 1),
	}
}

// Push appends a code at the given timestamp, overwriting the oldest
// entry if the ring is full.
func (j *Journal) Push(code errcode.Code, tsMs int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[j.wr&j.mask] = Entry{Code: code, TSms: tsMs}
	j.wr++
	if j.count < uint32(len(j.entries)) {
		j.count++
	}
}

// Len returns the number of valid entries currently held.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return int(j.count)
}

// Entries returns a copy of all valid entries, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, j.count)
	start := (j.wr - j.count) & j.mask
	for i := uint32(0); i < j.count; i++ {
		out[i] = j.entries[(start+i)&j.mask]
	}
	return out
}

// Last returns the most recently pushed entry and true, or the zero
// Entry and false if the journal is empty.
func (j *Journal) Last() (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.count == 0 {
		return Entry{}, false
	}
	idx := (j.wr - 1) & j.mask
	return j.entries[idx], true
}
