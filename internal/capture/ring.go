package capture

import (
	"sync/atomic"
)

// ringMatrix is the fixed-depth sliding window of analysis frames. One
// writer (the capture callback) pushes rows; readers snapshot newest-first.
// Synchronization is a sequence counter: the writer brackets each push with
// two increments and never blocks, readers retry the copy when a push
// overlapped it. Rows store the spectrum in the first half of each row and
// the raw waveform in the second half.
type ringMatrix struct {
	rows int
	cols int
	data []float32

	// head is the physical index of the most recent row, -1 when empty.
	head  atomic.Int64
	count atomic.Int64
	seq   atomic.Uint64

	wrapped func() // invoked once per wraparound, may be nil
}

func newRingMatrix(rows, cols int) *ringMatrix {
	m := &ringMatrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
	m.head.Store(-1)
	return m
}

func (m *ringMatrix) row(physical int) []float32 {
	return m.data[physical*m.cols : (physical+1)*m.cols]
}

// push commits one frame as the new most-recent row. Writer-side only; no
// allocation, no locks.
func (m *ringMatrix) push(fft, wave []float32) {
	next := int((m.head.Load() + 1) % int64(m.rows))

	m.seq.Add(1) // odd: write in progress
	slot := m.row(next)
	copy(slot[:m.cols/2], fft)
	copy(slot[m.cols/2:], wave)
	m.head.Store(int64(next))
	if c := m.count.Load(); c < int64(m.rows) {
		m.count.Store(c + 1)
	} else if m.wrapped != nil {
		m.wrapped()
	}
	m.seq.Add(1) // even: committed
}

// frameCount returns how many rows hold committed data, at most rows.
func (m *ringMatrix) frameCount() int {
	return int(m.count.Load())
}

// snapshot copies up to len(dst) committed rows into dst, newest first, and
// returns the number of rows copied. Each destination row must hold cols
// values. The copy retries while a concurrent push overlaps it.
func (m *ringMatrix) snapshot(dst [][]float32) int {
	for {
		seqBefore := m.seq.Load()
		if seqBefore%2 != 0 {
			continue // push in flight, reread
		}

		head := int(m.head.Load())
		count := int(m.count.Load())
		if count == 0 {
			return 0
		}
		n := min(count, len(dst))
		for i := 0; i < n; i++ {
			physical := (head - i + m.rows) % m.rows
			copy(dst[i], m.row(physical))
		}

		if m.seq.Load() == seqBefore {
			return n
		}
	}
}

// snapshotWave copies the waveform half of the newest row into dst and
// reports whether a committed row existed.
func (m *ringMatrix) snapshotWave(dst []float32) bool {
	for {
		seqBefore := m.seq.Load()
		if seqBefore%2 != 0 {
			continue
		}

		head := int(m.head.Load())
		if m.count.Load() == 0 {
			return false
		}
		copy(dst, m.row(head)[m.cols/2:])

		if m.seq.Load() == seqBefore {
			return true
		}
	}
}
