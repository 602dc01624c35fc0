package alignment

import (
	"sync"
)

const (
	fromDiagonal byte = iota + 1
	fromUp            // consumed a token of the first sequence only
	fromLeft          // consumed a token of the second sequence only
)

// buffers larger than this are left to the GC instead of being pooled
const maxPooledCells = 1 << 24

// directions is the flat (m+1)×(n+1) backtrace buffer of one Align call
type directions struct {
	cols  int
	cells []byte
}

var directionsPool = sync.Pool{
	New: func() any { return new(directions) },
}

// acquireDirections hands out a buffer sized for rows×cols. Every cell read
// by the backtrace is written by the fill first, so the buffer is not cleared.
func acquireDirections(rows, cols int) *directions {
	d := directionsPool.Get().(*directions)
	n := rows * cols
	if cap(d.cells) < n {
		d.cells = make([]byte, n)
	} else {
		d.cells = d.cells[:n]
	}
	d.cols = cols
	return d
}

func (d *directions) release() {
	if cap(d.cells) > maxPooledCells {
		d.cells = nil
	}
	d.cols = 0
	directionsPool.Put(d)
}

func (d *directions) set(i, j int, v byte) {
	d.cells[i*d.cols+j] = v
}

func (d *directions) at(i, j int) byte {
	return d.cells[i*d.cols+j]
}
