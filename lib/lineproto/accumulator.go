// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

// Accumulator collects bytes until a newline completes a line. Its
// length never reaches the configured limit: when it would, the partial
// line is dropped and accumulation restarts with the next byte.
//
// An Accumulator is owned by a single goroutine.
type Accumulator struct {
	buffer []byte
	limit  int
}

// NewAccumulator returns an accumulator that discards partial lines of
// limit bytes or more. A non-positive limit selects MaxLineLength.
func NewAccumulator(limit int) *Accumulator {
	if limit <= 0 {
		limit = MaxLineLength
	}
	return &Accumulator{
		buffer: make([]byte, 0, limit),
		limit:  limit,
	}
}

// Feed consumes data. onLine receives each completed line without its
// terminator; the slice is only valid for the duration of the call.
// onOverflow runs each time a partial line hits the limit and is
// dropped. NUL bytes are frame separators and are skipped.
func (a *Accumulator) Feed(data []byte, onLine func(line []byte), onOverflow func(dropped int)) {
	for _, b := range data {
		switch b {
		case '\n':
			onLine(a.buffer)
			a.buffer = a.buffer[:0]
		case 0:
		default:
			a.buffer = append(a.buffer, b)
			if len(a.buffer) >= a.limit {
				dropped := len(a.buffer)
				a.buffer = a.buffer[:0]
				onOverflow(dropped)
			}
		}
	}
}

// Len returns the number of buffered bytes of the current partial line.
func (a *Accumulator) Len() int {
	return len(a.buffer)
}

// Reset discards any partial line.
func (a *Accumulator) Reset() {
	a.buffer = a.buffer[:0]
}
