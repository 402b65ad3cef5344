// Package watch consumes a listener's stdout and reports the first line
// containing the detection marker.
package watch

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"unicode/utf8"
)

const (
	readBufferSize = 64 * 1024

	// DefaultMaxLineSize bounds a single line. Longer lines are skipped.
	DefaultMaxLineSize = 1024 * 1024
)

// PipeReader reads lines from an io.Reader (a child's stdout pipe).
//
// Unlike bufio.Scanner it never stops on a bad line: lines longer than
// the maximum size and lines that are not valid UTF-8 are counted and
// skipped, and reading continues with the next line.
type PipeReader struct {
	reader  io.Reader
	maxLine int

	// Stats (atomic for thread-safety)
	bytesRead    atomic.Int64
	linesRead    atomic.Int64
	linesSkipped atomic.Int64
}

// NewPipeReader creates a line reader. maxLine <= 0 selects DefaultMaxLineSize.
func NewPipeReader(r io.Reader, maxLine int) *PipeReader {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineSize
	}
	return &PipeReader{
		reader:  r,
		maxLine: maxLine,
	}
}

// Run calls fn for every decoded line until EOF, a read error, or fn
// returns true. A closed pipe is reported as a clean EOF.
func (p *PipeReader) Run(fn func(line string) (stop bool)) error {
	br := bufio.NewReaderSize(p.reader, readBufferSize)

	var (
		buf     []byte
		tooLong bool
	)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if len(chunk) > 0 {
			p.bytesRead.Add(int64(len(chunk)))
			if !tooLong {
				if len(buf)+len(chunk) > p.maxLine {
					tooLong = true
					buf = buf[:0]
				} else {
					buf = append(buf, chunk...)
				}
			}
		}

		if err != nil {
			// Flush a final unterminated line.
			if tooLong {
				p.linesSkipped.Add(1)
			} else if len(buf) > 0 && p.emit(buf, fn) {
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}

		if isPrefix {
			continue
		}

		p.bytesRead.Add(1) // newline
		if tooLong {
			p.linesSkipped.Add(1)
			tooLong = false
			buf = buf[:0]
			continue
		}

		if p.emit(buf, fn) {
			return nil
		}
		buf = buf[:0]
	}
}

func (p *PipeReader) emit(raw []byte, fn func(string) bool) bool {
	if !utf8.Valid(raw) {
		p.linesSkipped.Add(1)
		return false
	}
	p.linesRead.Add(1)
	return fn(string(raw))
}

// Stats returns (bytesRead, linesRead, linesSkipped).
func (p *PipeReader) Stats() (bytesRead, linesRead, linesSkipped int64) {
	return p.bytesRead.Load(), p.linesRead.Load(), p.linesSkipped.Load()
}
