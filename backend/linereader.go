package backend

import (
	"bufio"
	"io"
)

// lineReader only ever yields whole newline-terminated lines. A trace that
// is reloaded while its writer is still appending to it ends in a partial
// row; the partial row is held back until its newline arrives instead of
// reaching the CSV parser.
type lineReader struct {
	r       *bufio.Reader
	partial []byte
}

var _ io.Reader = (*lineReader)(nil)

func NewLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	data, err := l.r.ReadBytes(byte('\n'))
	if err != nil {
		l.partial = append(l.partial, data...)
		return 0, io.EOF
	}
	var n int
	if len(l.partial) > 0 {
		n = copy(b, l.partial)
		l.partial = l.partial[:copy(l.partial, l.partial[n:])]
		b = b[n:]
	}
	return n + copy(b, data), nil
}

// Pending returns how many bytes of an unterminated line are held back.
func (l *lineReader) Pending() int {
	return len(l.partial)
}
