package shell

import (
	"bufio"
	"errors"
	"io"
)

const (
	// DefaultMaxLine is the longest line accepted; extra characters are dropped.
	DefaultMaxLine = 80

	keyBackspace = 0x08
	keyDelete    = 0x7f
	keyCR        = '\r'
	keyLF        = '\n'
)

// LineReader assembles lines from a byte stream the way a serial terminal
// sends them: a carriage return ends the line, backspace and delete remove the
// previous character, uppercase letters are folded to lowercase and other
// control characters are ignored.
type LineReader struct {
	r       *bufio.Reader
	echo    io.Writer
	maxLen  int
	onStart func()
	lastCR  bool
}

// NewLineReader creates a LineReader reading from r. When echo is not nil,
// accepted characters are echoed back to it.
func NewLineReader(r io.Reader, maxLen int, echo io.Writer) *LineReader {
	if maxLen <= 0 {
		maxLen = DefaultMaxLine
	}
	return &LineReader{
		r:      bufio.NewReader(r),
		echo:   echo,
		maxLen: maxLen,
	}
}

// OnLineStart registers fn to be called when the first byte of a new line
// arrives.
func (lr *LineReader) OnLineStart(fn func()) {
	lr.onStart = fn
}

// ReadLine blocks until a complete line is available. At end of input a
// pending partial line is returned first, then io.EOF.
func (lr *LineReader) ReadLine() (string, error) {
	buf := make([]byte, 0, lr.maxLen)
	started := false

	for {
		c, err := lr.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && started {
				return string(buf), nil
			}
			return "", err
		}

		// LF directly after CR belongs to the same line ending.
		if c == keyLF && lr.lastCR {
			lr.lastCR = false
			continue
		}
		lr.lastCR = c == keyCR

		if !started {
			started = true
			if lr.onStart != nil {
				lr.onStart()
			}
		}

		switch {
		case c == keyCR || c == keyLF:
			lr.write("\r\n")
			return string(buf), nil
		case c == keyBackspace || c == keyDelete:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				lr.write("\b \b")
			}
		case c >= ' ' && c < keyDelete:
			if len(buf) >= lr.maxLen {
				continue
			}
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			buf = append(buf, c)
			lr.write(string(c))
		}
	}
}

func (lr *LineReader) write(s string) {
	if lr.echo == nil {
		return
	}
	_, _ = io.WriteString(lr.echo, s)
}
