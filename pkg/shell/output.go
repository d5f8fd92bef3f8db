package shell

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Output writes CRLF terminated response lines. It is safe for concurrent use
// so the command loop and the periodic sampler never interleave within a line.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

// NewOutput creates an Output writing to w.
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// Println writes the operands separated by spaces and terminated by CRLF.
func (o *Output) Println(a ...any) {
	o.write(fmt.Sprintln(a...))
}

// Printf formats according to format and terminates the line with CRLF.
func (o *Output) Printf(format string, a ...any) {
	o.write(fmt.Sprintf(format, a...) + "\n")
}

// write replaces the trailing LF with CRLF.
func (o *Output) write(s string) {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1] + "\r\n"
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := io.WriteString(o.w, s); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
