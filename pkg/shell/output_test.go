package shell

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf)

	out.Println("color", 3, "stored.")
	out.Printf("(r: %d,g: %d,b: %d).", 1, 2, 3)
	out.Println()

	assert.Equal(t, "color 3 stored.\r\n(r: 1,g: 2,b: 3).\r\n\r\n", buf.String())
}

func TestOutput_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				out.Printf("line %d", j)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	assert.Len(t, lines, 400)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "line "), l)
	}
}
