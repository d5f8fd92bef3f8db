package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a field.
type Kind int

const (
	Alpha Kind = iota + 1
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Alpha:
		return "alpha"
	case Numeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Field is a token inside a line: the offset of its first character, its
// length and its kind.
type Field struct {
	Offset int
	Length int
	Kind   Kind
}

// Line is a tokenized input line. The text is never modified; fields index
// into it.
type Line struct {
	text   string
	fields []Field
}

// classify returns the kind of c, or 0 if c is a delimiter.
func classify(c byte) Kind {
	switch {
	case 'a' <= c && c <= 'z':
		return Alpha
	case '0' <= c && c <= '9', c == '.', c == ',':
		return Numeric
	default:
		return 0
	}
}

// Tokenize splits text into fields. A run of lowercase letters is an Alpha
// field, a run of digits, '.' and ',' is a Numeric field, anything else is a
// delimiter. A change of kind also starts a new field, so "color5" yields
// "color" and "5".
func Tokenize(text string) Line {
	line := Line{text: text}

	var current Kind
	for i := 0; i < len(text); i++ {
		k := classify(text[i])
		switch {
		case k == 0:
			current = 0
		case k != current:
			line.fields = append(line.fields, Field{Offset: i, Length: 1, Kind: k})
			current = k
		default:
			line.fields[len(line.fields)-1].Length++
		}
	}

	return line
}

// Text returns the original line.
func (l Line) Text() string {
	return l.text
}

// Len returns the number of fields.
func (l Line) Len() int {
	return len(l.fields)
}

// Fields returns a copy of the field list.
func (l Line) Fields() []Field {
	result := make([]Field, len(l.fields))
	copy(result, l.fields)
	return result
}

// Field returns field i.
func (l Line) Field(i int) Field {
	return l.fields[i]
}

// Kind returns the kind of field i, or 0 if i is out of range.
func (l Line) Kind(i int) Kind {
	if i < 0 || i >= len(l.fields) {
		return 0
	}
	return l.fields[i].Kind
}

// String returns the text of field i, or "" if i is out of range.
func (l Line) String(i int) string {
	if i < 0 || i >= len(l.fields) {
		return ""
	}
	f := l.fields[i]
	return l.text[f.Offset : f.Offset+f.Length]
}

// Is reports whether field i is exactly word.
func (l Line) Is(i int, word string) bool {
	return l.String(i) == word
}

// Int parses field i as a non-negative decimal integer.
func (l Line) Int(i int) (int, error) {
	if i < 0 || i >= len(l.fields) {
		return 0, fmt.Errorf("field %d: missing", i)
	}
	if l.fields[i].Kind != Numeric {
		return 0, fmt.Errorf("field %d: %q is not a number", i, l.String(i))
	}

	s := l.String(i)
	if strings.ContainsAny(s, ".,") {
		return 0, fmt.Errorf("field %d: %q is not an integer", i, s)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i, err)
	}
	return n, nil
}
