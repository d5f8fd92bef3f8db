package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		kinds []Kind
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "only delimiters",
			input: "  \t-- ",
		},
		{
			name:  "single word",
			input: "trigger",
			want:  []string{"trigger"},
			kinds: []Kind{Alpha},
		},
		{
			name:  "word and number",
			input: "calibrate 2000",
			want:  []string{"calibrate", "2000"},
			kinds: []Kind{Alpha, Numeric},
		},
		{
			name:  "kind change splits",
			input: "color5",
			want:  []string{"color", "5"},
			kinds: []Kind{Alpha, Numeric},
		},
		{
			name:  "decimal stays numeric",
			input: "rgb 1.5,2 x",
			want:  []string{"rgb", "1.5,2", "x"},
			kinds: []Kind{Alpha, Numeric, Alpha},
		},
		{
			name:  "mixed delimiters",
			input: "  led;on  ",
			want:  []string{"led", "on"},
			kinds: []Kind{Alpha, Alpha},
		},
		{
			name:  "uppercase is a delimiter",
			input: "aBc",
			want:  []string{"a", "c"},
			kinds: []Kind{Alpha, Alpha},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := Tokenize(tt.input)
			assert.Equal(t, tt.input, line.Text())
			require.Equal(t, len(tt.want), line.Len())
			for i := range tt.want {
				assert.Equal(t, tt.want[i], line.String(i))
				assert.Equal(t, tt.kinds[i], line.Kind(i))
			}
		})
	}
}

func TestTokenize_Offsets(t *testing.T) {
	line := Tokenize(" delta 25")
	fields := line.Fields()

	require.Len(t, fields, 2)
	assert.Equal(t, Field{Offset: 1, Length: 5, Kind: Alpha}, fields[0])
	assert.Equal(t, Field{Offset: 7, Length: 2, Kind: Numeric}, fields[1])

	fields[0].Length = 1
	assert.Equal(t, "delta", line.String(0))
}

func TestLine_OutOfRange(t *testing.T) {
	line := Tokenize("match")

	assert.Equal(t, "", line.String(1))
	assert.Equal(t, "", line.String(-1))
	assert.Equal(t, Kind(0), line.Kind(3))
	assert.False(t, line.Is(1, "off"))
}

func TestLine_Int(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "zero", input: "x 0", want: 0},
		{name: "leading zeros", input: "x 007", want: 7},
		{name: "large", input: "x 500000", want: 500000},
		{name: "missing", input: "x", wantErr: true},
		{name: "alpha", input: "x max", wantErr: true},
		{name: "decimal point", input: "x 1.5", wantErr: true},
		{name: "comma", input: "x 1,5", wantErr: true},
		{name: "overflow", input: "x 99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input).Int(1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "alpha", Alpha.String())
	assert.Equal(t, "numeric", Numeric.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
