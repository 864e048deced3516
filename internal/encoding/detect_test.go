package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/ecolefin/internal/encoding"
)

const header = "Date;Catégorie;Montant;Type;Libellé\n12/06/2024;Cantine;1 250,00 €;ENTREE;Goûter école\n"

func TestDetect(t *testing.T) {
	win1252, err := charmap.Windows1252.NewEncoder().String(header)
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(header)
	require.NoError(t, err)

	type testCase struct {
		name        string
		input       []byte
		wantCharset encoding.Charset
	}

	tests := []testCase{
		{name: "UTF8", input: []byte(header), wantCharset: encoding.UTF8},
		{name: "UTF8WithBOM", input: append([]byte{0xEF, 0xBB, 0xBF}, header...), wantCharset: encoding.UTF8},
		{name: "UTF16LEWithBOM", input: []byte(utf16le), wantCharset: encoding.UTF16LE},
		{name: "Windows1252", input: []byte(win1252), wantCharset: encoding.Windows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, charset, err := encoding.Detect(bytes.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCharset, charset)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, header, string(got))
		})
	}
}

func TestDetect_MultiByteRuneAcrossSniffWindow(t *testing.T) {
	// "é" is two bytes in UTF-8; place it across the 4096-byte boundary.
	input := strings.Repeat("a", 4095) + "é;fin\n"

	r, charset, err := encoding.Detect(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(strings.NewReader(""))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
