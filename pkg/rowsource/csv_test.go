package rowsource

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSourceStreamsRowsWithLineNumbers(t *testing.T) {
	input := "academic_id,id_card_number,full_name\n" +
		"A100,C1,Alice\n" +
		"A101,C2,Bob\n"

	src := NewCSV(strings.NewReader(input), int64(len(input)))
	assert.Equal(t, int64(len(input)), src.Size())

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "A100", row.Fields["academic_id"])
	assert.Equal(t, "Alice", row.Fields["full_name"])

	row, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, row.Line)
	assert.Equal(t, "A101", row.Fields["academic_id"])

	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestCSVSourceShortRecordFillsBlanks(t *testing.T) {
	src := NewCSV(strings.NewReader("academic_id,id_card_number,role\nA100,C1\n"), -1)

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "C1", row.Fields["id_card_number"])
	assert.Equal(t, "", row.Fields["role"])
}

func TestCSVSourceTrimsHeaderAndFieldWhitespace(t *testing.T) {
	src := NewCSV(strings.NewReader(" academic_id , full_name \nA100, Alice \n"), -1)

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "A100", row.Fields["academic_id"])
	assert.Equal(t, "Alice", row.Fields["full_name"])
}

func TestCSVSourceEmptyInput(t *testing.T) {
	src := NewCSV(strings.NewReader(""), 0)
	_, err := src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestCSVSourceMalformedQuoteIsAnError(t *testing.T) {
	src := NewCSV(strings.NewReader("a,b\n\"broken,row\n"), -1)
	_, err := src.Next()
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
