package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	out := &bytes.Buffer{}

	got, err := GetSimpleText(readerFromLines("  hello  "), "- Enter text", out)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Contains(t, out.String(), "- Enter text")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	out := &bytes.Buffer{}

	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("no newline")), "p", out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)
}

func TestGetMultiline_StopsOnEmptyLine(t *testing.T) {
	out := &bytes.Buffer{}

	got, err := GetMultiline(readerFromLines("line one", "line two", "", "ignored"), "- Enter note", out)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)
}
