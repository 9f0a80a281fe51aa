package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplitHeader_BlankLineSeparatesHeaderAndBody(t *testing.T) {
	input := []byte("title: Hello\ndate: 2021-01-01\n\n# Heading\n\nParagraph\n")

	header, body, err := SplitHeader(input)
	require.NoError(t, err)
	require.Equal(t, "title: Hello\ndate: 2021-01-01\n", string(header))
	require.Equal(t, "# Heading\n\nParagraph\n", string(body))
}

func TestSplitHeader_WhitespaceOnlyLineCountsAsBlank(t *testing.T) {
	input := []byte("date: 2021-01-01\n   \t\nBody")

	header, body, err := SplitHeader(input)
	require.NoError(t, err)
	require.Equal(t, "date: 2021-01-01\n", string(header))
	require.Equal(t, "Body", string(body))
}

func TestSplitHeader_CRLF(t *testing.T) {
	input := []byte("date: 2021-01-01\r\n\r\nBody\r\n")

	header, body, err := SplitHeader(input)
	require.NoError(t, err)
	require.Equal(t, "date: 2021-01-01\r\n", string(header))
	require.Equal(t, "Body\r\n", string(body))
}

func TestSplitHeader_NoBlankLineIsAllHeader(t *testing.T) {
	input := []byte("date: 2021-01-01\ntitle: x")

	header, body, err := SplitHeader(input)
	require.NoError(t, err)
	require.Equal(t, input, header)
	require.Empty(t, body)
}

func TestSplitHeader_LeadingBlankLineMeansEmptyHeader(t *testing.T) {
	header, body, err := SplitHeader([]byte("\nJust a body"))
	require.NoError(t, err)
	require.Empty(t, header)
	require.Equal(t, "Just a body", string(body))
}

func TestSplitHeader_DelimitedFrontmatter(t *testing.T) {
	input := []byte("---\ndate: 2021-01-01\n\ntitle: spaced\n---\n# Title\n")

	header, body, err := SplitHeader(input)
	require.NoError(t, err)
	require.Equal(t, "date: 2021-01-01\n\ntitle: spaced\n", string(header))
	require.Equal(t, "# Title\n", string(body))
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, _, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplitHeader_DocumentMarkerWithoutClosingFence(t *testing.T) {
	header, body, err := SplitHeader([]byte("---\ntitle: T\ndate: 2021-01-01\n\nbody\n"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: T\ndate: 2021-01-01\n", string(header))
	require.Equal(t, "body\n", string(body))

	fields, err := ParseHeader(header)
	require.NoError(t, err)
	require.Equal(t, "T", fields["title"])
	require.Contains(t, fields, "date")
}

func TestParseHeader_ScalarTypes(t *testing.T) {
	fields, err := ParseHeader([]byte("title: Hello\npublished: true\ndate: 2021-03-01\nreading_time: 4\n"))
	require.NoError(t, err)
	require.Equal(t, "Hello", fields["title"])
	require.Equal(t, true, fields["published"])
	require.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), fields["date"])
	require.Equal(t, 4, fields["reading_time"])
}

func TestParseHeader_QuotedDateStaysString(t *testing.T) {
	fields, err := ParseHeader([]byte("date: \"2021-03-01\"\n"))
	require.NoError(t, err)
	require.Equal(t, "2021-03-01", fields["date"])
}

func TestParseHeader_LastDuplicateWins(t *testing.T) {
	fields, err := ParseHeader([]byte("title: First\ntitle: Second\n"))
	require.NoError(t, err)
	require.Equal(t, "Second", fields["title"])
	require.Len(t, fields, 1)
}

func TestParseHeader_Empty_ReturnsEmptyMap(t *testing.T) {
	for _, in := range []string{"", "   \n", "# only a comment\n"} {
		fields, err := ParseHeader([]byte(in))
		require.NoError(t, err, "input %q", in)
		require.Empty(t, fields)
	}
}

func TestParseHeader_NotAMapping(t *testing.T) {
	_, err := ParseHeader([]byte("just some words"))
	require.ErrorIs(t, err, ErrNotMapping)

	_, err = ParseHeader([]byte("- a\n- b\n"))
	require.ErrorIs(t, err, ErrNotMapping)
}

func TestParseHeader_InvalidSyntax(t *testing.T) {
	_, err := ParseHeader([]byte("title: Hello: World\n"))
	require.Error(t, err)

	_, err = ParseHeader([]byte("title: [unclosed\n"))
	require.Error(t, err)
}
