package rtsp

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadResponse(t *testing.T) {
	resp, err := ReadResponse(reader("RTSP/1.0 200 OK\r\nCSeq: 3\r\nSession: 4093545028\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "RTSP/1.0", resp.Version)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Reason)

	cseq, ok := resp.Header("CSeq")
	require.True(t, ok)
	assert.Equal(t, "3", cseq)

	session, ok := resp.Header("Session")
	require.True(t, ok)
	assert.Equal(t, "4093545028", session)
}

func TestReadResponseHeaderCasing(t *testing.T) {
	resp, err := ReadResponse(reader("RTSP/1.0 200 OK\r\ncseq: 1\r\nSESSION: 42\r\n\r\n"))
	require.NoError(t, err)

	cseq, ok := resp.Header("CSeq")
	require.True(t, ok)
	assert.Equal(t, "1", cseq)

	session, ok := resp.Header("session")
	require.True(t, ok)
	assert.Equal(t, "42", session)
}

func TestReadResponseRepeatedHeaderLastWins(t *testing.T) {
	resp, err := ReadResponse(reader("RTSP/1.0 200 OK\r\nSession: 1\r\nSession: 2\r\n\r\n"))
	require.NoError(t, err)

	session, ok := resp.Header("Session")
	require.True(t, ok)
	assert.Equal(t, "2", session)
}

func TestReadResponseBareLineFeeds(t *testing.T) {
	// The canonical terminator is CRLF, but a bare LF is tolerated on
	// the read side.
	resp, err := ReadResponse(reader("RTSP/1.0 200 OK\nCSeq: 5\n\n"))
	require.NoError(t, err)

	cseq, ok := resp.Header("CSeq")
	require.True(t, ok)
	assert.Equal(t, "5", cseq)
}

func TestReadResponseMultiWordReason(t *testing.T) {
	resp, err := ReadResponse(reader("RTSP/1.0 454 Session Not Found\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 454, resp.StatusCode)
	assert.Equal(t, "Session Not Found", resp.Reason)
}

func TestReadResponseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "Status line with two fields",
			input: "RTSP/1.0 200\r\n\r\n",
			want:  ErrMalformedStatusLine,
		},
		{
			name:  "Non-numeric status code",
			input: "RTSP/1.0 abc OK\r\n\r\n",
			want:  ErrMalformedStatusLine,
		},
		{
			name:  "Header without colon",
			input: "RTSP/1.0 200 OK\r\nbroken header line\r\n\r\n",
			want:  ErrMalformedHeader,
		},
		{
			name:  "Stream ends before blank line",
			input: "RTSP/1.0 200 OK\r\nCSeq: 1\r\n",
			want:  ErrUnexpectedEOF,
		},
		{
			name:  "Empty stream",
			input: "",
			want:  ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ReadResponse(reader(tt.input))
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
