package executable

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	ex := &Executable{Code: []byte{0x2a, 0x1a, 0x06, 0x2a, 0x1a, 0x07, 0x02}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ex))

	got, err := Read(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(ex, got); diff != "" {
		t.Errorf("executable mismatch (-want +got):\n%s", diff)
	}
}

func TestReadInvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Executable{Code: []byte{0x02}}))

	b := buf.Bytes()
	b[3] = 'X'
	_, err := Read(bytes.NewReader(b))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReadCorruptedCode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Executable{Code: []byte{0x02, 0x03}}))

	b := buf.Bytes()
	b[len(b)-1] ^= 0x01
	_, err := Read(bytes.NewReader(b))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Executable{Code: []byte{0x02, 0x03, 0x04}}))

	b := buf.Bytes()
	_, err := Read(bytes.NewReader(b[:len(b)-1]))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Required)
	assert.Equal(t, 2, re.Actual)
}
