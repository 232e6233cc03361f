package object

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObject() *Object {
	return &Object{
		SourceName: "sample.cf",
		Code:       []byte{0x2a, 0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x02},
		Labels: []Label{
			{Line: 1, Value: 0, Relative: true, Name: "main"},
			{Line: 4, Value: 0xDEAD, Relative: false, Name: "answer"},
		},
		Links: []Link{
			{Line: 2, Offset: 3, Name: "main"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	o := sampleObject()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, o))

	got, err := Read(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(o, got); diff != "" {
		t.Errorf("object mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripEmptySections(t *testing.T) {
	o := &Object{SourceName: "empty.cf", Code: []byte{0x02}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, o))
	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, o.SourceName, got.SourceName)
	assert.Equal(t, o.Code, got.Code)
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.Links)
}

func TestReadInvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleObject()))

	b := buf.Bytes()
	b[0] = 'X'
	_, err := Read(bytes.NewReader(b))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReadCorruptedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleObject()))

	b := buf.Bytes()
	b[len(b)-1] ^= 0xFF
	_, err := Read(bytes.NewReader(b))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleObject()))

	b := buf.Bytes()
	_, err := Read(bytes.NewReader(b[:len(b)-3]))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.NotZero(t, re.Required)
	assert.Less(t, re.Actual, re.Required)
}

func TestReadTruncatedHeader(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("CATJOB")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestWriteNameTooLong(t *testing.T) {
	o := sampleObject()
	o.Labels[0].Name = strings.Repeat("a", MaxNameLen+1)

	var buf bytes.Buffer
	err := Write(&buf, o)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestMaxLengthNameRoundTrips(t *testing.T) {
	o := sampleObject()
	o.Labels[0].Name = strings.Repeat("a", MaxNameLen)
	o.Links[0].Name = strings.Repeat("a", MaxNameLen)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, o))
	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, o.Labels[0].Name, got.Labels[0].Name)
	assert.Equal(t, o.Links[0].Name, got.Links[0].Name)
}
