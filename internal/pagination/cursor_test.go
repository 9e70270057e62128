package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC)
	encoded := EncodeCursor(42, ts)
	require.NotEmpty(t, encoded)

	cursor, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, int64(42), cursor.LastID)
	assert.True(t, ts.Equal(cursor.Timestamp))
}

func TestEncodeCursor_ZeroID(t *testing.T) {
	assert.Empty(t, EncodeCursor(0, time.Now()))
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	assert.Equal(t, ErrInvalidCursor, err)

	_, err = DecodeCursor("bm8gc2VwYXJhdG9y") // "no separator"
	assert.Equal(t, ErrInvalidCursor, err)

	_, err = DecodeCursor("YWJjfDIwMjUtMDYtMDFUMTI6MzA6MDBa") // "abc|2025-06-01T12:30:00Z"
	assert.Equal(t, ErrInvalidCursor, err)
}
