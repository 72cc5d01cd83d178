package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "1234", CreatedAt: "2025-03-10T09:00:00Z"})
	require.NoError(t, err)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "1234", decoded.ID)
	assert.Equal(t, "2025-03-10T09:00:00Z", decoded.CreatedAt)
}

func TestDecodeCursor_BadToken(t *testing.T) {
	_, err := DecodeCursor("not base64!!")
	assert.Error(t, err)
}

type row struct{ ID string }

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(r *row) string { return r.ID }

	info := BuildCursorPageInfo([]*row{}, 2, extract)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	// fetched limit+1: there is another page, cursor points at the page's last row
	info = BuildCursorPageInfo([]*row{{"a"}, {"b"}, {"c"}}, 2, extract)
	assert.True(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)

	info = BuildCursorPageInfo([]*row{{"a"}, {"b"}}, 2, extract)
	assert.False(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)
}
