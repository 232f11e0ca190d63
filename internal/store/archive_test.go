package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveStore_SaveCreatesTimestampedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewArchiveStore(dir)
	require.NoError(t, err)

	rec := record("conv_1", "post_call_transcription", 1700000001, `{"data":{}}`)
	require.NoError(t, st.Save(ctx, rec))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1700000001_post_call_transcription_conv_1.json", entries[0].Name())
}

func TestArchiveStore_FilenameFallbacks(t *testing.T) {
	st := &ArchiveStore{dir: "unused"}

	rec := record("", "", 0, `{}`)
	// Event timestamp falls back to the receive time in milliseconds.
	assert.Equal(t, "1700000000000_unknown_no_conversation.json", st.filename(rec))

	rec = record("a/b c", "post_call_audio", 5, `{}`)
	assert.Equal(t, "5_post_call_audio_a_b_c.json", st.filename(rec))
}

func TestArchiveStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	st, err := NewArchiveStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, record("conv_a", "t", 1700000001, `{"n":1}`)))
	require.NoError(t, st.Save(ctx, record("conv_b", "t", 1700000002, `{"n":2}`)))
	require.NoError(t, st.Save(ctx, record("conv_c", "t", 1700000003, `{"n":3}`)))

	raw, err := st.Latest(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":3}`, string(raw))

	items, err := st.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.JSONEq(t, `{"n":3}`, string(items[0]))
	assert.JSONEq(t, `{"n":2}`, string(items[1]))
}

func TestArchiveStore_GetByConversation(t *testing.T) {
	ctx := context.Background()
	st, err := NewArchiveStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, record("conv_1", "t", 1700000001, `{"n":1}`)))
	require.NoError(t, st.Save(ctx, record("conv_2", "t", 1700000002, `{"n":2}`)))
	// Same conversation again; newer event must win.
	require.NoError(t, st.Save(ctx, record("conv_1", "t", 1700000003, `{"n":3}`)))

	raw, err := st.GetByConversation(ctx, "conv_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":3}`, string(raw))

	raw, err = st.GetByConversation(ctx, "conv_missing")
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = st.GetByConversation(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestArchiveStore_EmptyStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewArchiveStore(t.TempDir())
	require.NoError(t, err)

	raw, err := st.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, raw)

	items, err := st.List(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, items)
}
