package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendExchange(ctx, &domain.ExchangeRecord{
		Prompt: "hello", Response: "hi", Model: "m", CreatedAt: base,
	}))
	require.NoError(t, store.AppendExchange(ctx, &domain.ExchangeRecord{
		Prompt: "describe this", Response: "a cat", Model: "m", CreatedAt: base.Add(time.Second),
		AttachmentName: "cat.png", AttachmentMIME: "image/png", AttachmentSize: 10, AttachmentURI: "https://files/1",
	}))

	recs, err := store.ListExchanges(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "describe this", recs[0].Prompt)
	assert.Equal(t, "image/png", recs[0].AttachmentMIME)
	assert.Equal(t, base.Add(time.Second), recs[0].CreatedAt)
	assert.NotEmpty(t, recs[0].ID)

	one, err := store.ListExchanges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "describe this", one[0].Prompt)
}

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.AppendExchange(ctx, &domain.ExchangeRecord{Prompt: "p", Response: "r", Model: "m", CreatedAt: time.Now()}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	recs, err := store.ListExchanges(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
