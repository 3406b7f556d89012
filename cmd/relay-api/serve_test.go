package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/gemini-relay/internal/config"
	"github.com/PabloGalante/gemini-relay/internal/domain"
)

func TestOpenJournalBackends(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := openJournal(ctx, &config.Config{JournalBackend: config.JournalNone})
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()

	store, closeFn, err = openJournal(ctx, &config.Config{JournalBackend: config.JournalMemory})
	require.NoError(t, err)
	require.NotNil(t, store)
	closeFn()

	store, closeFn, err = openJournal(ctx, &config.Config{
		JournalBackend: config.JournalSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "j.db"),
	})
	require.NoError(t, err)
	require.NoError(t, store.AppendExchange(ctx, &domain.ExchangeRecord{Prompt: "p", Response: "r"}))
	closeFn()
}

func TestApplyFlags(t *testing.T) {
	flagPort, flagModel = "9999", "gemini-2.5-pro"
	t.Cleanup(func() { flagPort, flagModel = "", "" })

	c := &config.Config{Port: "3000", ModelName: config.DefaultModelName}
	applyFlags(c)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "gemini-2.5-pro", c.ModelName)
}

func TestVersionDoesNotNeedAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), serviceName)
}

func TestServeRefusesToStartWithoutAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	rootCmd.SetArgs([]string{"serve"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
}
