package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/PabloGalante/gemini-relay/internal/adapters/http"
	"github.com/PabloGalante/gemini-relay/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/gemini-relay/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/gemini-relay/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/gemini-relay/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/gemini-relay/internal/adapters/storage/tempfs"
	"github.com/PabloGalante/gemini-relay/internal/app/conversation"
	journalapp "github.com/PabloGalante/gemini-relay/internal/app/journal"
	"github.com/PabloGalante/gemini-relay/internal/config"
	"github.com/PabloGalante/gemini-relay/internal/domain"
	"github.com/PabloGalante/gemini-relay/internal/observability"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := observability.Logger()
	applyFlags(cfg)

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Generation client + uploader: Gemini or mock
	var (
		generator domain.Generator
		uploader  domain.AssetUploader
	)
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		mock := llm.NewMockLLM()
		generator, uploader = mock, mock
	} else {
		log.Info("using Gemini client", "model", cfg.ModelName)
		client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.ModelName, cfg.SystemPrompt)
		if err != nil {
			return fmt.Errorf("initializing Gemini client: %w", err)
		}
		generator, uploader = client, client

		if cfg.ListModels {
			go logAvailableModels(ctx, client)
		}
	}

	attachments, err := tempfs.NewStore(cfg.UploadDir)
	if err != nil {
		return err
	}
	log.Info("transient uploads", "dir", attachments.Dir())

	journalStore, closeJournal, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	convSvc := conversation.NewService(generator, uploader, attachments, memstore.NewHistoryStore(), journalStore)
	journalSvc := journalapp.NewService(journalStore)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpadapter.NewServer(convSvc, journalSvc, httpadapter.Options{
			MaxUploadBytes: cfg.MaxUploadBytes,
			StaticDir:      cfg.StaticDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("relay API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// openJournal picks the exchange journal backend. The returned store is nil
// when journaling is disabled.
func openJournal(ctx context.Context, cfg *config.Config) (domain.JournalStore, func(), error) {
	log := observability.Logger()
	noop := func() {}

	closer := func(c io.Closer) func() {
		return func() {
			if err := c.Close(); err != nil {
				log.Warn("closing journal store", "error", err)
			}
		}
	}

	switch cfg.JournalBackend {
	case config.JournalFirestore:
		log.Info("using Firestore journal", "project", cfg.GCPProjectID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, noop, fmt.Errorf("initializing Firestore journal: %w", err)
		}
		return fs, closer(fs), nil

	case config.JournalSQLite:
		log.Info("using SQLite journal", "path", cfg.SQLitePath)
		db, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("initializing SQLite journal: %w", err)
		}
		return db, closer(db), nil

	case config.JournalNone:
		log.Info("exchange journal disabled")
		return nil, noop, nil

	default:
		log.Info("using in-memory journal")
		return memstore.NewJournalStore(), noop, nil
	}
}
