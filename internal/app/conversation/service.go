package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PabloGalante/gemini-relay/internal/domain"
	"github.com/PabloGalante/gemini-relay/internal/observability"
)

// Service runs the generate lifecycle:
// validate, stage and upload the file, compose, generate, record.
type Service struct {
	generator   domain.Generator
	uploader    domain.AssetUploader
	attachments domain.AttachmentStore
	history     domain.HistoryStore
	journal     domain.JournalStore
	now         func() time.Time

	// journalTimeout bounds the best-effort journal write on the reply path.
	journalTimeout time.Duration

	// turnLock serialises snapshot -> generate -> append.
	turnLock chan struct{}
}

// NewService wires the orchestrator. journal may be nil.
func NewService(
	generator domain.Generator,
	uploader domain.AssetUploader,
	attachments domain.AttachmentStore,
	history domain.HistoryStore,
	journal domain.JournalStore,
) *Service {
	return &Service{
		generator:   generator,
		uploader:    uploader,
		attachments: attachments,
		history:     history,
		journal:     journal,
		now:         time.Now,

		journalTimeout: defaultJournalTimeout,
		turnLock:       make(chan struct{}, 1),
	}
}

const defaultJournalTimeout = 2 * time.Second

// SetJournalTimeout changes how long a reply may wait on the journal write.
func (s *Service) SetJournalTimeout(d time.Duration) {
	if d > 0 {
		s.journalTimeout = d
	}
}

type FileInput struct {
	Name     string
	MIMEType string
	Body     io.Reader
}

type GenerateInput struct {
	Prompt string
	File   *FileInput
}

type GenerateOutput struct {
	Text      string
	UserTurn  domain.Turn
	ModelTurn domain.Turn
}

type uploadedFile struct {
	ref  domain.RemoteAssetReference
	name string
	size int64
}

func (s *Service) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx, span := observability.Tracer().Start(ctx, "conversation.Generate")
	defer span.End()

	log := observability.LoggerFromContext(ctx).With("has_file", in.File != nil)
	start := s.now()
	log.Info("generate received", "prompt_len", len(in.Prompt))

	if strings.TrimSpace(in.Prompt) == "" && in.File == nil {
		log.Info("generate rejected", "error", domain.ErrPromptRequired)
		return nil, fail(span, domain.ErrPromptRequired)
	}

	var uploaded *uploadedFile
	if in.File != nil {
		u, err := s.stageAndUpload(ctx, in.File)
		if err != nil {
			log.Error("attachment upload failed", "error", err)
			return nil, fail(span, err)
		}
		uploaded = u
	}

	var ref *domain.RemoteAssetReference
	if uploaded != nil {
		ref = &uploaded.ref
	}

	out, err := s.exchange(ctx, in.Prompt, ref)
	if err != nil {
		log.Error("generation failed", "error", err)
		return nil, fail(span, err)
	}

	elapsed := s.now().Sub(start)
	log.Info("generate succeeded", "elapsed_ms", elapsed.Milliseconds(), "history_len", s.history.Len())

	s.record(ctx, in.Prompt, out.Text, uploaded, start, elapsed)
	return out, nil
}

// stageAndUpload keeps the attachment on local storage only for the upload.
// Release runs exactly once on every path out of this function.
func (s *Service) stageAndUpload(ctx context.Context, f *FileInput) (*uploadedFile, error) {
	ctx, span := observability.Tracer().Start(ctx, "conversation.Upload",
		trace.WithAttributes(attribute.String("file.name", f.Name)))
	defer span.End()

	log := observability.LoggerFromContext(ctx)

	att, err := s.attachments.Acquire(ctx, f.Body, f.Name, f.MIMEType)
	if err != nil {
		if !errors.Is(err, domain.ErrStorage) {
			err = fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return nil, fail(span, err)
	}
	defer s.attachments.Release(att)

	log.Info("uploading attachment",
		"attachment_id", att.ID, "mime_type", att.MIMEType, "size", att.SizeBytes)
	span.SetAttributes(
		attribute.String("file.mime_type", att.MIMEType),
		attribute.Int64("file.size", att.SizeBytes),
	)

	ref, err := s.uploader.Upload(ctx, att)
	if err != nil {
		if !errors.Is(err, domain.ErrUpload) && !errors.Is(err, domain.ErrValidation) {
			err = fmt.Errorf("%w: %w", domain.ErrUpload, err)
		}
		return nil, fail(span, err)
	}

	log.Info("attachment uploaded", "attachment_id", att.ID, "uri", ref.URI)
	return &uploadedFile{ref: ref, name: att.OriginalName, size: att.SizeBytes}, nil
}

// exchange holds the turn lock from snapshot to append so that concurrent
// requests see a consistent history and never interleave their turn pairs.
func (s *Service) exchange(ctx context.Context, prompt string, ref *domain.RemoteAssetReference) (*GenerateOutput, error) {
	select {
	case s.turnLock <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for conversation: %w", domain.ErrGeneration, ctx.Err())
	}
	defer func() { <-s.turnLock }()

	req, err := Compose(s.history.Snapshot(), prompt, ref)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer().Start(ctx, "conversation.GenerateContent",
		trace.WithAttributes(attribute.Int("history.turns", len(req.History))))
	defer span.End()

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return nil, fail(span, err)
	}

	modelTurn := domain.Turn{Role: domain.RoleModel, Parts: []domain.Part{domain.TextPart(text)}}
	s.history.Append(req.NewTurn, modelTurn)

	return &GenerateOutput{
		Text:      text,
		UserTurn:  req.NewTurn,
		ModelTurn: modelTurn,
	}, nil
}

// record writes the journal entry. Errors are logged only.
func (s *Service) record(ctx context.Context, prompt, response string, f *uploadedFile, start time.Time, elapsed time.Duration) {
	if s.journal == nil {
		return
	}

	rec := &domain.ExchangeRecord{
		Prompt:     prompt,
		Response:   response,
		Model:      modelName(s.generator),
		CreatedAt:  start,
		DurationMS: elapsed.Milliseconds(),
	}
	if f != nil {
		rec.AttachmentName = f.name
		rec.AttachmentMIME = f.ref.MIMEType
		rec.AttachmentSize = f.size
		rec.AttachmentURI = f.ref.URI
	}

	// The exchange already happened; a cancelled request must not drop it.
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.journalTimeout)
	defer cancel()

	if err := s.journal.AppendExchange(jctx, rec); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to journal exchange", "error", err)
	}
}

// Reset clears the conversation. It always succeeds.
func (s *Service) Reset(ctx context.Context) {
	cleared := s.history.Len()
	s.history.Reset()
	observability.LoggerFromContext(ctx).Info("conversation reset", "cleared_turns", cleared)
}

// History returns a copy of the current conversation.
func (s *Service) History(ctx context.Context) []domain.Turn {
	return s.history.Snapshot()
}

func modelName(g domain.Generator) string {
	if n, ok := g.(interface{ ModelName() string }); ok {
		return n.ModelName()
	}
	return ""
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
