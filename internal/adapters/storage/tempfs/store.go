// Package tempfs keeps uploaded files on local disk for the lifetime of a
// single request.
package tempfs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/PabloGalante/gemini-relay/internal/domain"
	"github.com/PabloGalante/gemini-relay/internal/observability"
)

const sniffLen = 512

type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: upload directory is empty", domain.ErrStorage)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating upload directory: %w", domain.ErrStorage, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Acquire writes r to a uniquely named file. Partial files are removed when
// the write fails.
func (s *Store) Acquire(ctx context.Context, r io.Reader, name, mimeType string) (*domain.Attachment, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating upload directory: %w", domain.ErrStorage, err)
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id+safeExt(name))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: creating transient file: %w", domain.ErrStorage, err)
	}

	br := bufio.NewReaderSize(r, sniffLen)
	// Peek hands back the reader's error only once, so io.Copy would miss it.
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: reading attachment: %w", domain.ErrStorage, err)
	}
	resolved := resolveMIME(mimeType, name, head)

	n, copyErr := io.Copy(f, contextReader{ctx: ctx, r: br})
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: writing transient file: %w", domain.ErrStorage, err)
	}

	observability.LoggerFromContext(ctx).Debug("attachment stored",
		"attachment_id", id, "name", name, "mime_type", resolved, "size", n)

	return &domain.Attachment{
		ID:           id,
		OriginalName: name,
		MIMEType:     resolved,
		Path:         path,
		SizeBytes:    n,
	}, nil
}

// Release deletes the attachment's file. Missing files are ignored.
func (s *Store) Release(att *domain.Attachment) {
	if att == nil || att.Path == "" {
		return
	}
	if err := os.Remove(att.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		observability.Logger().Warn("failed to remove transient file",
			"attachment_id", att.ID, "error", err)
	}
}

// Exists reports whether the attachment still has bytes on disk.
func (s *Store) Exists(att *domain.Attachment) bool {
	if att == nil {
		return false
	}
	_, err := os.Stat(att.Path)
	return err == nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

// resolveMIME prefers the declared type, then the extension, then sniffing.
func resolveMIME(declared, name string, head []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	if len(head) == 0 {
		return ""
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	return mt
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
