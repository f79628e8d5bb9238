package storage

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"order-timeline/internal/domain"
)

type AttachmentStoreInterface interface {
	Store(name string, r io.Reader) (*domain.Attachment, error)
}

var _ AttachmentStoreInterface = (*AttachmentStore)(nil)

// AttachmentStore writes uploads flat into dir and hands back the public
// URL they are served under.
type AttachmentStore struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewAttachmentStore(fs afero.Fs, dir, urlPrefix string) (*AttachmentStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &AttachmentStore{
		fs:        fs,
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Store persists one upload. An empty body yields (nil, nil) so callers can
// skip it.
func (s *AttachmentStore) Store(name string, r io.Reader) (*domain.Attachment, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", name, err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	fileName := fmt.Sprintf("%d_%s", s.now().UnixMilli(), baseName(name))
	stored := filepath.Join(s.dir, fileName)

	if err := afero.WriteFile(s.fs, stored, content, 0o644); err != nil {
		return nil, fmt.Errorf("write upload %q: %w", stored, err)
	}

	return &domain.Attachment{
		FileName:    fileName,
		StoredPath:  stored,
		URL:         path.Join(s.urlPrefix, fileName),
		ContentType: mimetype.Detect(content).String(),
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

// FileSystem exposes the upload dir for static serving.
func (s *AttachmentStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.dir)
}

func (s *AttachmentStore) URLPrefix() string {
	return s.urlPrefix
}

// baseName drops any client-supplied directories, including Windows ones.
func baseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return "upload"
	}
	return base
}
