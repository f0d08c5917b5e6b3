package files

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path attachments are served under.
const URLPrefix = "/files/"

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".csv":  true,
	".xls":  true,
	".xlsx": true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// Store keeps uploaded attachments on disk under uuid-based names and maps
// them to the public /files/ URL space.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory attachments are stored in.
func (s *Store) Dir() string { return s.dir }

// Save persists one multipart upload and returns its public URL. The
// original filename only contributes its extension; the stored name is a
// fresh uuid.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("no file")
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("file %q is %d bytes, limit is %d", fh.Filename, fh.Size, s.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}

	return URLPrefix + name, nil
}

// Remove deletes the attachment behind a public URL. URLs outside the
// store's URL space are ignored; a missing file is not an error.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := path.Base(strings.TrimPrefix(url, URLPrefix))
	if name == "" || name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
