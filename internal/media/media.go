package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/media"

var (
	ErrNotImage         = errors.New("file is not an image")
	ErrInvalidName      = errors.New("invalid file name")
	ErrInvalidSubfolder = errors.New("invalid subfolder")
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// Store persists uploaded files and returns the path they are served under.
type Store interface {
	Save(ctx context.Context, r io.Reader, filename, contentType, subfolder string) (string, error)
}

// upload is a validated file ready to be written.
type upload struct {
	key         string
	contentType string
	body        io.Reader
}

// prepare checks the declared type, then detects the real type from the
// leading bytes. The stored key is "<subfolder>/<uuidhex>_<stem><ext>" with
// the extension taken from the detected type.
func prepare(r io.Reader, filename, contentType, subfolder string) (*upload, error) {
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrNotImage
	}

	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" || name == ".." {
		return nil, ErrInvalidName
	}

	if subfolder == "" || strings.Contains(subfolder, "..") || strings.ContainsAny(subfolder, `/\`) {
		return nil, ErrInvalidSubfolder
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") || detected.Is("image/svg+xml") || detected.Extension() == "" {
		return nil, ErrNotImage
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = "image"
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &upload{
		key:         path.Join(subfolder, id+"_"+stem+detected.Extension()),
		contentType: detected.String(),
		body:        io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

// LocalStore writes files below a root directory on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root is the directory served under URLPrefix.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, filename, contentType, subfolder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	up, err := prepare(r, filename, contentType, subfolder)
	if err != nil {
		return "", err
	}
	key := up.key

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(f, up.body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}

	return URLPrefix + "/" + key, nil
}
