// AngelaMos | 2026
// avatar.go

package user

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type AvatarStore interface {
	Save(userID int64, filename string, r io.Reader) (string, error)
	Delete(path string) error
	URL(path string) string
}

// LocalAvatarStore keeps avatars below a media directory using the layout
// users/<id>/avatar/<uuid><ext>.
type LocalAvatarStore struct {
	dir       string
	urlPrefix string
}

func NewLocalAvatarStore(dir, urlPrefix string) (*LocalAvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}

	return &LocalAvatarStore{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *LocalAvatarStore) Save(
	userID int64,
	filename string,
	r io.Reader,
) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = ".jpg"
	}

	rel := path.Join(
		"users",
		fmt.Sprintf("%d", userID),
		"avatar",
		uuid.New().String()+ext,
	)
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer dst.Close() //nolint:errcheck // close after successful copy is checked below

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(full) //nolint:errcheck // cleanup of partial upload
		return "", fmt.Errorf("write avatar file: %w", err)
	}

	if err := dst.Sync(); err != nil {
		return "", fmt.Errorf("sync avatar file: %w", err)
	}

	return rel, nil
}

func (s *LocalAvatarStore) Delete(rel string) error {
	full := filepath.Join(s.dir, filepath.FromSlash(path.Clean("/"+rel)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete avatar file: %w", err)
	}
	return nil
}

func (s *LocalAvatarStore) URL(rel string) string {
	return s.urlPrefix + rel
}

func (s *LocalAvatarStore) Dir() string {
	return s.dir
}
