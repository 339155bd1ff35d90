// Package media persists uploaded photos and voice notes and hands back the
// public URL path they are served from.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxBytes caps a single stored file.
const DefaultMaxBytes = 10 << 20

var (
	ErrInvalidDataURL = errors.New("invalid data url")
	ErrTooLarge       = errors.New("media file too large")
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".m4a",
	"audio/wav":  ".wav",
}

// Store writes media files into a single directory.
type Store struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	now       func() time.Time
}

// New creates a Store writing into dir and serving under urlPrefix.
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxBytes:  DefaultMaxBytes,
		now:       time.Now,
	}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// URLPrefix returns the path prefix files are served under.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Save copies r into a new file named after originalName and returns its URL path.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	name := s.fileName(originalName, filepath.Ext(originalName))

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// SaveDataURL decodes a base64 data URL and stores it under base.
func (s *Store) SaveDataURL(dataURL, base string) (string, error) {
	mediaType, payload, err := parseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+2 {
		return "", ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return s.Save(base+extensionFor(mediaType), strings.NewReader(string(data)))
}

// Remove deletes the file behind a URL returned by Save. Missing files are
// not an error.
func (s *Store) Remove(url string) error {
	name, ok := strings.CutPrefix(url, strings.TrimSuffix(s.urlPrefix, "/")+"/")
	if !ok || name == "" || name != path.Base(name) {
		return fmt.Errorf("media url %q is not served by this store", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// fileName builds "<unix ms>-<random>-<sanitized base><ext>".
func (s *Store) fileName(originalName, ext string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	base = unsafeChars.ReplaceAllString(base, "")
	if len(base) > 32 {
		base = base[:32]
	}
	if base == "" || base == "." {
		base = "upload"
	}
	ext = unsafeChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext != "" {
		ext = "." + ext
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%d-%s-%s%s", s.now().UnixMilli(), random, base, ext)
}

func parseDataURL(dataURL string) (mediaType, payload string, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", "", ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrInvalidDataURL
	}
	params := strings.Split(header, ";")
	if params[len(params)-1] != "base64" {
		return "", "", ErrInvalidDataURL
	}
	return strings.ToLower(params[0]), payload, nil
}

func extensionFor(mediaType string) string {
	if ext, ok := extensionsByType[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
