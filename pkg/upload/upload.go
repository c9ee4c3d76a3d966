package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"backoffice/internal/apperr"
)

// MaxFileSize is the upload size ceiling in bytes.
const MaxFileSize = 10 << 20 // 10 MiB

// allowedMIMETypes maps each accepted image MIME type to the extension the
// stored file gets.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Storage writes uploaded files into a directory under random hex names.
type Storage struct {
	dir     string
	maxSize int64
}

// NewStorage creates a Storage rooted at dir, creating it if necessary.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{dir: dir, maxSize: MaxFileSize}, nil
}

// Save validates the declared MIME type, extension and size, then stores
// the file under a random hex name. It returns the stored filename.
func (s *Storage) Save(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > s.maxSize {
		return "", apperr.BadRequest("file exceeds the %d byte limit", s.maxSize)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[mimeType]
	if !ok {
		return "", apperr.BadRequest("unsupported file type %q", mimeType)
	}
	if declared := strings.ToLower(filepath.Ext(fileHeader.Filename)); declared != "" && !allowedExtensions[declared] {
		return "", apperr.BadRequest("unsupported file extension %q", declared)
	}

	name, err := randomName(ext)
	if err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	// The size check above trusts the multipart header; the LimitReader
	// bounds what actually lands on disk.
	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return name, nil
}

func randomName(ext string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate filename: %w", err)
	}
	return hex.EncodeToString(buf) + ext, nil
}
