package resume

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	ContentTypePDF = "application/pdf"
	// DefaultMaxSize matches the upload cap used by the screening backend.
	DefaultMaxSize int64 = 10 << 20

	previewRunes = 300
)

var (
	ErrEmpty    = errors.New("resume file is empty")
	ErrNotPDF   = errors.New("resume file is not a PDF")
	ErrTooLarge = errors.New("resume file is too large")
)

// File is a resume selected by the user and held in memory until upload.
type File struct {
	Name        string
	Data        []byte
	ContentType string
	// Pages and Preview are filled on a best-effort basis; zero values mean the
	// local inspector could not read the document.
	Pages   int
	Preview string
}

func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Load reads a resume from disk and checks that it is a PDF no larger than maxSize.
// A non-positive maxSize falls back to DefaultMaxSize.
func Load(path string, maxSize int64) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmpty
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat resume: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotPDF, path)
	}
	if stat.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, stat.Size(), maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	return FromBytes(filepath.Base(path), data, maxSize)
}

// FromBytes validates an in-memory resume.
func FromBytes(name string, data []byte, maxSize int64) (*File, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(data), maxSize)
	}

	contentType := http.DetectContentType(data)
	if contentType != ContentTypePDF {
		return nil, fmt.Errorf("%w: detected %s", ErrNotPDF, contentType)
	}

	file := &File{
		Name:        name,
		Data:        data,
		ContentType: contentType,
	}

	if pages, preview, err := inspect(data); err == nil {
		file.Pages = pages
		file.Preview = preview
	}

	return file, nil
}

// inspect counts pages and extracts a short text preview.
// The pdf reader panics on some malformed documents, so it is fenced with recover.
func inspect(data []byte) (pages int, preview string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inspect pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", fmt.Errorf("open pdf: %w", err)
	}

	pages = reader.NumPage()

	var builder strings.Builder
	for idx := 1; idx <= pages && builder.Len() < previewRunes*4; idx++ {
		page := reader.Page(idx)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString(" ")
	}

	preview = strings.Join(strings.Fields(builder.String()), " ")
	if runes := []rune(preview); len(runes) > previewRunes {
		preview = string(runes[:previewRunes])
	}

	return pages, preview, nil
}
