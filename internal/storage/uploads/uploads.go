package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidName     = errors.New("invalid file name")
	ErrNotFound        = errors.New("file not found")
	ErrEmpty           = errors.New("empty file")
)

// allowedTypes maps accepted image types to the extension they are stored with.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var storedName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(jpg|png|gif|webp)$`)

// File describes a stored upload.
type File struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name,omitempty"`
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"size_human"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Usage summarises the upload directory.
type Usage struct {
	Files      int64  `json:"files"`
	Bytes      int64  `json:"bytes"`
	BytesHuman string `json:"bytes_human"`
}

// Config configures a Store.
type Config struct {
	Dir       string
	URLPrefix string
	MaxSize   int64
}

// Store keeps uploaded images on local disk.
type Store struct {
	dir       string
	urlPrefix string
	maxSize   int64
	logger    *zap.Logger
	now       func() time.Time
}

// NewStore creates the upload directory if needed.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Dir == "" {
		cfg.Dir = "uploads"
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/uploads"
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10 << 20
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimRight(cfg.URLPrefix, "/"),
		maxSize:   cfg.MaxSize,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Dir returns the directory files are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// MaxSize returns the upload size limit in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save stores one image read from r. The type is sniffed from the content;
// the client-supplied name is only recorded.
func (s *Store) Save(r io.Reader, originalName string) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedTypes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	size := int64(len(data))
	s.logger.Info("file uploaded",
		zap.String("filename", name),
		zap.String("original_name", originalName),
		zap.String("content_type", mtype.String()),
		zap.Int64("size", size))

	return &File{
		Filename:     name,
		OriginalName: filepath.Base(originalName),
		URL:          path.Join(s.urlPrefix, name),
		ContentType:  mtype.String(),
		Size:         size,
		SizeHuman:    humanize.Bytes(uint64(size)),
		UploadedAt:   s.now().UTC(),
	}, nil
}

// Delete removes a stored file by name.
func (s *Store) Delete(name string) error {
	if !storedName.MatchString(name) {
		return ErrInvalidName
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete upload: %w", err)
	}
	s.logger.Info("file deleted", zap.String("filename", name))
	return nil
}

// Usage walks the upload directory and totals file count and size.
func (s *Store) Usage(ctx context.Context) (Usage, error) {
	var files, bytes atomic.Int64
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files.Add(1)
		bytes.Add(info.Size())
		return nil
	})
	if err != nil {
		return Usage{}, fmt.Errorf("walk uploads: %w", err)
	}

	total := bytes.Load()
	return Usage{
		Files:      files.Load(),
		Bytes:      total,
		BytesHuman: humanize.Bytes(uint64(total)),
	}, nil
}
