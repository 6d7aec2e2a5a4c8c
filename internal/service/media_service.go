package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bragawork/internal/events"
	"bragawork/internal/models"
	"bragawork/internal/util"
)

const (
	// ProjectImagesSubdir is where project images live under the upload root.
	ProjectImagesSubdir = "projects"
	projectImagesURL    = "/uploads/projects/"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var imageExtension = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

// MediaService stores project images on local disk.
type MediaService struct {
	dir       string
	maxBytes  int64
	publisher events.Publisher
	now       func() time.Time
}

func NewMediaService(uploadRoot string, maxBytes int64, publisher events.Publisher) *MediaService {
	return &MediaService{
		dir:       filepath.Join(uploadRoot, ProjectImagesSubdir),
		maxBytes:  maxBytes,
		publisher: publisher,
		now:       time.Now,
	}
}

// MaxBytes is the per-file size limit.
func (s *MediaService) MaxBytes() int64 { return s.maxBytes }

// TooLarge is the rejection for a file over the limit.
func (s *MediaService) TooLarge() error {
	return reject(ErrFileTooLarge,
		fmt.Sprintf("Arquivo muito grande. O tamanho máximo é %dMB.", s.maxBytes/(1<<20)))
}

// Upload validates and stores one image. The stored name is
// <unix millis>-<random>-<sanitized original name>.
func (s *MediaService) Upload(ctx context.Context, name, contentType string, size int64, r io.Reader, actor Actor) (*models.UploadedImage, error) {
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return nil, reject(ErrUnsupportedMediaType, "Tipo de arquivo não permitido. Use JPG, PNG, WEBP ou GIF.")
	}
	if size > s.maxBytes {
		return nil, s.TooLarge()
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	now := s.now()
	filename := fmt.Sprintf("%d-%d-%s", now.UnixMilli(), uuid.New().ID(), util.SanitizeFilename(name))
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filename, err)
	}

	// the declared size is advisory; the copy enforces the limit
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxBytes {
		err = s.TooLarge()
	}
	if err != nil {
		os.Remove(path)
		var rejected *Error
		if errors.As(err, &rejected) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store %s: %w", filename, err)
	}

	img := &models.UploadedImage{
		Filename:   filename,
		URL:        projectImagesURL + filename,
		UploadDate: now,
	}

	util.Info("Image uploaded",
		util.String("filename", filename),
		util.Int64("bytes", n),
		util.String("admin", actor.Username))
	events.Emit(ctx, s.publisher, events.New(events.MediaUploaded, 0, actor.Username).
		With("filename", filename).
		With("content_type", contentType))
	return img, nil
}

// ListImages returns stored images newest first. A missing directory is an
// empty gallery.
func (s *MediaService) ListImages(ctx context.Context) ([]models.UploadedImage, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.UploadedImage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload dir: %w", err)
	}

	images := make([]models.UploadedImage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !imageExtension.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed since ReadDir
			continue
		}
		images = append(images, models.UploadedImage{
			Filename:   entry.Name(),
			URL:        projectImagesURL + entry.Name(),
			UploadDate: info.ModTime(),
		})
	}

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].UploadDate.Equal(images[j].UploadDate) {
			return images[i].Filename > images[j].Filename
		}
		return images[i].UploadDate.After(images[j].UploadDate)
	})
	return images, nil
}
