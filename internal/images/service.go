package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fdg312/weekplan/internal/blob"
	"github.com/fdg312/weekplan/internal/storage"
	"github.com/google/uuid"
)

// PathPrefix is where stored images are served from.
const PathPrefix = "/v1/images/"

const (
	storedContentType = "image/jpeg"
	jpegQuality       = 85
)

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedMime = errors.New("unsupported mime type")
	ErrInvalidImage    = errors.New("file is not a decodable image")
)

// Options configures uploads and URL resolution.
type Options struct {
	MaxUploadMB     int
	AllowedMimes    string // comma separated
	MaxWidth        int
	PublicBaseURL   string
	PreferPublicURL bool
	PresignTTL      int // seconds
}

// Service stores slot images either in S3 or in the images table.
type Service struct {
	images          storage.ImagesStorage
	blobStore       blob.Store
	localMode       bool
	maxUploadMB     int
	allowedMimes    []string
	maxWidth        int
	publicBaseURL   string
	preferPublicURL bool
	presignTTL      int
}

// NewService creates the images service. A nil blobStore means local mode.
func NewService(images storage.ImagesStorage, blobStore blob.Store, opts Options) *Service {
	mimes := make([]string, 0)
	for _, m := range strings.Split(opts.AllowedMimes, ",") {
		if m = strings.TrimSpace(m); m != "" {
			mimes = append(mimes, strings.ToLower(m))
		}
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 10
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 800
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 900
	}

	return &Service{
		images:          images,
		blobStore:       blobStore,
		localMode:       blobStore == nil,
		maxUploadMB:     opts.MaxUploadMB,
		allowedMimes:    mimes,
		maxWidth:        opts.MaxWidth,
		publicBaseURL:   opts.PublicBaseURL,
		preferPublicURL: opts.PreferPublicURL,
		presignTTL:      opts.PresignTTL,
	}
}

// MaxUploadMB returns the upload size limit.
func (s *Service) MaxUploadMB() int {
	return s.maxUploadMB
}

// Upload validates, normalizes and stores an uploaded file. Every stored
// image is a JPEG no wider than the configured max width.
func (s *Service) Upload(ctx context.Context, userID string, fileHeader *multipart.FileHeader) (*ImageDTO, error) {
	maxBytes := int64(s.maxUploadMB) * 1024 * 1024
	if fileHeader.Size > maxBytes {
		return nil, ErrFileTooLarge
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !s.isAllowedMime(contentType) {
		return nil, ErrUnsupportedMime
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, width, height, err := s.normalize(file)
	if err != nil {
		return nil, err
	}

	img := &storage.Image{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentType: storedContentType,
		SizeBytes:   int64(len(data)),
	}

	if s.localMode {
		img.Data = data
		if err := s.images.CreateImage(ctx, img); err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
	} else {
		objectKey := fmt.Sprintf("images/%s/%s.jpg", userID, img.ID)
		if _, err := s.blobStore.PutObject(ctx, objectKey, data, storedContentType); err != nil {
			return nil, fmt.Errorf("failed to upload to S3: %w", err)
		}
		img.ObjectKey = &objectKey
		if err := s.images.CreateImage(ctx, img); err != nil {
			// Rollback: delete from S3
			_ = s.blobStore.DeleteObject(ctx, objectKey)
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
	}

	return &ImageDTO{
		ID:          img.ID,
		URL:         PathPrefix + img.ID,
		ContentType: img.ContentType,
		SizeBytes:   img.SizeBytes,
		Width:       width,
		Height:      height,
	}, nil
}

func (s *Service) normalize(file multipart.File) ([]byte, int, int, error) {
	src, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, 0, ErrInvalidImage
	}

	if src.Bounds().Dx() > s.maxWidth {
		src = imaging.Resize(src, s.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode image: %w", err)
	}

	b := src.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

// Resolve returns a redirect URL in S3 mode, or the stored image with its
// bytes in local mode.
func (s *Service) Resolve(ctx context.Context, id string) (string, *storage.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", nil, ErrImageNotFound
	}

	img, err := s.images.GetImage(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, ErrImageNotFound
		}
		return "", nil, err
	}

	if img.ObjectKey == nil || *img.ObjectKey == "" {
		if len(img.Data) == 0 {
			return "", nil, ErrImageNotFound
		}
		return "", img, nil
	}

	if s.blobStore == nil {
		return "", nil, errors.New("image stored in S3 but blob storage is not configured")
	}

	if s.preferPublicURL && s.publicBaseURL != "" {
		return blob.PublicURL(s.publicBaseURL, *img.ObjectKey), nil, nil
	}

	presignedURL, err := s.blobStore.PresignGet(ctx, *img.ObjectKey, s.presignTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedURL, nil, nil
}

// Delete removes an image owned by userID and its S3 object if any.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	img, err := s.images.GetImage(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to load image: %w", err)
	}
	if img.UserID != userID {
		return ErrImageNotFound
	}

	if img.ObjectKey != nil && *img.ObjectKey != "" && s.blobStore != nil {
		// Object removal is best effort; metadata goes regardless.
		_ = s.blobStore.DeleteObject(ctx, *img.ObjectKey)
	}
	return s.images.DeleteImage(ctx, id)
}

func (s *Service) isAllowedMime(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	for _, allowed := range s.allowedMimes {
		if mime == allowed {
			return true
		}
	}
	return false
}
