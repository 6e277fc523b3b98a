// internal/domain/upload/service.go
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("uploaded file not found")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrExtensionBlocked = errors.New("file type is not allowed")
)

// Service stores uploaded images on local disk and records them in the
// database. Filenames are random so uploads can never collide or be guessed.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListResponse represents stored files
type ListResponse struct {
	Files []UploadedFile `json:"files"`
	Total int64          `json:"total"`
}

// Store validates and persists an uploaded image
func (s *Service) Store(file multipart.File, header *multipart.FileHeader, altText string, uploadedBy uint) (*UploadedFile, error) {
	if header.Size > s.config.Upload.MaxSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !s.extensionAllowed(ext) {
		return nil, ErrExtensionBlocked
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	if err := os.MkdirAll(s.config.Upload.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.config.Upload.LocalPath, filename)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	record := UploadedFile{
		OriginalName: header.Filename,
		Filename:     filename,
		Path:         path,
		URL:          s.publicURL(filename),
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		AltText:      altText,
		UploadedBy:   uploadedBy,
	}
	if err := s.db.Create(&record).Error; err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	return &record, nil
}

// Get retrieves an upload record
func (s *Service) Get(id uint) (*UploadedFile, error) {
	var f UploadedFile
	if err := s.db.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve upload: %w", err)
	}
	return &f, nil
}

// List retrieves upload records, newest first
func (s *Service) List(limit, offset int) (*ListResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&UploadedFile{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}

	var files []UploadedFile
	err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve uploads: %w", err)
	}

	return &ListResponse{Files: files, Total: total}, nil
}

// Delete removes the record and the file on disk
func (s *Service) Delete(id uint) error {
	f, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&UploadedFile{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete upload record: %w", err)
	}

	// A missing file on disk is not an error; the record is gone either way
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *Service) extensionAllowed(ext string) bool {
	for _, allowed := range s.config.Upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (s *Service) publicURL(filename string) string {
	base := strings.TrimSuffix(s.config.Upload.PublicBaseURL, "/")
	return base + "/" + filename
}
