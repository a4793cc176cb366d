// Package document stores vehicle document files on disk together with
// their database records. The file write and the record insert are not
// transactional: a save failure yields no record, a failed file removal
// on delete never blocks the record deletion.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
	"rental-service/pkg/config"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDisallowedType   = errors.New("file type is not allowed")
	ErrEmptyFilename    = errors.New("no file selected")
	ErrFileTooBig       = errors.New("file exceeds the maximum upload size")
	ErrStoreFailed      = errors.New("failed to store document file")
	ErrRecordSaveFailed = errors.New("failed to save document record")
)

// Service manages vehicle document files and records
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	folder string
	// lower-cased extensions including the dot
	allowedExtensions map[string]struct{}
	maxSizeBytes      int64
}

// NewService creates a document service storing files under cfg.Upload.Folder
func NewService(db *gorm.DB, cfg *config.UploadConfig, log *zap.Logger) *Service {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Service{
		db:                db,
		log:               log,
		folder:            cfg.Folder,
		allowedExtensions: allowed,
		maxSizeBytes:      cfg.MaxSizeBytes,
	}
}

// AllowedFile reports whether the filename carries an allowed extension
func (s *Service) AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	_, ok := s.allowedExtensions[ext]
	return ok
}

// Save writes the uploaded file under the upload folder with a
// timestamp-prefixed name and creates the database record. When the
// record insert fails the file is removed again so no orphan is left by
// this path.
func (s *Service) Save(vehicleID uint, documentType, filename string, content io.Reader, description string) (*model.VehicleDocument, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if !s.AllowedFile(filename) {
		return nil, ErrDisallowedType
	}

	originalFilename := sanitizeFilename(filename)
	storedName := fmt.Sprintf("%s_%s", time.Now().Format("20060102150405"), originalFilename)

	if err := os.MkdirAll(s.folder, 0o755); err != nil {
		s.log.Error("Failed to create upload folder", zap.String("folder", s.folder), zap.Error(err))
		return nil, ErrStoreFailed
	}

	storedPath := filepath.Join(s.folder, storedName)
	out, err := os.Create(storedPath)
	if err != nil {
		s.log.Error("Failed to create document file", zap.String("path", storedPath), zap.Error(err))
		return nil, ErrStoreFailed
	}

	written, err := io.Copy(out, io.LimitReader(content, s.maxSizeBytes+1))
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		os.Remove(storedPath)
		s.log.Error("Failed to write document file", zap.String("path", storedPath), zap.Error(err))
		return nil, ErrStoreFailed
	}
	if written > s.maxSizeBytes {
		os.Remove(storedPath)
		return nil, ErrFileTooBig
	}

	doc := model.VehicleDocument{
		VehicleID:    vehicleID,
		DocumentType: documentType,
		Filename:     originalFilename,
		Filepath:     storedPath,
		Description:  description,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		os.Remove(storedPath)
		s.log.Error("Failed to save document record", zap.Error(err))
		return nil, ErrRecordSaveFailed
	}

	s.log.Info("Document saved",
		zap.Uint("document_id", doc.ID),
		zap.Uint("vehicle_id", vehicleID),
		zap.String("path", storedPath))
	return &doc, nil
}

// Get loads a document by id
func (s *Service) Get(documentID uint) (*model.VehicleDocument, error) {
	var doc model.VehicleDocument
	if err := s.db.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListForVehicle returns all documents of a vehicle, newest first
func (s *Service) ListForVehicle(vehicleID uint) ([]model.VehicleDocument, error) {
	var docs []model.VehicleDocument
	err := s.db.Where("vehicle_id = ?", vehicleID).Order("upload_date desc").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete removes the document record. The underlying file is removed
// best-effort first; a failed file removal is logged and does not block
// the record deletion.
func (s *Service) Delete(documentID uint) error {
	doc, err := s.Get(documentID)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(doc.Filepath); statErr == nil {
		if rmErr := os.Remove(doc.Filepath); rmErr != nil {
			s.log.Error("Failed to remove document file",
				zap.String("path", doc.Filepath),
				zap.Error(rmErr))
		}
	}

	if err := s.db.Delete(doc).Error; err != nil {
		return err
	}

	s.log.Info("Document deleted",
		zap.Uint("document_id", documentID),
		zap.String("path", doc.Filepath))
	return nil
}

// DownloadLink builds the public download URL for a document
func DownloadLink(baseURL string, documentID uint) string {
	return fmt.Sprintf("%s/api/documents/%d/download", strings.TrimRight(baseURL, "/"), documentID)
}

// sanitizeFilename keeps the base name and replaces path separators and
// whitespace so the stored name is safe to join onto the upload folder
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
