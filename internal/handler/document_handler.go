package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/document"
	"rental-service/internal/mailer"
	"rental-service/internal/model"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// DocumentHandler serves vehicle document upload, download, delete and share
type DocumentHandler struct {
	db      *gorm.DB
	service *document.Service
	mailer  *mailer.Mailer
}

// NewDocumentHandler creates a document handler
func NewDocumentHandler(db *gorm.DB, service *document.Service, m *mailer.Mailer) *DocumentHandler {
	return &DocumentHandler{db: db, service: service, mailer: m}
}

// ListDocuments returns all documents of a vehicle
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	log := logger.FromContext(c)
	vehicleID := c.Param("vehicle_id")

	if err := h.db.First(&model.Vehicle{}, vehicleID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}

	id, _ := strconv.ParseUint(vehicleID, 10, 32)
	docs, err := h.service.ListForVehicle(uint(id))
	if err != nil {
		log.Error("Failed to list documents", zap.String("vehicle_id", vehicleID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve documents"})
	}
	return c.JSON(http.StatusOK, docs)
}

// UploadDocument stores a multipart file and its record for a vehicle
func (h *DocumentHandler) UploadDocument(c echo.Context) error {
	log := logger.FromContext(c)
	vehicleID := c.Param("vehicle_id")

	var vehicle model.Vehicle
	if err := h.db.First(&vehicle, vehicleID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no file selected"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read uploaded file"})
	}
	defer src.Close()

	documentType := c.FormValue("document_type")
	description := c.FormValue("description")

	doc, err := h.service.Save(vehicle.ID, documentType, fileHeader.Filename, src, description)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrDisallowedType):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file type is not allowed"})
		case errors.Is(err, document.ErrEmptyFilename):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no file selected"})
		case errors.Is(err, document.ErrFileTooBig):
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file exceeds the maximum upload size"})
		default:
			log.Error("Failed to save document", zap.String("vehicle_id", vehicleID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to upload document"})
		}
	}

	prometheus.RecordDocumentOperation("upload")
	return c.JSON(http.StatusCreated, doc)
}

// DownloadDocument streams the stored file with the original filename
func (h *DocumentHandler) DownloadDocument(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
	}

	doc, err := h.service.Get(uint(id))
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		log.Error("Failed to load document", zap.Uint64("document_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve document"})
	}

	prometheus.RecordDocumentOperation("download")
	return c.Attachment(doc.Filepath, doc.Filename)
}

// DeleteDocument removes the record and, best-effort, the stored file
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
	}

	if err := h.service.Delete(uint(id)); err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		log.Error("Failed to delete document", zap.Uint64("document_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete document"})
	}

	prometheus.RecordDocumentOperation("delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "document deleted successfully"})
}

// ShareDocument emails a download link for a document, attaching the file
// when it still exists on disk
func (h *DocumentHandler) ShareDocument(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	doc, err := h.service.Get(uint(id))
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		log.Error("Failed to load document", zap.Uint64("document_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve document"})
	}

	var vehicle model.Vehicle
	if err := h.db.First(&vehicle, doc.VehicleID).Error; err != nil {
		log.Error("Failed to load vehicle for share", zap.Uint("vehicle_id", doc.VehicleID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve document"})
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	downloadURL := document.DownloadLink(baseURL, doc.ID)

	description := doc.Description
	if description == "" {
		description = "No description"
	}
	htmlContent := fmt.Sprintf(`
		<h2>Document shared from the rental service</h2>
		<p>A document has been shared with you for vehicle %s %s (%s).</p>
		<p><strong>Document:</strong> %s</p>
		<p><strong>Type:</strong> %s</p>
		<p><strong>Description:</strong> %s</p>
		<p>You can download the document here: <a href="%s">Download document</a></p>
	`, vehicle.Make, vehicle.Model, vehicle.LicensePlate,
		doc.Filename, doc.DocumentType, description, downloadURL)

	subject := fmt.Sprintf("Document shared: %s", doc.Filename)
	if err := h.mailer.Send(req.Email, subject, htmlContent, []string{doc.Filepath}); err != nil {
		log.Error("Failed to share document", zap.Uint64("document_id", id), zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send email", "download_url": downloadURL})
	}

	prometheus.RecordDocumentOperation("share")
	log.Info("Document shared",
		zap.Uint64("document_id", id),
		zap.String("to", req.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "document shared successfully",
		"download_url": downloadURL,
	})
}
