package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dealflow/backend/internal/middleware"
	"github.com/dealflow/backend/internal/models"
	"github.com/dealflow/backend/internal/services"
	"github.com/dealflow/backend/pkg/logger"
	"github.com/dealflow/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentsHandler struct {
	DB        *gorm.DB
	Documents *services.DocumentService
	Audit     *services.AuditService
}

func NewDocumentsHandler(db *gorm.DB, documents *services.DocumentService, audit *services.AuditService) *DocumentsHandler {
	return &DocumentsHandler{DB: db, Documents: documents, Audit: audit}
}

var (
	errInvalidCompanyID = errors.New("invalid company id")
	errCompanyNotFound  = errors.New("company not found")
)

// resolveCompany parses the route's companyId and confirms the company
// exists. Whether the caller may touch this company is the gateway's
// concern, not ours.
func (h *DocumentsHandler) resolveCompany(c *fiber.Ctx) (uuid.UUID, error) {
	companyID, err := parseUUID(c.Params("companyId"))
	if err != nil {
		return uuid.Nil, errInvalidCompanyID
	}

	var company models.Company
	if err := h.DB.Select("id").First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, errCompanyNotFound
		}
		return uuid.Nil, err
	}
	return companyID, nil
}

func respondCompanyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errInvalidCompanyID):
		return utils.Error(c, fiber.StatusBadRequest, "invalid company id")
	case errors.Is(err, errCompanyNotFound):
		return utils.Error(c, fiber.StatusNotFound, "company not found")
	}
	return utils.Error(c, fiber.StatusInternalServerError, "failed loading company")
}

func parseOptionalParentID(raw *string) (*uuid.UUID, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	parsed, err := parseUUID(*raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentID"`
}

func (h *DocumentsHandler) CreateFolder(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	parentID, ok := parseOptionalParentID(req.ParentID)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
	}

	folder, err := h.Documents.CreateFolder(c.Context(), companyID, name, parentID, userID)
	if err != nil {
		return h.respondServiceError(c, err, "failed creating folder")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       "document.folder_create",
		ResourceType: "document",
		ResourceID:   &folder.ID,
		Details: map[string]interface{}{
			"company_id":  companyID.String(),
			"folder_name": name,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, folder)
}

func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	fileName := strings.TrimSpace(fileHeader.Filename)
	if fileName == "" {
		return utils.Error(c, fiber.StatusBadRequest, "invalid filename")
	}

	parentIDRaw := c.FormValue("parentID")
	var parentIDPtr *string
	if parentIDRaw != "" {
		parentIDPtr = &parentIDRaw
	}
	parentID, ok := parseOptionalParentID(parentIDPtr)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	document, err := h.Documents.UploadFile(c.Context(), companyID, services.UploadFileInput{
		FileName:  fileName,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		Size:      fileHeader.Size,
		Content:   stream,
		ParentID:  parentID,
		CreatedBy: userID,
	})
	if err != nil {
		return h.respondServiceError(c, err, "failed uploading file")
	}

	logger.InfoWithUser(userID.String(), "document_uploaded", map[string]interface{}{
		"document_id":  document.ID.String(),
		"company_id":   companyID.String(),
		"file_name":    fileName,
		"file_size":    fileHeader.Size,
		"storage_path": document.StoragePath,
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       "document.upload",
		ResourceType: "document",
		ResourceID:   &document.ID,
		Details: map[string]interface{}{
			"company_id": companyID.String(),
			"file_name":  fileName,
			"file_size":  fileHeader.Size,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, document)
}

func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	documents, err := h.Documents.List(c.Context(), companyID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing documents")
	}
	return utils.Success(c, fiber.StatusOK, documents)
}

func (h *DocumentsHandler) Tree(c *fiber.Ctx) error {
	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	forest, err := h.Documents.Tree(c.Context(), companyID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed building document tree")
	}
	return utils.Success(c, fiber.StatusOK, forest)
}

func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	document, err := h.Documents.Get(c.Context(), companyID, documentID)
	if err != nil {
		return h.respondServiceError(c, err, "failed loading document")
	}
	return utils.Success(c, fiber.StatusOK, document)
}

func (h *DocumentsHandler) Download(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	document, reader, info, err := h.Documents.Download(c.Context(), companyID, documentID)
	if err != nil {
		return h.respondServiceError(c, err, "failed downloading document")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       "document.download",
		ResourceType: "document",
		ResourceID:   &document.ID,
		Details: map[string]interface{}{
			"company_id": companyID.String(),
			"file_name":  document.Name,
			"file_size":  info.Size,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	contentType := info.ContentType
	if contentType == "" && document.MimeType != nil {
		contentType = *document.MimeType
	}

	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Name))
	return c.SendStream(reader, int(info.Size))
}

type updateDocumentRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentID"`
}

// Update handles rename and move. A present-but-empty parentID moves the
// document to the root.
func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	var req updateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil && req.ParentID == nil {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	changes := map[string]interface{}{}
	var document *models.Document

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		document, err = h.Documents.Rename(c.Context(), companyID, documentID, name)
		if err != nil {
			return h.respondServiceError(c, err, "failed renaming document")
		}
		changes["name"] = name
	}

	if req.ParentID != nil {
		parentID, ok := parseOptionalParentID(req.ParentID)
		if !ok {
			return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
		}
		document, err = h.Documents.Move(c.Context(), companyID, documentID, parentID)
		if err != nil {
			return h.respondServiceError(c, err, "failed moving document")
		}
		if parentID != nil {
			changes["parent_id"] = parentID.String()
		} else {
			changes["parent_id"] = nil
		}
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       "document.update",
		ResourceType: "document",
		ResourceID:   &documentID,
		Details: map[string]interface{}{
			"company_id": companyID.String(),
			"changes":    changes,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, document)
}

func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	companyID, err := h.resolveCompany(c)
	if err != nil {
		return respondCompanyError(c, err)
	}

	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	result, err := h.Documents.Delete(c.Context(), companyID, documentID)
	if err != nil {
		return h.respondServiceError(c, err, "failed deleting document")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       "document.delete",
		ResourceType: "document",
		ResourceID:   &documentID,
		Details: map[string]interface{}{
			"company_id":    companyID.String(),
			"deleted_count": len(result.DeletedIDs),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	var warnings []string
	for _, path := range (&services.PartialStorageDeleteError{Failures: result.BlobFailures}).Paths() {
		warnings = append(warnings, "failed deleting blob "+path)
	}

	return utils.SuccessWithWarnings(c, fiber.StatusOK, fiber.Map{
		"deletedIDs": result.DeletedIDs,
	}, warnings)
}

func (h *DocumentsHandler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "document not found")
	case errors.Is(err, services.ErrInvalidParent):
		return utils.Error(c, fiber.StatusBadRequest, "parent must be an existing folder")
	case errors.Is(err, services.ErrCyclicMove):
		return utils.Error(c, fiber.StatusBadRequest, "cannot move a folder into its own subtree")
	case errors.Is(err, services.ErrMissingBlob):
		return utils.Error(c, fiber.StatusGone, "file content is missing from storage")
	}

	var storageErr *services.StorageWriteError
	if errors.As(err, &storageErr) {
		return utils.Error(c, fiber.StatusBadGateway, "failed writing file to storage")
	}

	var metadataErr *services.MetadataWriteError
	if errors.As(err, &metadataErr) {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating file record")
	}

	return utils.Error(c, fiber.StatusInternalServerError, fallback)
}
