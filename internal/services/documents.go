package services

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"

	"github.com/dealflow/backend/internal/models"
	"github.com/dealflow/backend/internal/storage"
	"github.com/dealflow/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentService owns the document tree of each company: structural
// mutations against the metadata table and the matching blob traffic
// against the storage backend. It holds no state of its own; every
// operation is a short sequence of backend calls, and consistency between
// the two backends rests on their per-call atomicity plus the write
// ordering documented on UploadFile and Delete.
type DocumentService struct {
	DB      *gorm.DB
	Storage storage.Backend
}

func NewDocumentService(db *gorm.DB, backend storage.Backend) *DocumentService {
	return &DocumentService{DB: db, Storage: backend}
}

type UploadFileInput struct {
	FileName  string
	MimeType  string
	Size      int64
	Content   io.Reader
	ParentID  *uuid.UUID
	CreatedBy uuid.UUID
}

// DeleteResult reports a recursive delete. BlobFailures is warning-level:
// the listed paths leaked in the storage backend, but every id in
// DeletedIDs is gone from the metadata table regardless.
type DeleteResult struct {
	DeletedIDs   []uuid.UUID
	BlobFailures map[string]error
}

func (s *DocumentService) List(ctx context.Context, companyID uuid.UUID) ([]models.Document, error) {
	var documents []models.Document
	if err := s.DB.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at ASC").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// Tree returns the company's documents as an ordered forest.
func (s *DocumentService) Tree(ctx context.Context, companyID uuid.UUID) ([]*models.DocumentTreeNode, error) {
	documents, err := s.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return BuildTree(documents), nil
}

func (s *DocumentService) Get(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	if err := s.DB.WithContext(ctx).First(&document, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}

func (s *DocumentService) CreateFolder(ctx context.Context, companyID uuid.UUID, name string, parentID *uuid.UUID, createdBy uuid.UUID) (*models.Document, error) {
	if err := s.validateParent(ctx, companyID, parentID); err != nil {
		return nil, err
	}

	folder := models.Document{
		CompanyID: companyID,
		Kind:      models.DocumentKindFolder,
		Name:      name,
		ParentID:  parentID,
		CreatedBy: createdBy,
	}
	if err := s.DB.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// UploadFile writes the blob first and the metadata row second. A crash
// between the two steps leaves an orphaned blob for the reconciliation
// sweep; the reverse order would leave a row whose download is broken,
// which a user actually sees. For the same reason a failed insert does
// not roll the blob back.
func (s *DocumentService) UploadFile(ctx context.Context, companyID uuid.UUID, in UploadFileInput) (*models.Document, error) {
	if err := s.validateParent(ctx, companyID, in.ParentID); err != nil {
		return nil, err
	}

	contentType := in.MimeType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(in.FileName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := buildObjectName(companyID, in.FileName)
	if err := s.Storage.Upload(ctx, objectName, in.Content, in.Size, contentType); err != nil {
		return nil, &StorageWriteError{Err: err}
	}

	document := models.Document{
		CompanyID:        companyID,
		Kind:             models.DocumentKindFile,
		Name:             in.FileName,
		ParentID:         in.ParentID,
		StoragePath:      &objectName,
		MimeType:         &contentType,
		SizeBytes:        &in.Size,
		OriginalFileName: &in.FileName,
		CreatedBy:        in.CreatedBy,
	}
	if err := s.DB.WithContext(ctx).Create(&document).Error; err != nil {
		return nil, &MetadataWriteError{Path: objectName, Err: err}
	}
	return &document, nil
}

func (s *DocumentService) Rename(ctx context.Context, companyID, id uuid.UUID, newName string) (*models.Document, error) {
	document, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(document).Update("name", newName).Error; err != nil {
		return nil, err
	}
	return document, nil
}

// Move re-parents a node. The cycle check walks the subtree of id as it
// exists at call time; two moves racing on overlapping subtrees are not
// serialized here (see BuildTree's orphan rule for why the tree stays
// renderable even then).
func (s *DocumentService) Move(ctx context.Context, companyID, id uuid.UUID, newParentID *uuid.UUID) (*models.Document, error) {
	document, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, ErrCyclicMove
		}
		if err := s.validateParent(ctx, companyID, newParentID); err != nil {
			return nil, err
		}
		if document.IsFolder() {
			subtree, err := s.collectSubtree(ctx, companyID, id)
			if err != nil {
				return nil, err
			}
			for _, member := range subtree {
				if member.ID == *newParentID {
					return nil, ErrCyclicMove
				}
			}
		}
	}

	if err := s.DB.WithContext(ctx).Model(document).Update("parent_id", newParentID).Error; err != nil {
		return nil, err
	}
	return document, nil
}

// Delete removes id and its entire subtree. Blob deletion runs first and
// is best-effort: a storage hiccup must not resurrect already-removed
// items, so the bulk metadata delete proceeds regardless and blob
// failures come back as warnings on the result.
func (s *DocumentService) Delete(ctx context.Context, companyID, id uuid.UUID) (*DeleteResult, error) {
	subtree, err := s.collectSubtree(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(subtree))
	paths := make([]string, 0, len(subtree))
	for _, document := range subtree {
		ids = append(ids, document.ID)
		if document.Kind == models.DocumentKindFile && document.StoragePath != nil {
			paths = append(paths, *document.StoragePath)
		}
	}

	result := &DeleteResult{DeletedIDs: ids}
	if len(paths) > 0 {
		if failures := s.Storage.DeleteMany(ctx, paths); len(failures) > 0 {
			result.BlobFailures = failures
			warning := &PartialStorageDeleteError{Failures: failures}
			logger.Warn("document_blob_delete_partial_failure", map[string]interface{}{
				"company_id":   companyID.String(),
				"document_id":  id.String(),
				"failed_paths": warning.Paths(),
			})
		}
	}

	if err := s.DB.WithContext(ctx).Delete(&models.Document{}, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Download resolves id to a file row and streams its blob. A row whose
// blob is gone reports ErrMissingBlob, distinct from ErrNotFound, so
// callers can offer re-upload instead of retrying.
func (s *DocumentService) Download(ctx context.Context, companyID, id uuid.UUID) (*models.Document, io.ReadCloser, storage.ObjectInfo, error) {
	document, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	if document.IsFolder() || document.StoragePath == nil {
		return nil, nil, storage.ObjectInfo{}, ErrNotFound
	}

	reader, info, err := s.Storage.Download(ctx, *document.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, storage.ObjectInfo{}, ErrMissingBlob
		}
		return nil, nil, storage.ObjectInfo{}, err
	}
	return document, reader, info, nil
}

func (s *DocumentService) validateParent(ctx context.Context, companyID uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}

	var parent models.Document
	if err := s.DB.WithContext(ctx).First(&parent, "id = ? AND company_id = ?", *parentID, companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrInvalidParent
		}
		return err
	}
	if !parent.IsFolder() {
		return ErrInvalidParent
	}
	return nil
}

// collectSubtree loads the company's documents once, builds an adjacency
// map and walks the subtree rooted at rootID with an explicit stack. The
// visited set guards against a cycle a racing move may have formed.
func (s *DocumentService) collectSubtree(ctx context.Context, companyID, rootID uuid.UUID) ([]models.Document, error) {
	all, err := s.List(ctx, companyID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Document, len(all))
	childrenOf := make(map[uuid.UUID][]uuid.UUID)
	for _, document := range all {
		byID[document.ID] = document
		if document.ParentID != nil {
			childrenOf[*document.ParentID] = append(childrenOf[*document.ParentID], document.ID)
		}
	}

	if _, ok := byID[rootID]; !ok {
		return nil, ErrNotFound
	}

	subtree := make([]models.Document, 0, 8)
	visited := make(map[uuid.UUID]bool)
	stack := []uuid.UUID{rootID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		subtree = append(subtree, byID[current])
		stack = append(stack, childrenOf[current]...)
	}
	return subtree, nil
}
