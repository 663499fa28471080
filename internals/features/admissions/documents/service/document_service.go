package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/admissions/documents/dto"
	"admissions_backend/internals/features/admissions/documents/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	enquiryService "admissions_backend/internals/features/admissions/enquiries/service"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/helpers/storage"
	"admissions_backend/internals/logger"
)

type DocumentService struct {
	DB    *gorm.DB
	Store storage.Store
	Now   func() time.Time
}

func New(db *gorm.DB, store storage.Store) *DocumentService {
	return &DocumentService{DB: db, Store: store, Now: time.Now}
}

// Upload is one multipart file as received by the controller.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PrepareUpload checks size and type. Photos are converted to WebP.
func PrepareUpload(kind model.DocumentKind, up Upload) (Upload, error) {
	ve := &helper.ValidationError{}
	if !kind.Valid() {
		ve.Add("kind", "unknown document kind")
	}
	if len(up.Data) == 0 {
		ve.Add("file", "file is required")
	}
	if len(up.Data) > constants.MaxUploadBytes {
		ve.Add("file", "file is larger than 5 MB")
	}
	fileKind := constants.DetectFileKindFromExt(up.FileName)
	switch {
	case fileKind == constants.FileKindUnknown:
		ve.Add("file", "only pdf, jpg, png or webp files are accepted")
	case kind == model.DocumentKindPhoto && fileKind != constants.FileKindImage:
		ve.Add("file", "photo must be an image")
	}
	if ve.HasErrors() {
		return up, ve
	}

	if kind == model.DocumentKindPhoto {
		webp, err := storage.NormalizePhoto(up.Data)
		if err != nil {
			return up, helper.NewValidationError(map[string][]string{"file": {"photo could not be read"}})
		}
		return Upload{FileName: storage.ReplaceExt(up.FileName, ".webp"), ContentType: "image/webp", Data: webp}, nil
	}
	ct := strings.TrimSpace(up.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = constants.MimeFromExt(up.FileName)
	}
	return Upload{FileName: up.FileName, ContentType: ct, Data: up.Data}, nil
}

func (s *DocumentService) loadEnquiry(ctx context.Context, id uuid.UUID) (*enquiryModel.EnquiryModel, error) {
	var e enquiryModel.EnquiryModel
	if err := s.DB.WithContext(ctx).Where("enquiry_id = ?", id).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "enquiry not found")
		}
		return nil, errors.Wrap(err, "load enquiry")
	}
	return &e, nil
}

// Upload stores the file and records it. Earlier pending or rejected
// uploads of the same kind are replaced; "other" accumulates.
func (s *DocumentService) Upload(ctx context.Context, enquiryID uuid.UUID, kind model.DocumentKind, up Upload) (*model.EnquiryDocumentModel, error) {
	if s.Store == nil {
		return nil, errors.Wrap(helper.ErrUnavailable, "object storage is not configured")
	}
	enq, err := s.loadEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	if enq.EnquiryStatus == enquiryModel.EnquiryStatusDropped || enq.EnquiryStatus == enquiryModel.EnquiryStatusRejected {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", enq.EnquiryStatus)
	}

	prepared, err := PrepareUpload(kind, up)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey("enquiries/"+enquiryID.String()+"/"+string(kind), prepared.FileName)
	url, err := s.Store.Put(ctx, key, prepared.ContentType, prepared.Data)
	if err != nil {
		return nil, errors.Wrap(err, "store document")
	}

	name := prepared.FileName
	ct := prepared.ContentType
	doc := &model.EnquiryDocumentModel{
		EnquiryDocumentEnquiryID: enquiryID,
		EnquiryDocumentKind:      kind,
		EnquiryDocumentFileName:  &name,
		EnquiryDocumentFileURL:   url,
		EnquiryDocumentObjectKey: key,
		EnquiryDocumentMimeType:  &ct,
		EnquiryDocumentSizeBytes: int64(len(prepared.Data)),
		EnquiryDocumentStatus:    model.DocumentStatusPending,
	}

	var replaced []model.EnquiryDocumentModel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if kind != model.DocumentKindOther {
			if err := tx.Where("enquiry_document_enquiry_id = ? AND enquiry_document_kind = ? AND enquiry_document_status <> ?",
				enquiryID, kind, model.DocumentStatusVerified).
				Find(&replaced).Error; err != nil {
				return err
			}
			if len(replaced) > 0 {
				if err := tx.Delete(&replaced).Error; err != nil {
					return err
				}
			}
		}
		return tx.Create(doc).Error
	})
	if err != nil {
		_ = s.Store.Delete(ctx, key)
		return nil, errors.Wrap(err, "save document")
	}
	for _, old := range replaced {
		if err := s.Store.Delete(ctx, old.EnquiryDocumentObjectKey); err != nil {
			logger.Warn("remove replaced document object", zap.String("key", old.EnquiryDocumentObjectKey), zap.Error(err))
		}
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, enquiryID uuid.UUID) ([]model.EnquiryDocumentModel, error) {
	var rows []model.EnquiryDocumentModel
	err := s.DB.WithContext(ctx).
		Where("enquiry_document_enquiry_id = ?", enquiryID).
		Order("enquiry_document_created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	return rows, nil
}

func (s *DocumentService) get(tx *gorm.DB, id uuid.UUID) (*model.EnquiryDocumentModel, error) {
	var d model.EnquiryDocumentModel
	if err := tx.Where("enquiry_document_id = ?", id).Take(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "document not found")
		}
		return nil, errors.Wrap(err, "load document")
	}
	return &d, nil
}

// Verify marks a document verified and advances the enquiry when the
// checklist is complete and fees are finalized.
func (s *DocumentService) Verify(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*model.EnquiryDocumentModel, error) {
	var doc *model.EnquiryDocumentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if d.EnquiryDocumentStatus == model.DocumentStatusVerified {
			doc = d
			return nil
		}
		now := s.Now()
		if err := tx.Model(d).Updates(map[string]any{
			"enquiry_document_status":        model.DocumentStatusVerified,
			"enquiry_document_reject_reason": nil,
			"enquiry_document_verified_by":   actor,
			"enquiry_document_verified_at":   now,
		}).Error; err != nil {
			return errors.Wrap(err, "verify document")
		}
		if _, err := advanceIfReady(tx, d.EnquiryDocumentEnquiryID); err != nil {
			return err
		}
		doc, err = s.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Reject(ctx context.Context, id uuid.UUID, reason string, actor *uuid.UUID) (*model.EnquiryDocumentModel, error) {
	tx := s.DB.WithContext(ctx)
	d, err := s.get(tx, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := tx.Model(d).Updates(map[string]any{
		"enquiry_document_status":        model.DocumentStatusRejected,
		"enquiry_document_reject_reason": reason,
		"enquiry_document_verified_by":   actor,
		"enquiry_document_verified_at":   s.Now(),
	}).Error; err != nil {
		return nil, errors.Wrap(err, "reject document")
	}
	return s.get(tx, id)
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	tx := s.DB.WithContext(ctx)
	d, err := s.get(tx, id)
	if err != nil {
		return err
	}
	if d.EnquiryDocumentStatus == model.DocumentStatusVerified {
		return errors.Wrap(helper.ErrConflict, "verified documents cannot be deleted")
	}
	if err := tx.Delete(d).Error; err != nil {
		return errors.Wrap(err, "delete document")
	}
	if s.Store != nil {
		if err := s.Store.Delete(ctx, d.EnquiryDocumentObjectKey); err != nil {
			logger.Warn("remove document object", zap.String("key", d.EnquiryDocumentObjectKey), zap.Error(err))
		}
	}
	return nil
}

func (s *DocumentService) Checklist(ctx context.Context, enquiryID uuid.UUID) (*dto.ChecklistResponse, error) {
	if _, err := s.loadEnquiry(ctx, enquiryID); err != nil {
		return nil, err
	}
	rows, err := s.List(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	cl := BuildChecklist(enquiryID, rows)
	return &cl, nil
}

// AdvanceIfReady is called after fees are finalized; documents may have been
// verified earlier.
func (s *DocumentService) AdvanceIfReady(ctx context.Context, enquiryID uuid.UUID) (bool, error) {
	var moved bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		moved, err = advanceIfReady(tx, enquiryID)
		return err
	})
	return moved, err
}

func advanceIfReady(tx *gorm.DB, enquiryID uuid.UUID) (bool, error) {
	var rows []model.EnquiryDocumentModel
	if err := tx.Where("enquiry_document_enquiry_id = ?", enquiryID).
		Order("enquiry_document_created_at DESC").
		Find(&rows).Error; err != nil {
		return false, errors.Wrap(err, "load documents")
	}
	if !BuildChecklist(enquiryID, rows).AllVerified {
		return false, nil
	}
	moved, err := enquiryService.Advance(tx, enquiryID, enquiryModel.EnquiryStatusFeesFinalized, enquiryModel.EnquiryStatusDocumentsVerified)
	if err != nil {
		return false, err
	}
	if moved {
		logger.Info("enquiry documents verified", zap.String("enquiry_id", enquiryID.String()))
	}
	return moved, nil
}

// BuildChecklist reports each kind by its most recent upload.
// rows must be ordered newest first.
func BuildChecklist(enquiryID uuid.UUID, rows []model.EnquiryDocumentModel) dto.ChecklistResponse {
	latest := map[model.DocumentKind]model.EnquiryDocumentModel{}
	verified := map[model.DocumentKind]bool{}
	for _, r := range rows {
		if _, ok := latest[r.EnquiryDocumentKind]; !ok {
			latest[r.EnquiryDocumentKind] = r
		}
		if r.EnquiryDocumentStatus == model.DocumentStatusVerified {
			verified[r.EnquiryDocumentKind] = true
		}
	}

	out := dto.ChecklistResponse{
		EnquiryID: enquiryID,
		Items:     []dto.ChecklistItem{},
		Missing:   []model.DocumentKind{},
		Pending:   []model.DocumentKind{},
		Rejected:  []model.DocumentKind{},
	}
	for _, kind := range model.AllDocumentKinds {
		doc, ok := latest[kind]
		if !ok && !kind.Required() {
			continue
		}
		item := dto.ChecklistItem{Kind: kind, Required: kind.Required(), Status: "missing"}
		switch {
		case verified[kind]:
			item.Status = string(model.DocumentStatusVerified)
		case ok:
			item.Status = string(doc.EnquiryDocumentStatus)
		}
		if ok {
			id := doc.EnquiryDocumentID
			item.DocumentID = &id
		}
		out.Items = append(out.Items, item)

		if !item.Required {
			continue
		}
		switch item.Status {
		case "missing":
			out.Missing = append(out.Missing, kind)
		case string(model.DocumentStatusPending):
			out.Pending = append(out.Pending, kind)
		case string(model.DocumentStatusRejected):
			out.Rejected = append(out.Rejected, kind)
		}
	}
	out.AllVerified = len(out.Missing) == 0 && len(out.Pending) == 0 && len(out.Rejected) == 0
	return out
}
