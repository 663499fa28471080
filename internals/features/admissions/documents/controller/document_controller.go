package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/admissions/documents/dto"
	"admissions_backend/internals/features/admissions/documents/model"
	"admissions_backend/internals/features/admissions/documents/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type DocumentHandler struct {
	Svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Svc: svc}
}

func readUpload(c *fiber.Ctx) (service.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return service.Upload{}, helper.NewValidationError(map[string][]string{"file": {"file is required"}})
	}
	if fh.Size > constants.MaxUploadBytes {
		return service.Upload{}, helper.NewValidationError(map[string][]string{"file": {"file is larger than 5 MB"}})
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, errors.Wrap(err, "open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
	if err != nil {
		return service.Upload{}, errors.Wrap(err, "read upload")
	}
	return service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// POST /api/a/enquiries/:id/documents   (multipart: kind, file)
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	kind := model.DocumentKind(c.FormValue("kind"))
	if !kind.Valid() {
		return helper.NewValidationError(map[string][]string{"kind": {"unknown document kind"}})
	}
	up, err := readUpload(c)
	if err != nil {
		return err
	}
	doc, err := h.Svc.Upload(c.UserContext(), enquiryID, kind, up)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "document uploaded", dto.FromModel(*doc))
}

// GET /api/a/enquiries/:id/documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Svc.List(c.UserContext(), enquiryID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "documents", dto.FromModels(rows))
}

// GET /api/a/enquiries/:id/documents/checklist
func (h *DocumentHandler) Checklist(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	cl, err := h.Svc.Checklist(c.UserContext(), enquiryID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "document checklist", cl)
}

// PATCH /api/a/documents/:doc_id/verify
func (h *DocumentHandler) Verify(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "doc_id")
	if err != nil {
		return err
	}
	doc, err := h.Svc.Verify(c.UserContext(), id, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "document verified", dto.FromModel(*doc))
}

// PATCH /api/a/documents/:doc_id/reject
func (h *DocumentHandler) Reject(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "doc_id")
	if err != nil {
		return err
	}
	var req dto.RejectDocumentRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	doc, err := h.Svc.Reject(c.UserContext(), id, req.Reason, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "document rejected", dto.FromModel(*doc))
}

// DELETE /api/a/documents/:doc_id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "doc_id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return helper.JsonDeleted(c, "document deleted", fiber.Map{"enquiry_document_id": id})
}
