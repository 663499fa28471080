package dto

import (
	"time"

	"github.com/google/uuid"

	"admissions_backend/internals/features/admissions/documents/model"
)

type RejectDocumentRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=500"`
}

type DocumentResponse struct {
	ID           uuid.UUID            `json:"enquiry_document_id"`
	EnquiryID    uuid.UUID            `json:"enquiry_document_enquiry_id"`
	Kind         model.DocumentKind   `json:"enquiry_document_kind"`
	FileName     *string              `json:"enquiry_document_file_name,omitempty"`
	FileURL      string               `json:"enquiry_document_file_url"`
	MimeType     *string              `json:"enquiry_document_mime_type,omitempty"`
	SizeBytes    int64                `json:"enquiry_document_size_bytes"`
	Status       model.DocumentStatus `json:"enquiry_document_status"`
	RejectReason *string              `json:"enquiry_document_reject_reason,omitempty"`
	VerifiedBy   *uuid.UUID           `json:"enquiry_document_verified_by,omitempty"`
	VerifiedAt   *time.Time           `json:"enquiry_document_verified_at,omitempty"`
	CreatedAt    time.Time            `json:"enquiry_document_created_at"`
}

func FromModel(m model.EnquiryDocumentModel) DocumentResponse {
	return DocumentResponse{
		ID:           m.EnquiryDocumentID,
		EnquiryID:    m.EnquiryDocumentEnquiryID,
		Kind:         m.EnquiryDocumentKind,
		FileName:     m.EnquiryDocumentFileName,
		FileURL:      m.EnquiryDocumentFileURL,
		MimeType:     m.EnquiryDocumentMimeType,
		SizeBytes:    m.EnquiryDocumentSizeBytes,
		Status:       m.EnquiryDocumentStatus,
		RejectReason: m.EnquiryDocumentRejectReason,
		VerifiedBy:   m.EnquiryDocumentVerifiedBy,
		VerifiedAt:   m.EnquiryDocumentVerifiedAt,
		CreatedAt:    m.EnquiryDocumentCreatedAt,
	}
}

func FromModels(rows []model.EnquiryDocumentModel) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

// ChecklistItem is one required kind and where it stands.
type ChecklistItem struct {
	Kind       model.DocumentKind `json:"kind"`
	Required   bool               `json:"required"`
	Status     string             `json:"status"` // missing | pending | verified | rejected
	DocumentID *uuid.UUID         `json:"document_id,omitempty"`
}

type ChecklistResponse struct {
	EnquiryID   uuid.UUID            `json:"enquiry_id"`
	Items       []ChecklistItem      `json:"items"`
	Missing     []model.DocumentKind `json:"missing"`
	Pending     []model.DocumentKind `json:"pending"`
	Rejected    []model.DocumentKind `json:"rejected"`
	AllVerified bool                 `json:"all_verified"`
}
