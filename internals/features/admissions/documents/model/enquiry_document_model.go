package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentKind string

const (
	DocumentKindPhoto                DocumentKind = "photo"
	DocumentKindAadhaar              DocumentKind = "aadhaar"
	DocumentKindMarksheet10          DocumentKind = "marksheet_10"
	DocumentKindMarksheet12          DocumentKind = "marksheet_12"
	DocumentKindTransferCertificate  DocumentKind = "transfer_certificate"
	DocumentKindMigrationCertificate DocumentKind = "migration_certificate"
	DocumentKindCasteCertificate     DocumentKind = "caste_certificate"
	DocumentKindIncomeCertificate    DocumentKind = "income_certificate"
	DocumentKindOther                DocumentKind = "other"
)

var AllDocumentKinds = []DocumentKind{
	DocumentKindPhoto, DocumentKindAadhaar, DocumentKindMarksheet10, DocumentKindMarksheet12,
	DocumentKindTransferCertificate, DocumentKindMigrationCertificate,
	DocumentKindCasteCertificate, DocumentKindIncomeCertificate, DocumentKindOther,
}

// RequiredDocumentKinds must all be verified before admission.
var RequiredDocumentKinds = []DocumentKind{
	DocumentKindPhoto, DocumentKindAadhaar, DocumentKindMarksheet10,
	DocumentKindMarksheet12, DocumentKindTransferCertificate,
}

func (k DocumentKind) Valid() bool {
	for _, x := range AllDocumentKinds {
		if x == k {
			return true
		}
	}
	return false
}

func (k DocumentKind) Required() bool {
	for _, x := range RequiredDocumentKinds {
		if x == k {
			return true
		}
	}
	return false
}

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

type EnquiryDocumentModel struct {
	EnquiryDocumentID           uuid.UUID      `json:"enquiry_document_id" gorm:"column:enquiry_document_id;type:uuid;default:gen_random_uuid();primaryKey"`
	EnquiryDocumentEnquiryID    uuid.UUID      `json:"enquiry_document_enquiry_id" gorm:"column:enquiry_document_enquiry_id;type:uuid;not null"`
	EnquiryDocumentKind         DocumentKind   `json:"enquiry_document_kind" gorm:"column:enquiry_document_kind;type:varchar(40);not null"`
	EnquiryDocumentFileName     *string        `json:"enquiry_document_file_name,omitempty" gorm:"column:enquiry_document_file_name;type:varchar(255)"`
	EnquiryDocumentFileURL      string         `json:"enquiry_document_file_url" gorm:"column:enquiry_document_file_url;type:text;not null"`
	EnquiryDocumentObjectKey    string         `json:"-" gorm:"column:enquiry_document_object_key;type:text;not null"`
	EnquiryDocumentMimeType     *string        `json:"enquiry_document_mime_type,omitempty" gorm:"column:enquiry_document_mime_type;type:varchar(100)"`
	EnquiryDocumentSizeBytes    int64          `json:"enquiry_document_size_bytes" gorm:"column:enquiry_document_size_bytes;not null;default:0"`
	EnquiryDocumentStatus       DocumentStatus `json:"enquiry_document_status" gorm:"column:enquiry_document_status;type:varchar(20);not null;default:'pending'"`
	EnquiryDocumentRejectReason *string        `json:"enquiry_document_reject_reason,omitempty" gorm:"column:enquiry_document_reject_reason;type:text"`
	EnquiryDocumentVerifiedBy   *uuid.UUID     `json:"enquiry_document_verified_by,omitempty" gorm:"column:enquiry_document_verified_by;type:uuid"`
	EnquiryDocumentVerifiedAt   *time.Time     `json:"enquiry_document_verified_at,omitempty" gorm:"column:enquiry_document_verified_at;type:timestamptz"`

	EnquiryDocumentCreatedAt time.Time      `json:"enquiry_document_created_at" gorm:"column:enquiry_document_created_at;type:timestamptz;not null;autoCreateTime"`
	EnquiryDocumentUpdatedAt time.Time      `json:"enquiry_document_updated_at" gorm:"column:enquiry_document_updated_at;type:timestamptz;not null;autoUpdateTime"`
	EnquiryDocumentDeletedAt gorm.DeletedAt `json:"-" gorm:"column:enquiry_document_deleted_at;type:timestamptz;index"`
}

func (EnquiryDocumentModel) TableName() string { return "enquiry_documents" }
