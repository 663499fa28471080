package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/admissions/documents/model"
	helper "admissions_backend/internals/helpers"
)

func doc(kind model.DocumentKind, status model.DocumentStatus) model.EnquiryDocumentModel {
	return model.EnquiryDocumentModel{EnquiryDocumentID: uuid.New(), EnquiryDocumentKind: kind, EnquiryDocumentStatus: status}
}

func TestBuildChecklist(t *testing.T) {
	enq := uuid.New()

	empty := BuildChecklist(enq, nil)
	assert.False(t, empty.AllVerified)
	assert.Len(t, empty.Missing, len(model.RequiredDocumentKinds))
	assert.Len(t, empty.Items, len(model.RequiredDocumentKinds))

	rows := []model.EnquiryDocumentModel{
		doc(model.DocumentKindAadhaar, model.DocumentStatusRejected),
		doc(model.DocumentKindPhoto, model.DocumentStatusPending),
		doc(model.DocumentKindPhoto, model.DocumentStatusVerified),
		doc(model.DocumentKindMarksheet10, model.DocumentStatusVerified),
		doc(model.DocumentKindOther, model.DocumentStatusPending),
	}
	cl := BuildChecklist(enq, rows)
	assert.Equal(t, []model.DocumentKind{model.DocumentKindAadhaar}, cl.Rejected)
	assert.Empty(t, cl.Pending, "older verified photo still counts")
	assert.Equal(t, []model.DocumentKind{model.DocumentKindMarksheet12, model.DocumentKindTransferCertificate}, cl.Missing)
	assert.Len(t, cl.Items, len(model.RequiredDocumentKinds)+1)
	assert.False(t, cl.AllVerified)

	var all []model.EnquiryDocumentModel
	for _, k := range model.RequiredDocumentKinds {
		all = append(all, doc(k, model.DocumentStatusVerified))
	}
	assert.True(t, BuildChecklist(enq, all).AllVerified)
}

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareUpload(t *testing.T) {
	_, err := PrepareUpload(model.DocumentKind("passport"), Upload{FileName: "a.pdf", Data: []byte("x")})
	var ve *helper.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "kind")

	_, err = PrepareUpload(model.DocumentKindPhoto, Upload{FileName: "scan.pdf", Data: []byte("%PDF")})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "file")

	_, err = PrepareUpload(model.DocumentKindAadhaar, Upload{FileName: "a.docx", Data: []byte("x")})
	require.ErrorAs(t, err, &ve)

	_, err = PrepareUpload(model.DocumentKindAadhaar, Upload{FileName: "a.pdf", Data: make([]byte, constants.MaxUploadBytes+1)})
	require.ErrorAs(t, err, &ve)

	up, err := PrepareUpload(model.DocumentKindMarksheet10, Upload{FileName: "m.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", up.ContentType)

	photo, err := PrepareUpload(model.DocumentKindPhoto, Upload{FileName: "me.png", ContentType: "image/png", Data: pngBytes(t, 1200, 900)})
	require.NoError(t, err)
	assert.Equal(t, "me.webp", photo.FileName)
	assert.Equal(t, "image/webp", photo.ContentType)
	assert.NotEmpty(t, photo.Data)
}
