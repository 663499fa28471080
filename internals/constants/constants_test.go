package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleError(t *testing.T) {
	assert.Equal(t, "Only admin may access users.", RoleErrorAdmin("users"))
	assert.Equal(t, "Only admin, counsellor or accountant may access fees.", RoleError("fees", FeeDesk))
	assert.Equal(t, "Only admin may access x.", RoleError("x", AdminOnly))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("registrar"))
	assert.False(t, IsValidRole("owner"))
}

func TestDetectFileKind(t *testing.T) {
	assert.Equal(t, FileKindPDF, DetectFileKindFromExt("Marksheet.PDF"))
	assert.Equal(t, FileKindImage, DetectFileKindFromExt("photo.jpeg"))
	assert.Equal(t, FileKindUnknown, DetectFileKindFromExt("notes.docx"))
	assert.Equal(t, "image/webp", MimeFromExt("a.webp"))
	assert.Equal(t, "application/octet-stream", MimeFromExt("a"))
}
