package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internals/features/admissions/enquiries/dto"
	helper "admissions_backend/internals/helpers"
)

func TestEnquiryNo(t *testing.T) {
	assert.Equal(t, "ENQ/2025-26/0007", EnquiryNo("2025-26", 7))
	assert.Equal(t, "ENQ/2025-26/12345", EnquiryNo("2025-26", 12345))
}

func TestCleanList(t *testing.T) {
	out := cleanList([]string{" Anil", "Meena", "", "anil"})
	assert.Equal(t, []string{"Anil", "Meena"}, []string(out))
	assert.NotNil(t, cleanList(nil))
}

func TestChangeStatusRejectsSystemTargets(t *testing.T) {
	svc := New(nil)
	ctx := context.Background()

	for _, st := range []string{"fees_finalized", "documents_verified", "admitted", "bogus"} {
		_, err := svc.ChangeStatus(ctx, uuid.New(), dto.StatusRequest{Status: st})
		var ve *helper.ValidationError
		require.ErrorAs(t, err, &ve, st)
		assert.Contains(t, ve.Fields, "status")
	}

	_, err := svc.ChangeStatus(ctx, uuid.New(), dto.StatusRequest{Status: "dropped"})
	var ve *helper.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "reason")
}
