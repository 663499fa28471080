package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internals/features/crm/leads/dto"
	"admissions_backend/internals/features/crm/leads/model"
	helper "admissions_backend/internals/helpers"
)

func TestDayBounds(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in IST.
	now := time.Date(2024, 7, 3, 20, 0, 0, 0, time.UTC)
	start, end := DayBounds(now, ist)
	assert.Equal(t, time.Date(2024, 7, 4, 0, 0, 0, 0, ist), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	start, _ = DayBounds(now, nil)
	assert.Equal(t, time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC), start)
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, ConversionRate(0, 0))
	assert.Equal(t, 0.0, ConversionRate(5, 0))
	assert.Equal(t, 0.25, ConversionRate(1, 4))
	assert.Equal(t, 0.3333, ConversionRate(1, 3))
	assert.Equal(t, 1.0, ConversionRate(7, 7))
}

func TestColdCutoff(t *testing.T) {
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC), ColdCutoff(now, 7))
	assert.Equal(t, time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC), ColdCutoff(now, 0))
}

func TestValidateFollowUp(t *testing.T) {
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	later, earlier := now.Add(2*time.Hour), now.Add(-2*time.Hour)

	assert.NoError(t, ValidateFollowUp(dto.CreateFollowUpRequest{Channel: "call", Outcome: model.OutcomeInterested}, now))
	assert.NoError(t, ValidateFollowUp(dto.CreateFollowUpRequest{Channel: "call", Outcome: model.OutcomeCallBack, NextAt: &later, ContactedAt: &earlier}, now))

	var ve *helper.ValidationError
	err := ValidateFollowUp(dto.CreateFollowUpRequest{Channel: "call", Outcome: model.OutcomeCallBack}, now)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "lead_follow_up_next_at")

	err = ValidateFollowUp(dto.CreateFollowUpRequest{Channel: "call", Outcome: model.OutcomeInterested, NextAt: &earlier}, now)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "lead_follow_up_next_at")

	err = ValidateFollowUp(dto.CreateFollowUpRequest{Channel: "call", Outcome: model.OutcomeInterested, ContactedAt: &later}, now)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "contacted_at")
}

func TestReached(t *testing.T) {
	assert.True(t, model.Reached(model.OutcomeInterested))
	assert.True(t, model.Reached(model.OutcomeNotInterested))
	assert.False(t, model.Reached(model.OutcomeNoAnswer))
	assert.False(t, model.Reached(model.OutcomeWrongNumber))
}
