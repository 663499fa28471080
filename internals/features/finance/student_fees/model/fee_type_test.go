package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayAndScheduleLabels(t *testing.T) {
	for _, ft := range AllFeeTypes {
		assert.NotEqual(t, UnknownLabel, DisplayLabel(ft), ft)
		assert.NotEqual(t, UnknownSchedule, ScheduleLabel(ft), ft)
	}
	assert.Equal(t, "Prospectus Fee", DisplayLabel(FeeTypeProspectus))
	assert.Equal(t, "Semester I Fee", DisplayLabel(FeeTypeSem1))
	assert.Equal(t, ScheduleSemWise, ScheduleLabel(FeeTypeSem1))
	assert.Equal(t, ScheduleOneTime, ScheduleLabel(FeeTypeRegistration))
	assert.Equal(t, ScheduleYearly, ScheduleLabel(FeeTypeHostel))

	assert.Equal(t, "Unknown", DisplayLabel("LIBRARY"))
	assert.Equal(t, "N/A", ScheduleLabel(""))
}

func TestParseFeeType(t *testing.T) {
	ft, ok := ParseFeeType("Book Bank")
	assert.True(t, ok)
	assert.Equal(t, FeeTypeBookBank, ft)

	ft, ok = ParseFeeType(" hostel ")
	assert.True(t, ok)
	assert.Equal(t, FeeTypeHostel, ft)

	_, ok = ParseFeeType("Library Fee")
	assert.False(t, ok)
}

func TestExemptFromOriginalCap(t *testing.T) {
	assert.True(t, FeeTypeTransport.ExemptFromOriginalCap())
	assert.True(t, FeeTypeHostel.ExemptFromOriginalCap())
	assert.False(t, FeeTypeProspectus.ExemptFromOriginalCap())
}

func TestIsNumber(t *testing.T) {
	assert.False(t, IsNumber(nil))
	assert.False(t, IsNumber(Float(math.NaN())))
	assert.False(t, IsNumber(Float(math.Inf(1))))
	assert.True(t, IsNumber(Float(0)))
}

func TestDraftDataIsEmpty(t *testing.T) {
	assert.True(t, FeeDraftData{}.IsEmpty())
	assert.False(t, FeeDraftData{Remarks: "call back"}.IsEmpty())
}
