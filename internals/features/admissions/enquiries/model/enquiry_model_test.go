package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to EnquiryStatus
		ok       bool
	}{
		{EnquiryStatusNew, EnquiryStatusContacted, true},
		{EnquiryStatusNew, EnquiryStatusInProgress, true},
		{EnquiryStatusNew, EnquiryStatusFeesFinalized, false},
		{EnquiryStatusContacted, EnquiryStatusInProgress, true},
		{EnquiryStatusInProgress, EnquiryStatusFeesFinalized, true},
		{EnquiryStatusFeesFinalized, EnquiryStatusDocumentsVerified, true},
		{EnquiryStatusDocumentsVerified, EnquiryStatusAdmitted, true},
		{EnquiryStatusInProgress, EnquiryStatusContacted, false},
		{EnquiryStatusFeesFinalized, EnquiryStatusDropped, true},
		{EnquiryStatusNew, EnquiryStatusRejected, true},
		{EnquiryStatusAdmitted, EnquiryStatusDropped, false},
		{EnquiryStatusDropped, EnquiryStatusNew, false},
		{EnquiryStatusNew, EnquiryStatusNew, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, EnquiryStatus("admitted").IsTerminal())
	assert.False(t, EnquiryStatusInProgress.IsTerminal())
	assert.True(t, EnquiryStatus("fees_finalized").Valid())
	assert.False(t, EnquiryStatus("lost").Valid())
	assert.Equal(t, int16(4), StageFor(EnquiryStatusFeesFinalized))
	assert.Equal(t, int16(5), StageFor(EnquiryStatusAdmitted))
	assert.Equal(t, int16(1), StageFor(EnquiryStatusNew))
}
