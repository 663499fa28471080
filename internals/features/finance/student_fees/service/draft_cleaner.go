package service

import (
	"strings"
	"time"

	"github.com/jinzhu/now"

	"admissions_backend/internals/configs"
	model "admissions_backend/internals/features/finance/student_fees/model"
)

// accepted spellings of feesClearanceDate; day first wins over month first.
var clearanceDateFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ParseClearanceDate reads a user-typed date in the app timezone.
func ParseClearanceDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	cfg := &now.Config{
		TimeLocation: configs.Location(),
		TimeFormats:  clearanceDateFormats,
	}
	t, err := cfg.Parse(s)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// CleanDataForDraft keeps only what is worth persisting in a draft.
// Returns nil when nothing survives; callers skip the write then.
// Semester entries without a usable amount are dropped; the kept ones
// remember their semester number.
func CleanDataForDraft(values *model.FeeForm) *model.FeeDraftData {
	if values == nil {
		return nil
	}
	out := model.FeeDraftData{}

	for _, item := range values.OtherFees {
		if strings.TrimSpace(string(item.Type)) == "" || !model.IsNumber(item.FinalFee) || *item.FinalFee < 0 {
			continue
		}
		kept := model.FeeLineItem{
			Type:     item.Type,
			FinalFee: model.Float(*item.FinalFee),
		}
		if model.IsNumber(item.FeesDepositedTOA) && *item.FeesDepositedTOA >= 0 {
			kept.FeesDepositedTOA = model.Float(*item.FeesDepositedTOA)
		}
		if item.Remarks != nil {
			if r := strings.TrimSpace(*item.Remarks); r != "" {
				kept.Remarks = &r
			}
		}
		out.OtherFees = append(out.OtherFees, kept)
	}

	for i, sem := range values.SemWiseFees {
		if !model.IsNumber(sem.FinalFee) || *sem.FinalFee < 0 {
			continue
		}
		out.SemWiseFees = append(out.SemWiseFees, model.SemesterFee{Semester: i + 1, FinalFee: model.Float(*sem.FinalFee)})
	}

	if t, ok := ParseClearanceDate(values.FeesClearanceDate); ok {
		out.FeesClearanceDate = t.Format(model.ClearanceDateLayout)
	}

	out.Counsellor = nonEmpty(values.Counsellor)
	out.Telecaller = nonEmpty(values.Telecaller)
	out.Remarks = strings.TrimSpace(values.Remarks)

	if out.IsEmpty() {
		return nil
	}
	return &out
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
