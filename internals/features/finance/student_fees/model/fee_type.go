package model

import "strings"

// --- ENUM fee_type -----------------------------------------------------------
type FeeType string

const (
	FeeTypeSem1         FeeType = "SEM1FEE"
	FeeTypeProspectus   FeeType = "PROSPECTUS"
	FeeTypeRegistration FeeType = "REGISTRATION"
	FeeTypeBookBank     FeeType = "BOOKBANK"
	FeeTypeUniform      FeeType = "UNIFORM"
	FeeTypeExamFee      FeeType = "EXAMFEE"
	FeeTypeTransport    FeeType = "TRANSPORT"
	FeeTypeHostel       FeeType = "HOSTEL"
)

var AllFeeTypes = []FeeType{
	FeeTypeSem1, FeeTypeProspectus, FeeTypeRegistration, FeeTypeBookBank,
	FeeTypeUniform, FeeTypeExamFee, FeeTypeTransport, FeeTypeHostel,
}

const (
	UnknownLabel    = "Unknown"
	UnknownSchedule = "N/A"

	ScheduleSemWise = "Sem-wise"
	ScheduleOneTime = "One-time"
	ScheduleYearly  = "Yearly"
)

var displayLabels = map[FeeType]string{
	FeeTypeSem1:         "Semester I Fee",
	FeeTypeProspectus:   "Prospectus Fee",
	FeeTypeRegistration: "Registration Fee",
	FeeTypeBookBank:     "Book Bank",
	FeeTypeUniform:      "Uniform Fee",
	FeeTypeExamFee:      "Examination Fee",
	FeeTypeTransport:    "Transport Fee",
	FeeTypeHostel:       "Hostel Fee",
}

var scheduleLabels = map[FeeType]string{
	FeeTypeSem1:         ScheduleSemWise,
	FeeTypeProspectus:   ScheduleOneTime,
	FeeTypeRegistration: ScheduleOneTime,
	FeeTypeBookBank:     ScheduleYearly,
	FeeTypeUniform:      ScheduleOneTime,
	FeeTypeExamFee:      ScheduleYearly,
	FeeTypeTransport:    ScheduleYearly,
	FeeTypeHostel:       ScheduleYearly,
}

// DisplayLabel never fails; unmapped types render as "Unknown".
func DisplayLabel(t FeeType) string {
	if l, ok := displayLabels[t]; ok {
		return l
	}
	return UnknownLabel
}

// ScheduleLabel never fails; unmapped types render as "N/A".
func ScheduleLabel(t FeeType) string {
	if l, ok := scheduleLabels[t]; ok {
		return l
	}
	return UnknownSchedule
}

func (t FeeType) Valid() bool {
	_, ok := displayLabels[t]
	return ok
}

// ExemptFromOriginalCap: transport and hostel amounts are set per student,
// so their final fee may exceed the scheduled amount.
func (t FeeType) ExemptFromOriginalCap() bool {
	return t == FeeTypeTransport || t == FeeTypeHostel
}

// ParseFeeType accepts an enum key ("BOOKBANK") or a display label ("Book Bank").
func ParseFeeType(s string) (FeeType, bool) {
	s = strings.TrimSpace(s)
	if t := FeeType(strings.ToUpper(s)); t.Valid() {
		return t, true
	}
	for t, l := range displayLabels {
		if strings.EqualFold(l, s) {
			return t, true
		}
	}
	return "", false
}
