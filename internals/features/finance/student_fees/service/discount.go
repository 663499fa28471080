package service

import (
	"math"

	model "admissions_backend/internals/features/finance/student_fees/model"
)

// DiscountPercent is the whole-number discount of final against original,
// always within [0,100]. Missing values count as zero.
func DiscountPercent(original, final *float64) int {
	o, f := 0.0, 0.0
	if model.IsNumber(original) {
		o = *original
	}
	if model.IsNumber(final) {
		f = *final
	}
	if o <= 0 {
		return 0
	}
	if f > o {
		f = o
	}
	pct := int(math.Round(100 * (1 - f/o)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
