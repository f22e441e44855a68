package form

import (
	"strconv"
	"strings"
)

// Section anchors shared by the compiled markup and the summary.
const (
	SectionCustomer   = "section-customer"
	SectionGender     = "section-gender"
	SectionVisitCount = "section-visit-count"
	SectionCoupon     = "section-coupon"
	SectionMenu       = "section-menu"
	SectionDateTime   = "section-datetime"
	SectionMessage    = "section-message"
	SectionSummary    = "section-summary"
)

// FormatPrice renders yen with thousands separators, e.g. ¥4,000.
func FormatPrice(yen int) string {
	sign := ""
	if yen < 0 {
		sign = "-"
		yen = -yen
	}
	digits := strconv.Itoa(yen)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "¥" + b.String()
}

// FormatDuration renders minutes, e.g. 60分.
func FormatDuration(minutes int) string {
	return strconv.Itoa(minutes) + "分"
}
