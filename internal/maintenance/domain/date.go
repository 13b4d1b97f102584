package maintenance

import (
	"fmt"
	"strings"
	"time"
)

// UnsetDate is the sentinel for "no date recorded".
const UnsetDate = "-"

// ToDisplay converts an ISO date (YYYY-MM-DD) to display form (DD/MM/YYYY).
// The sentinel passes through, and so does anything that does not split into
// three parts: dates can arrive from free-text fields or legacy exports, and
// the carnet's policy is to show them untouched rather than fail.
func ToDisplay(iso string) string {
	if iso == "" || iso == UnsetDate {
		return iso
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// ToISO converts a display date (DD/MM/YYYY) to ISO form (YYYY-MM-DD), with
// the same pass-through leniency as ToDisplay. Feeding it an already-ISO
// string is a no-op, so it doubles as the normalizer for stored dates.
func ToISO(display string) string {
	if display == "" || display == UnsetDate {
		return display
	}
	parts := strings.Split(display, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return display
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// FormatISO renders t's calendar date in ISO form. The time's own location is
// respected; "today" means the local day, not the UTC one.
func FormatISO(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// FormatDisplay renders t's calendar date in display form.
func FormatDisplay(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}
