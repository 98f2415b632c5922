package syntax

import (
	"strconv"
	"strings"
)

// ReservedPrefix starts every name the rewriter synthesises. User code must
// not use it.
const ReservedPrefix = "__cain_"

const (
	PlaceholderPrefix = ReservedPrefix + "placeholder_"
	CapturePrefix     = ReservedPrefix + "ident_"
)

func IsReserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}

func PlaceholderName(n uint64) string {
	return PlaceholderPrefix + strconv.FormatUint(n, 10)
}

// ParsePlaceholder recovers the number of a placeholder name.
func ParsePlaceholder(name string) (uint64, bool) {
	return parseNumbered(name, PlaceholderPrefix)
}

func CaptureName(n uint64) string {
	return CapturePrefix + strconv.FormatUint(n, 10)
}

// ParseCapture recovers the number of a capture name.
func ParseCapture(name string) (uint64, bool) {
	return parseNumbered(name, CapturePrefix)
}

func parseNumbered(name, prefix string) (uint64, bool) {
	digits, ok := strings.CutPrefix(name, prefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
