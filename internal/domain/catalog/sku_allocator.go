package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FallbackPrefix is used when a category name yields no usable characters
	FallbackPrefix = "CAT"
	// maxPrefixLen caps the derived prefix length
	maxPrefixLen = 6
	// suffixDigits is the zero-padded width of the numeric suffix
	suffixDigits = 6
)

// CodePrefix derives the SKU prefix for a category name: upper-case, strip
// everything outside [A-Z0-9], truncate to 6 characters, falling back to
// "CAT" when nothing survives.
func CodePrefix(categoryName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(categoryName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= maxPrefixLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return FallbackPrefix
	}
	return b.String()
}

// AllocateCode allocates the next product code for a category against the
// given snapshot: PREFIX-NNNNNN with a 6-digit zero-padded suffix one past
// the maximum suffix already present for that prefix.
//
// The function is pure; calling it twice against the same snapshot returns
// the same code. Uniqueness is therefore scoped to the snapshot: two sessions
// allocating against the same category concurrently can collide, and only the
// backend's own uniqueness constraint would catch it. That race is inherited
// from the system this replaces, not resolved here.
func AllocateCode(categoryName string, snapshot *Snapshot) string {
	prefix := CodePrefix(categoryName)
	max := int64(0)
	for _, item := range snapshot.items {
		suffix, ok := matchSuffix(item.SKUCode, prefix)
		if ok && suffix > max {
			max = suffix
		}
	}
	return fmt.Sprintf("%s-%0*d", prefix, suffixDigits, max+1)
}

// matchSuffix extracts the numeric suffix from a code of the exact form
// PREFIX-NNNNNN; any other shape does not participate in allocation.
func matchSuffix(code, prefix string) (int64, bool) {
	rest, found := strings.CutPrefix(code, prefix+"-")
	if !found || len(rest) != suffixDigits {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
