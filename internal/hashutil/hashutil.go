package hashutil

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// RunID identifies one fill run started at now. Runs over the same inputs
// differ only by their start time.
func RunID(target, now time.Time, inputs ...string) string {
	seed := target.Format("2006-01-02") + "\x00" + strings.Join(inputs, "\x00") +
		"\x00" + fmt.Sprintf("%d", now.UnixNano())
	return IDFromSeed(seed)
}

// IDFromSeed creates a deterministic 7-character hex ID from a seed string.
func IDFromSeed(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("%x", hash[:4])[:7]
}
