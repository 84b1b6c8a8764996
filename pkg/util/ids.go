package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces record identifiers.
type IDGenerator func() string

// NewID returns a time-prefixed random identifier, e.g. "lq2x8k1c-3f9a7b2e4d6c".
// The base36 millisecond prefix keeps ids roughly ordered by creation time.
func NewID() string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "-" + suffix
}
