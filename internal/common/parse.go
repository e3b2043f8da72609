package common

import (
	"fmt"
	"strconv"
	"strings"
)

const bytesInMB = 1024 * 1024

// ParseBlockNumber reads a block number given either in decimal or as 0x-prefixed hex.
// Thor block numbers are 32 bits wide, larger values are rejected.
func ParseBlockNumber(s string) (uint32, error) {
	s = strings.TrimSpace(s)

	digits, base := s, 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		digits, base = rest, 16
	}

	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q: %w", s, err)
	}

	return uint32(n), nil
}

// BytesToMB converts a byte count to whole mebibytes.
func BytesToMB(bytes uint64) uint64 {
	return bytes / bytesInMB
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
