package hdkey

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePath parses a derivation path such as "m/44'/0'/0/1" into child
// indices. Hardened components are marked with a trailing apostrophe or
// "h"; "m" alone (or an empty path) addresses the root. Whitespace around
// separators is ignored, so the display form "m / 44' / 0 / 1" parses too.
func ParsePath(path string) ([]uint32, error) {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.TrimPrefix(trimmed, "m")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimPrefix(trimmed, "/")
	if strings.TrimSpace(trimmed) == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, "/")
	indices := make([]uint32, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		hardened := false
		switch {
		case strings.HasSuffix(part, "'"), strings.HasSuffix(part, "h"), strings.HasSuffix(part, "H"):
			hardened = true
			part = part[:len(part)-1]
		}

		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: path component %q", ErrInvalidParameter, parts[i])
		}
		if n >= uint64(FirstHardened) {
			return nil, fmt.Errorf("%w: path component %q exceeds %d", ErrInvalidParameter, parts[i], FirstHardened-1)
		}

		index := uint32(n)
		if hardened {
			index += FirstHardened
		}
		indices[i] = index
	}
	return indices, nil
}

// FormatPath renders child indices back into textual form with
// apostrophe-marked hardened components.
func FormatPath(indices []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range indices {
		b.WriteString("/")
		if idx >= FirstHardened {
			b.WriteString(strconv.FormatUint(uint64(idx-FirstHardened), 10))
			b.WriteString("'")
		} else {
			b.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	}
	return b.String()
}
