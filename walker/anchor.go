package walker

import (
	"errors"

	"github.com/haloschema/guerilla-tagdef/scanner"
)

// ErrAnchorNotFound is returned when neither of the two group-table
// fingerprints in spec.md §4.3.1 is found in the executable.
var ErrAnchorNotFound = errors.New("exe signature not found")

// variant selects which of the two historical BlockDescriptor layouts
// to use, per spec.md §4.3.1 and §4.3.3.
type variant int

const (
	variantNew variant = iota // matched the newer fingerprint
	variantOld                // matched the older fingerprint
)

func newPattern(bytes ...int) scanner.Pattern {
	p := make(scanner.Pattern, len(bytes))
	for i, b := range bytes {
		if b < 0 {
			p[i] = scanner.Any()
		} else {
			p[i] = scanner.Exact(byte(b))
		}
	}
	return p
}

// The two candidate i386 instruction-sequence fingerprints, per
// spec.md §4.3.1 — a direct port of the two sig! invocations in
// original_source/src/def_dumper/mod.rs.
var (
	patternNew = newPattern(0x39, 0x0C, 0x85, -1, -1, -1, -1, 0x74, 0x14, 0x46, 0x66, 0x83, 0xFE, -1, 0x72, 0xED)
	patternOld = newPattern(0x39, 0x14, 0xB5, -1, -1, -1, -1, 0x74, 0x09, 0x41, 0x66, 0x83, 0xF9, -1, 0x72, 0xED)
)

// anchor is the result of locating and decoding one of the two group-
// table fingerprints.
type anchor struct {
	groupCount  uint8
	groupArray  uint32 // VA
	layout      variant
}

// findAnchor scans data first for the newer fingerprint, then the
// older one, per spec.md §4.3.1 ("Scan for the newer pattern first").
func findAnchor(data []byte) (anchor, error) {
	if newPat, err := scanner.New(patternNew); err == nil {
		if i, err := scanner.Scan(data, newPat); err == nil {
			return decodeAnchor(data, i, variantNew)
		}
	}
	if oldPat, err := scanner.New(patternOld); err == nil {
		if i, err := scanner.Scan(data, oldPat); err == nil {
			return decodeAnchor(data, i, variantOld)
		}
	}
	return anchor{}, ErrAnchorNotFound
}

func decodeAnchor(data []byte, matchOffset int, layout variant) (anchor, error) {
	if matchOffset+17 > len(data) {
		return anchor{}, ErrAnchorNotFound
	}
	groupArray := uint32(data[matchOffset+3]) |
		uint32(data[matchOffset+4])<<8 |
		uint32(data[matchOffset+5])<<16 |
		uint32(data[matchOffset+6])<<24
	groupCount := data[matchOffset+13]
	return anchor{
		groupCount: groupCount,
		groupArray: groupArray,
		layout:     layout,
	}, nil
}
