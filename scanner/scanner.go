// Package scanner implements the binary pattern scanner over i386
// machine-code bytes described in spec.md §4.2, translated from
// original_source/src/def_dumper/signature_scan.rs's signature_scan
// function (the teacher repo, saferwall/pe, has no analogous
// byte-fingerprint scanner of its own — it never needs to locate code,
// only declared structures).
package scanner

import "errors"

// ErrEmptyPattern is returned by New when the pattern is empty or
// begins/ends with a wildcard byte, per spec.md §4.2's "Required
// behavior" — wildcards at the ends produce ambiguous anchoring.
var ErrEmptyPattern = errors.New("pattern must be non-empty and not start or end with a wildcard")

// ErrNoMatch is returned by Scan when the pattern is not found.
var ErrNoMatch = errors.New("pattern not found")

// Byte is one element of a Pattern: either a concrete byte to match,
// or a wildcard that matches anything.
type Byte struct {
	Value     byte
	Wildcard  bool
}

// Exact returns a concrete pattern byte.
func Exact(b byte) Byte { return Byte{Value: b} }

// Any returns a wildcard pattern byte.
func Any() Byte { return Byte{Wildcard: true} }

// Pattern is an ordered sequence of concrete-or-wildcard bytes to
// search for.
type Pattern []Byte

// New validates pattern and returns it, or ErrEmptyPattern if it is
// empty or starts/ends with a wildcard.
func New(pattern []Byte) (Pattern, error) {
	if len(pattern) == 0 || pattern[0].Wildcard || pattern[len(pattern)-1].Wildcard {
		return nil, ErrEmptyPattern
	}
	return Pattern(pattern), nil
}

// Scan returns the smallest index i in data such that pattern matches
// at i, per spec.md §4.2. A naive linear search is explicitly
// acceptable per spec — inputs are a few megabytes, scanned once per
// run.
func Scan(data []byte, pattern Pattern) (int, error) {
	if len(pattern) > len(data) {
		return 0, ErrNoMatch
	}

	last := len(data) - len(pattern)
scanLoop:
	for i := 0; i <= last; i++ {
		for j, pb := range pattern {
			if pb.Wildcard {
				continue
			}
			if data[i+j] != pb.Value {
				continue scanLoop
			}
		}
		return i, nil
	}
	return 0, ErrNoMatch
}
