package walker

import "github.com/haloschema/guerilla-tagdef/peview"

// Fuzz exercises the PE parser, scanner, and walker together on
// arbitrary bytes, per the go-fuzz convention the teacher repo's own
// (now superseded) fuzz.go followed. Any malformed or truncated input
// must return cleanly rather than panic.
func Fuzz(data []byte) int {
	view, err := peview.Parse(data)
	if err != nil {
		return 0
	}
	if _, err := Walk(view, data); err != nil {
		return 0
	}
	return 1
}
