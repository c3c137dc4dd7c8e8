// Package walker implements the recursive group/block/field walker of
// spec.md §4.3 — the heart of the recovery pipeline. It locates the
// group table via the scanner, then materializes every group's schema
// tree into the ir package's types. Grounded throughout on
// original_source/src/def_dumper/mod.rs's walk_block and the two
// sig! anchor patterns it scans for.
package walker

import (
	"errors"
	"fmt"

	"github.com/haloschema/guerilla-tagdef/ir"
	"github.com/haloschema/guerilla-tagdef/peview"
)

// ErrUnknownFourCC is wrapped into every "a FourCC was referenced but
// never declared as a group" failure: a supergroup lookup, or a tag
// reference's expected_fourcc/list_va lookup, per spec.md §4.3.2/§4.3.4.
var ErrUnknownFourCC = errors.New("unknown fourcc")

// ErrRecursionTooDeep is wrapped when nested Block walking exceeds
// maxRecursionDepth, per spec.md §4.3.5's anti-loop guard.
var ErrRecursionTooDeep = errors.New("block nesting too deep")

// Walk locates the group table anchor inside data, then recursively
// materializes every group's schema tree, per spec.md §4.3.
func Walk(view *peview.PEView, data []byte) (*ir.Document, error) {
	a, err := findAnchor(data)
	if err != nil {
		return nil, err
	}

	raws, err := readGroupTable(view, a)
	if err != nil {
		return nil, err
	}

	if err := checkUniqueNames(raws); err != nil {
		return nil, err
	}

	groups, err := resolveGroups(view, raws, a.layout)
	if err != nil {
		return nil, err
	}

	return &ir.Document{
		ExeDate:     view.CreationDate,
		ExeChecksum: view.Checksum,
		Groups:      groups,
	}, nil
}

// checkUniqueNames enforces spec.md §3.2's "every group name is
// unique within the document" invariant before block walking begins.
func checkUniqueNames(raws []groupRaw) error {
	seen := make(map[string]struct{}, len(raws))
	for _, r := range raws {
		if _, ok := seen[r.name]; ok {
			return fmt.Errorf("duplicate group name %q", r.name)
		}
		seen[r.name] = struct{}{}
	}
	return nil
}
