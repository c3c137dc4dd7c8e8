package walker

import (
	"fmt"
	"sort"

	"github.com/haloschema/guerilla-tagdef/ir"
	"github.com/haloschema/guerilla-tagdef/peview"
)

// GroupDescriptor field offsets, identical across both layout variants,
// per spec.md §4.3.2.
const (
	groupDescNameOff       = 0x00
	groupDescFourCCOff     = 0x08
	groupDescSupergroupOff = 0x0C
	groupDescRootBlockOff  = 0x18

	sentinelFourCC = 0xFFFFFFFF
)

// groupRaw is one group table entry after the first pass, before
// supergroup resolution and block walking.
type groupRaw struct {
	name          string
	fourcc        uint32
	supergroupFCC uint32
	rootBlockVA   uint32
}

// readGroupTable reads the array of group_count VAs at a.groupArray
// and, for each, the GroupDescriptor fields needed for the first
// pass: name and FourCC, per spec.md §4.3.2.
func readGroupTable(view *peview.PEView, a anchor) ([]groupRaw, error) {
	tableOffset, err := view.TranslateVA(a.groupArray)
	if err != nil {
		return nil, fmt.Errorf("group table: %w", err)
	}

	raws := make([]groupRaw, 0, a.groupCount)
	for i := 0; i < int(a.groupCount); i++ {
		descVA, err := view.ReadUint32(tableOffset + uint32(i)*4)
		if err != nil {
			return nil, fmt.Errorf("group table entry %d: %w", i, err)
		}

		base, err := view.TranslateVA(descVA)
		if err != nil {
			return nil, fmt.Errorf("group descriptor %d: %w", i, err)
		}

		nameVA, err := view.ReadUint32(base + groupDescNameOff)
		if err != nil {
			return nil, err
		}
		name, err := view.ReadStringAtVA(nameVA)
		if err != nil {
			return nil, fmt.Errorf("group %d name: %w", i, err)
		}

		fourcc, err := view.ReadUint32(base + groupDescFourCCOff)
		if err != nil {
			return nil, err
		}
		supergroupFCC, err := view.ReadUint32(base + groupDescSupergroupOff)
		if err != nil {
			return nil, err
		}
		rootBlockVA, err := view.ReadUint32(base + groupDescRootBlockOff)
		if err != nil {
			return nil, err
		}

		raws = append(raws, groupRaw{
			name:          name,
			fourcc:        fourcc,
			supergroupFCC: supergroupFCC,
			rootBlockVA:   rootBlockVA,
		})
	}
	return raws, nil
}

// resolveGroups is the walker's second pass (spec.md §4.3.2): resolve
// each group's supergroup by FourCC lookup and walk each root block.
func resolveGroups(view *peview.PEView, raws []groupRaw, layout variant) (map[string]ir.Group, error) {
	byFourCC := make(map[uint32]string, len(raws))
	for _, r := range raws {
		byFourCC[r.fourcc] = r.name
	}

	groups := make(map[string]ir.Group, len(raws))
	for _, r := range raws {
		var supergroup *string
		if r.supergroupFCC != sentinelFourCC {
			name, ok := byFourCC[r.supergroupFCC]
			if !ok {
				return nil, fmt.Errorf("%s: %w 0x%08X", r.name, ErrUnknownFourCC, r.supergroupFCC)
			}
			supergroup = &name
		}

		w := &walkCtx{view: view, byFourCC: byFourCC, layout: layout}
		root, err := w.walkBlock(r.rootBlockVA, 0)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", r.name, err)
		}

		groups[r.name] = ir.Group{
			Name:       r.name,
			Supergroup: supergroup,
			FourCC:     r.fourcc,
			RootBlock:  root,
		}
	}
	return groups, nil
}

// sortedFourCCs returns byFourCC's keys in ascending order, used for
// the "expected_fourcc absent, list_va absent" tag-reference case
// (spec.md §4.3.4: "allowed-set is every group, in FourCC ascending
// order").
func sortedFourCCs(byFourCC map[uint32]string) []uint32 {
	fccs := make([]uint32, 0, len(byFourCC))
	for fcc := range byFourCC {
		fccs = append(fccs, fcc)
	}
	sort.Slice(fccs, func(i, j int) bool { return fccs[i] < fccs[j] })
	return fccs
}
