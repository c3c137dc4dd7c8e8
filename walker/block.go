package walker

import (
	"fmt"

	"github.com/haloschema/guerilla-tagdef/ir"
	"github.com/haloschema/guerilla-tagdef/peview"
)

// maxRecursionDepth bounds nested Block recursion, per spec.md
// §4.3.5's defensive anti-loop requirement.
const maxRecursionDepth = 32

const (
	blockStrideNew = 16
	blockStrideOld = 12
)

// walkCtx carries the state threaded through one group's block/field
// walk: the parsed view, the FourCC→name table used to resolve
// supergroups and tag references, and which historical BlockDescriptor
// layout is in play.
type walkCtx struct {
	view     *peview.PEView
	byFourCC map[uint32]string
	layout   variant
}

// blockLayout is the set of BlockDescriptor field offsets for one
// variant, per spec.md §4.3.3.
type blockLayout struct {
	hasName     bool
	nameOff     uint32
	maximumOff  uint32
	lengthOff   uint32
	fieldsOff   uint32
	fieldStride uint32
}

func layoutFor(v variant) blockLayout {
	if v == variantOld {
		return blockLayout{
			hasName:     false,
			maximumOff:  0x08,
			lengthOff:   0x0C,
			fieldsOff:   0x14,
			fieldStride: blockStrideOld,
		}
	}
	return blockLayout{
		hasName:     true,
		nameOff:     0x04,
		maximumOff:  0x0C,
		lengthOff:   0x14,
		fieldsOff:   0x1C,
		fieldStride: blockStrideNew,
	}
}

// walkBlock materializes the BlockDescriptor at blockVA: its optional
// name (new variant only), maximum, length, and field list.
func (w *walkCtx) walkBlock(blockVA uint32, depth int) (ir.Block, error) {
	if depth > maxRecursionDepth {
		return ir.Block{}, fmt.Errorf("%w: exceeds %d levels", ErrRecursionTooDeep, maxRecursionDepth)
	}

	base, err := w.view.TranslateVA(blockVA)
	if err != nil {
		return ir.Block{}, fmt.Errorf("block descriptor: %w", err)
	}

	lay := layoutFor(w.layout)

	// The new variant's name_va is read and translated unconditionally,
	// matching original_source/src/def_dumper/mod.rs's
	// recursively_parse_block: a 0 name_va is not treated as "nameless",
	// it fails translation and aborts the dump like any other bad VA.
	var name *string
	if lay.hasName {
		nameVA, err := w.view.ReadUint32(base + lay.nameOff)
		if err != nil {
			return ir.Block{}, err
		}
		s, err := w.view.ReadStringAtVA(nameVA)
		if err != nil {
			return ir.Block{}, fmt.Errorf("block name: %w", err)
		}
		name = &s
	}

	maximum, err := w.view.ReadUint32(base + lay.maximumOff)
	if err != nil {
		return ir.Block{}, err
	}
	length, err := w.view.ReadUint32(base + lay.lengthOff)
	if err != nil {
		return ir.Block{}, err
	}
	fieldArrayVA, err := w.view.ReadUint32(base + lay.fieldsOff)
	if err != nil {
		return ir.Block{}, err
	}

	fields, err := w.walkFields(fieldArrayVA, depth)
	if err != nil {
		return ir.Block{}, err
	}

	return ir.Block{
		Name:    name,
		Maximum: maximum,
		Length:  length,
		Fields:  fields,
	}, nil
}
