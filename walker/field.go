package walker

import (
	"fmt"

	"github.com/haloschema/guerilla-tagdef/ir"
)

// fieldSentinel ends a field list once type_number has been
// normalized to the new-variant numbering, per spec.md §4.3.4.
const fieldSentinel = 0x2D

// primitiveTypeTags covers the Primitive (including geometry/color)
// type numbers 0x00, 0x02-0x06 and 0x0B-0x1D, in the exact order
// spec.md §4.3.4 lists them.
var primitiveTypeTags = map[uint32]string{
	0x00: "string",
	0x02: "int8",
	0x03: "int16",
	0x04: "int32",
	0x05: "float_angle",
	0x06: "fourcc",
	0x0B: "point2d_int",
	0x0C: "rectangle",
	0x0D: "color_rgb_int",
	0x0E: "color_argb_int",
	0x0F: "float",
	0x10: "float_clamped",
	0x11: "point2d",
	0x12: "point3d",
	0x13: "vector2d",
	0x14: "vector3d",
	0x15: "quaternion",
	0x16: "euler2d",
	0x17: "euler3d",
	0x18: "plane2d",
	0x19: "plane3d",
	0x1A: "color_rgb",
	0x1B: "color_argb",
	0x1C: "color_hsv",
	0x1D: "color_ahsv",
}

var rangeTypeTags = map[uint32]string{
	0x1E: "int16",
	0x1F: "float_angle",
	0x20: "float",
	0x21: "float_clamped",
}

var flagsSizeTags = map[uint32]string{
	0x08: "int32",
	0x09: "int16",
	0x0A: "int8",
}

// walkFields reads the field-entry array at arrayVA until the
// sentinel, dispatching each entry per spec.md §4.3.4.
func (w *walkCtx) walkFields(arrayVA uint32, depth int) ([]ir.Field, error) {
	base, err := w.view.TranslateVA(arrayVA)
	if err != nil {
		return nil, fmt.Errorf("field array: %w", err)
	}

	lay := layoutFor(w.layout)
	stride := lay.fieldStride

	var fields []ir.Field
	for i := 0; ; i++ {
		entryOffset := base + uint32(i)*stride

		rawType, err := w.view.ReadUint32(entryOffset)
		if err != nil {
			return nil, fmt.Errorf("field %d type: %w", i, err)
		}
		typeNumber := rawType
		if w.layout == variantOld && typeNumber >= 1 {
			typeNumber++
		}
		if typeNumber == fieldSentinel {
			break
		}

		nameVA, err := w.view.ReadUint32(entryOffset + 4)
		if err != nil {
			return nil, fmt.Errorf("field %d name: %w", i, err)
		}
		alt, err := w.view.ReadUint32(entryOffset + 8)
		if err != nil {
			return nil, fmt.Errorf("field %d alt: %w", i, err)
		}

		var name *ir.FieldName
		if nameVA != 0 {
			s, err := w.view.ReadStringAtVA(nameVA)
			if err != nil {
				return nil, fmt.Errorf("field %d name string: %w", i, err)
			}
			decorated := ir.NewFieldName(s)
			name = &decorated
		}

		kind, err := w.dispatchField(typeNumber, alt, depth)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}

		fields = append(fields, ir.Field{Name: name, Kind: kind})
	}

	return fields, nil
}

// dispatchField maps one normalized type_number/alt pair to a
// FieldKind, per the dispatch table in spec.md §4.3.4.
func (w *walkCtx) dispatchField(typeNumber, alt uint32, depth int) (ir.FieldKind, error) {
	if tag, ok := primitiveTypeTags[typeNumber]; ok {
		return ir.FieldKind{Kind: ir.KindPrimitive, TypeTag: tag}, nil
	}
	if tag, ok := rangeTypeTags[typeNumber]; ok {
		return ir.FieldKind{Kind: ir.KindRange, TypeTag: tag}, nil
	}

	switch typeNumber {
	case 0x07:
		options, err := w.readNameTable(alt)
		if err != nil {
			return ir.FieldKind{}, err
		}
		return ir.FieldKind{Kind: ir.KindEnum, Options: options}, nil

	case 0x08, 0x09, 0x0A:
		flags, err := w.readNameTable(alt)
		if err != nil {
			return ir.FieldKind{}, err
		}
		return ir.FieldKind{Kind: ir.KindFlags, SizeTag: flagsSizeTags[typeNumber], Flags: flags}, nil

	case 0x22:
		groups, err := w.resolveTagReference(alt)
		if err != nil {
			return ir.FieldKind{}, err
		}
		return ir.FieldKind{Kind: ir.KindReference, AllowedGroupNames: groups}, nil

	case 0x23:
		block, err := w.walkBlock(alt, depth+1)
		if err != nil {
			return ir.FieldKind{}, err
		}
		return ir.FieldKind{Kind: ir.KindBlock, Block: &block}, nil

	case 0x24, 0x25:
		nameVA, err := w.view.ReadUint32AtVA(alt)
		if err != nil {
			return ir.FieldKind{}, err
		}
		refName, err := w.view.ReadStringAtVA(nameVA)
		if err != nil {
			return ir.FieldKind{}, fmt.Errorf("index reference name: %w", err)
		}
		// The second slot is preserved verbatim as the literal
		// placeholder text, per spec.md §9's "Open questions".
		return ir.FieldKind{Kind: ir.KindIndex, BlockRefA: refName, BlockRefB: "no-name"}, nil

	case 0x26:
		entryBase, err := w.view.TranslateVA(alt)
		if err != nil {
			return ir.FieldKind{}, err
		}
		nameVA, err := w.view.ReadUint32(entryBase)
		if err != nil {
			return ir.FieldKind{}, err
		}
		dataTypeName, err := w.view.ReadStringAtVA(nameVA)
		if err != nil {
			return ir.FieldKind{}, fmt.Errorf("tag data type name: %w", err)
		}
		maxLength, err := w.view.ReadUint32(entryBase + 8)
		if err != nil {
			return ir.FieldKind{}, err
		}
		return ir.FieldKind{Kind: ir.KindTagData, DataTypeName: dataTypeName, MaxLength: maxLength}, nil

	case 0x27:
		return ir.FieldKind{Kind: ir.KindPrimitiveArray, TypeTag: "int32", Count: alt}, nil

	case 0x28:
		// Always single-element regardless of alt, per spec.md §9.
		return ir.FieldKind{Kind: ir.KindPadding, SizeTag: "int32", PaddingCount: 1}, nil

	case 0x29, 0x2A:
		return ir.FieldKind{Kind: ir.KindPadding, SizeTag: "int8", PaddingCount: alt}, nil

	case 0x2B:
		text, err := w.view.ReadStringAtVA(alt)
		if err != nil {
			return ir.FieldKind{}, fmt.Errorf("section text: %w", err)
		}
		return ir.FieldKind{Kind: ir.KindSection, Text: text}, nil

	case 0x2C:
		// Always single-element regardless of alt, per spec.md §9.
		return ir.FieldKind{Kind: ir.KindPadding, SizeTag: "int16", PaddingCount: 1}, nil

	default:
		return ir.FieldKind{Kind: ir.KindUnknown, RawTypeNumber: typeNumber, RawAlt: alt}, nil
	}
}

// readNameTable reads the {count, options_va} header at alt and
// decodes the count string-VAs it points to, per spec.md §4.3.4's
// Enum/Flags alt interpretation.
func (w *walkCtx) readNameTable(alt uint32) ([]ir.FieldName, error) {
	base, err := w.view.TranslateVA(alt)
	if err != nil {
		return nil, fmt.Errorf("option table: %w", err)
	}
	count, err := w.view.ReadUint32(base)
	if err != nil {
		return nil, err
	}
	optionsVA, err := w.view.ReadUint32(base + 4)
	if err != nil {
		return nil, err
	}

	optionsBase, err := w.view.TranslateVA(optionsVA)
	if err != nil {
		return nil, fmt.Errorf("option array: %w", err)
	}

	// count is an attacker-controlled u32 read straight from the
	// binary; pre-sizing the slice from it would let a crafted header
	// near 0xFFFFFFFF panic in makeslice before the per-element
	// bounds-checked read below ever gets a chance to reject it.
	var names []ir.FieldName
	for i := uint32(0); i < count; i++ {
		strVA, err := w.view.ReadUint32(optionsBase + i*4)
		if err != nil {
			return nil, err
		}
		s, err := w.view.ReadStringAtVA(strVA)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		names = append(names, ir.NewFieldName(s))
	}
	return names, nil
}

// resolveTagReference implements spec.md §4.3.4's tag-reference
// resolution for type 0x22: alt is the VA of
// {_: u32, expected_fourcc: u32, list_va: u32}.
func (w *walkCtx) resolveTagReference(alt uint32) ([]string, error) {
	base, err := w.view.TranslateVA(alt)
	if err != nil {
		return nil, fmt.Errorf("tag reference: %w", err)
	}
	expectedFourCC, err := w.view.ReadUint32(base + 4)
	if err != nil {
		return nil, err
	}
	listVA, err := w.view.ReadUint32(base + 8)
	if err != nil {
		return nil, err
	}

	if expectedFourCC != sentinelFourCC {
		name, ok := w.byFourCC[expectedFourCC]
		if !ok {
			return nil, fmt.Errorf("tag reference: %w 0x%08X", ErrUnknownFourCC, expectedFourCC)
		}
		return []string{name}, nil
	}

	if listVA == 0 {
		fccs := sortedFourCCs(w.byFourCC)
		names := make([]string, 0, len(fccs))
		for _, fcc := range fccs {
			names = append(names, w.byFourCC[fcc])
		}
		return names, nil
	}

	listBase, err := w.view.TranslateVA(listVA)
	if err != nil {
		return nil, fmt.Errorf("tag reference list: %w", err)
	}

	var names []string
	for i := 0; ; i++ {
		fcc, err := w.view.ReadUint32(listBase + uint32(i)*4)
		if err != nil {
			return nil, err
		}
		if fcc == sentinelFourCC {
			break
		}
		name, ok := w.byFourCC[fcc]
		if !ok {
			return nil, fmt.Errorf("tag reference list: %w 0x%08X", ErrUnknownFourCC, fcc)
		}
		names = append(names, name)
	}
	return names, nil
}
