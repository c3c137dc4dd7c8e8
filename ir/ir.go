// Package ir defines the in-memory intermediate representation the
// walker builds and the serializer projects to JSON: groups, blocks,
// fields, and the FieldKind tagged union, per spec.md §3.2. It is
// modeled directly on original_source/src/def_dumper/block.rs's
// BlockFieldType enum — the real Rust sum type this component
// translates from, since Go has no native tagged union (spec.md §9
// "Sum-of-variants").
package ir

import "fmt"

// Kind identifies which variant of FieldKind a Field holds.
type Kind int

// The field kind variants, per spec.md §3.2.
const (
	KindPrimitive Kind = iota
	KindPrimitiveArray
	KindRange
	KindEnum
	KindFlags
	KindPadding
	KindSection
	KindIndex
	KindTagData
	KindReference
	KindBlock
	KindUnknown
)

// FieldKind is a tagged union over the possible shapes a field can
// take. Exactly one group of fields is meaningful, selected by Kind;
// all others are left at their zero value.
type FieldKind struct {
	Kind Kind

	// KindPrimitive, KindPrimitiveArray, KindRange
	TypeTag string
	Count   uint32 // KindPrimitiveArray only

	// KindEnum
	Options []FieldName

	// KindFlags
	SizeTag string
	Flags   []FieldName

	// KindPadding
	PaddingCount uint32

	// KindSection
	Text string

	// KindIndex
	BlockRefA string
	BlockRefB string

	// KindTagData
	DataTypeName string
	MaxLength    uint32

	// KindReference
	AllowedGroupNames []string

	// KindBlock (nested)
	Block *Block

	// KindUnknown
	RawTypeNumber uint32
	RawAlt        uint32
}

// String renders a short human-readable summary of a FieldKind, for
// the CLI's verbose text summary. It is not used anywhere in the JSON
// projection, which builds its own key set directly from the struct
// fields.
func (k FieldKind) String() string {
	switch k.Kind {
	case KindPrimitive:
		return k.TypeTag
	case KindPrimitiveArray:
		return fmt.Sprintf("%s[%d]", k.TypeTag, k.Count)
	case KindRange:
		return fmt.Sprintf("range<%s>", k.TypeTag)
	case KindEnum:
		return fmt.Sprintf("enum(%d options)", len(k.Options))
	case KindFlags:
		return fmt.Sprintf("bitfield<%s>(%d flags)", k.SizeTag, len(k.Flags))
	case KindPadding:
		return fmt.Sprintf("padding<%s>[%d]", k.SizeTag, k.PaddingCount)
	case KindSection:
		return fmt.Sprintf("section(%q)", k.Text)
	case KindIndex:
		return fmt.Sprintf("index -> %s", k.BlockRefA)
	case KindTagData:
		return fmt.Sprintf("tag_data<%s>(max %d)", k.DataTypeName, k.MaxLength)
	case KindReference:
		return fmt.Sprintf("tag_reference(%d allowed)", len(k.AllowedGroupNames))
	case KindBlock:
		if k.Block != nil {
			return fmt.Sprintf("block(%d fields)", len(k.Block.Fields))
		}
		return "block"
	case KindUnknown:
		return fmt.Sprintf("unknown(0x%04X, alt=0x%X)", k.RawTypeNumber, k.RawAlt)
	default:
		return "invalid"
	}
}

// Field is one entry in a Block's field list: an optional decorated
// name plus a kind, per spec.md §3.2.
type Field struct {
	Name *FieldName
	Kind FieldKind
}

// Block is a repeated record: maximum caps the element count, length
// is the byte stride of one element, per spec.md §3.2.
type Block struct {
	Name    *string
	Maximum uint32
	Length  uint32
	Fields  []Field
}

// Group is one tag-group schema: a name, an optional supergroup name,
// a FourCC, and a root block, per spec.md §3.2.
type Group struct {
	Name       string
	Supergroup *string
	FourCC     uint32
	RootBlock  Block
}

// Document is the complete recovered schema, keyed by group name.
type Document struct {
	ExeDate     uint32
	ExeChecksum uint32
	Groups      map[string]Group
}
