// Package dump projects the ir package's recovered schema tree into
// the JSON shape spec.md §4.5 defines. Key order inside each object is
// part of the public interface (spec.md §6 "Binary compatibility"), so
// this package builds objects explicitly with an ordered-key helper
// rather than relying on encoding/json's struct-field ordering, which
// would force every possible kind-specific key into one struct and
// make zero-value omission ambiguous (a PrimitiveArray of count 0 must
// still emit "count":0).
//
// Grounded on original_source/src/def_dumper/block.rs's manual serde
// Serialize impl, which has the same per-kind key-set requirement.
package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haloschema/guerilla-tagdef/ir"
)

// orderedObject builds a JSON object with keys emitted in call order,
// rather than the alphabetical order encoding/json gives map values.
type orderedObject struct {
	buf bytes.Buffer
	n   int
}

func newOrderedObject() *orderedObject {
	return &orderedObject{}
}

func (o *orderedObject) set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	keyRaw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	if o.n > 0 {
		o.buf.WriteByte(',')
	}
	o.n++
	o.buf.Write(keyRaw)
	o.buf.WriteByte(':')
	o.buf.Write(raw)
	return nil
}

// MarshalJSON lets an *orderedObject nest inside other values passed
// to json.Marshal (groups map, fields slice, etc.) without losing its
// key order.
func (o *orderedObject) MarshalJSON() ([]byte, error) {
	return append(append([]byte("{"), o.buf.Bytes()...), '}'), nil
}

// Marshal renders doc as pretty-printed JSON per spec.md §4.5.
func Marshal(doc *ir.Document) ([]byte, error) {
	groups := make(map[string]*orderedObject, len(doc.Groups))
	for name, g := range doc.Groups {
		obj, err := groupObject(g)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", name, err)
		}
		groups[name] = obj
	}

	top := struct {
		ExeDate     string                    `json:"exe_date"`
		ExeChecksum uint32                    `json:"exe_checksum"`
		Groups      map[string]*orderedObject `json:"groups"`
	}{
		// encoding/json sorts map[string]* keys ascending, which is
		// exactly the ordering spec.md §4.5 requires for "groups".
		ExeDate:     time.Unix(int64(doc.ExeDate), 0).UTC().Format("2006-01-02T15:04:05"),
		ExeChecksum: doc.ExeChecksum,
		Groups:      groups,
	}

	raw, err := json.Marshal(top)
	if err != nil {
		return nil, err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return nil, err
	}
	return pretty.Bytes(), nil
}

func groupObject(g ir.Group) (*orderedObject, error) {
	o := newOrderedObject()
	if g.Supergroup != nil {
		if err := o.set("supergroup", *g.Supergroup); err != nil {
			return nil, err
		}
	}
	if err := o.set("fourcc", g.FourCC); err != nil {
		return nil, err
	}
	block, err := blockObject(g.RootBlock)
	if err != nil {
		return nil, err
	}
	if err := o.set("block", block); err != nil {
		return nil, err
	}
	return o, nil
}

func blockObject(b ir.Block) (*orderedObject, error) {
	o := newOrderedObject()
	if b.Name != nil {
		if err := o.set("name", *b.Name); err != nil {
			return nil, err
		}
	}
	if err := o.set("maximum", b.Maximum); err != nil {
		return nil, err
	}
	if err := o.set("length", b.Length); err != nil {
		return nil, err
	}

	fields := make([]*orderedObject, 0, len(b.Fields))
	for _, f := range b.Fields {
		fo, err := fieldObject(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fo)
	}
	if err := o.set("fields", fields); err != nil {
		return nil, err
	}
	return o, nil
}

func fieldObject(f ir.Field) (*orderedObject, error) {
	o := newOrderedObject()
	if f.Name != nil {
		if err := setNameKeys(o, *f.Name); err != nil {
			return nil, err
		}
	}
	if err := setKindKeys(o, f.Kind); err != nil {
		return nil, err
	}
	return o, nil
}

// setNameKeys emits the decoration keys in the order spec.md §4.5
// lists them: name, description, read_only, hidden, main, unit, color.
func setNameKeys(o *orderedObject, n ir.FieldName) error {
	if err := o.set("name", n.Name); err != nil {
		return err
	}
	if n.Description != nil {
		if err := o.set("description", *n.Description); err != nil {
			return err
		}
	}
	if n.ReadOnly {
		if err := o.set("read_only", true); err != nil {
			return err
		}
	}
	if n.Hidden {
		if err := o.set("hidden", true); err != nil {
			return err
		}
	}
	if n.Main {
		if err := o.set("main", true); err != nil {
			return err
		}
	}
	if n.Unit != nil {
		if err := o.set("unit", *n.Unit); err != nil {
			return err
		}
	}
	if n.Color != nil {
		if err := o.set("color", *n.Color); err != nil {
			return err
		}
	}
	return nil
}

func nameObjectsArray(names []ir.FieldName) ([]*orderedObject, error) {
	objs := make([]*orderedObject, 0, len(names))
	for _, n := range names {
		o := newOrderedObject()
		if err := setNameKeys(o, n); err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	return objs, nil
}

// setKindKeys emits the kind-dependent keys of spec.md §4.5's table,
// beyond the name keys setNameKeys already wrote.
func setKindKeys(o *orderedObject, k ir.FieldKind) error {
	switch k.Kind {
	case ir.KindPrimitive:
		return o.set("type", k.TypeTag)

	case ir.KindPrimitiveArray:
		if err := o.set("type", k.TypeTag); err != nil {
			return err
		}
		return o.set("count", k.Count)

	case ir.KindRange:
		if err := o.set("type", k.TypeTag); err != nil {
			return err
		}
		return o.set("bounds", true)

	case ir.KindEnum:
		if err := o.set("type", "enum"); err != nil {
			return err
		}
		options, err := nameObjectsArray(k.Options)
		if err != nil {
			return err
		}
		return o.set("options", options)

	case ir.KindFlags:
		if err := o.set("type", "bitfield"); err != nil {
			return err
		}
		if err := o.set("size", k.SizeTag); err != nil {
			return err
		}
		flags, err := nameObjectsArray(k.Flags)
		if err != nil {
			return err
		}
		return o.set("fields", flags)

	case ir.KindPadding:
		if err := o.set("type", "padding"); err != nil {
			return err
		}
		if err := o.set("size", k.SizeTag); err != nil {
			return err
		}
		return o.set("count", k.PaddingCount)

	case ir.KindSection:
		if err := o.set("type", "section"); err != nil {
			return err
		}
		return o.set("text", k.Text)

	case ir.KindIndex:
		if err := o.set("type", "index"); err != nil {
			return err
		}
		// BlockRefB's "no-name" placeholder is kept on the IR value
		// but never surfaces here; spec.md §9 notes consumers ignore
		// it.
		return o.set("reference", k.BlockRefA)

	case ir.KindTagData:
		if err := o.set("type", "tag_data"); err != nil {
			return err
		}
		if err := o.set("data_type", k.DataTypeName); err != nil {
			return err
		}
		return o.set("max_length", k.MaxLength)

	case ir.KindReference:
		if err := o.set("type", "tag_reference"); err != nil {
			return err
		}
		allowed := k.AllowedGroupNames
		if allowed == nil {
			allowed = []string{}
		}
		return o.set("allowed_groups", allowed)

	case ir.KindBlock:
		if err := o.set("type", "block"); err != nil {
			return err
		}
		block, err := blockObject(*k.Block)
		if err != nil {
			return err
		}
		return o.set("block", block)

	case ir.KindUnknown:
		if err := o.set("type", "unknown"); err != nil {
			return err
		}
		return o.set("type_number", k.RawTypeNumber)

	default:
		return fmt.Errorf("unrecognized field kind %d", k.Kind)
	}
}
