package dump

import (
	"encoding/json"
	"testing"

	"github.com/haloschema/guerilla-tagdef/ir"
)

func strPtr(s string) *string { return &s }

func TestMarshalEmptyGroup(t *testing.T) {
	name := "sound"
	doc := &ir.Document{
		ExeDate:     0,
		ExeChecksum: 0xCAFEBABE,
		Groups: map[string]ir.Group{
			"sound": {
				Name:   "sound",
				FourCC: 1936942369,
				RootBlock: ir.Block{
					Name:    &name,
					Maximum: 0,
					Length:  0,
				},
			},
		},
	}

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	if decoded["exe_date"] != "1970-01-01T00:00:00" {
		t.Errorf("exe_date = %v, want 1970-01-01T00:00:00", decoded["exe_date"])
	}
	if decoded["exe_checksum"].(float64) != float64(0xCAFEBABE) {
		t.Errorf("exe_checksum = %v, want %d", decoded["exe_checksum"], uint32(0xCAFEBABE))
	}

	groups := decoded["groups"].(map[string]interface{})
	group := groups["sound"].(map[string]interface{})
	if group["fourcc"].(float64) != 1936942369 {
		t.Errorf("fourcc = %v, want 1936942369", group["fourcc"])
	}
	if _, hasSupergroup := group["supergroup"]; hasSupergroup {
		t.Error("supergroup key present, want absent")
	}

	block := group["block"].(map[string]interface{})
	if block["name"] != "sound" {
		t.Errorf("block.name = %v, want sound", block["name"])
	}
	fields := block["fields"].([]interface{})
	if len(fields) != 0 {
		t.Errorf("len(fields) = %d, want 0", len(fields))
	}
}

func TestMarshalGroupsAreSortedAscending(t *testing.T) {
	doc := &ir.Document{
		Groups: map[string]ir.Group{
			"zebra":   {Name: "zebra", RootBlock: ir.Block{}},
			"alpha":   {Name: "alpha", RootBlock: ir.Block{}},
			"mustard": {Name: "mustard", RootBlock: ir.Block{}},
		},
	}

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	idxAlpha := indexOf(t, string(out), `"alpha"`)
	idxMustard := indexOf(t, string(out), `"mustard"`)
	idxZebra := indexOf(t, string(out), `"zebra"`)

	if !(idxAlpha < idxMustard && idxMustard < idxZebra) {
		t.Errorf("groups not in ascending order: alpha=%d mustard=%d zebra=%d", idxAlpha, idxMustard, idxZebra)
	}
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	t.Fatalf("%q not found in output", needle)
	return -1
}

func TestMarshalEnumOptionHidden(t *testing.T) {
	doc := &ir.Document{
		Groups: map[string]ir.Group{
			"g": {
				Name: "g",
				RootBlock: ir.Block{
					Fields: []ir.Field{
						{
							Name: &ir.FieldName{Name: "mode"},
							Kind: ir.FieldKind{
								Kind: ir.KindEnum,
								Options: []ir.FieldName{
									{Name: "on"},
									{Name: "off", Hidden: true},
								},
							},
						},
					},
				},
			},
		},
	}

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded struct {
		Groups map[string]struct {
			Block struct {
				Fields []struct {
					Type    string `json:"type"`
					Options []struct {
						Name   string `json:"name"`
						Hidden bool   `json:"hidden"`
					} `json:"options"`
				} `json:"fields"`
			} `json:"block"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	fields := decoded.Groups["g"].Block.Fields
	if len(fields) != 1 || fields[0].Type != "enum" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	options := fields[0].Options
	if len(options) != 2 {
		t.Fatalf("len(options) = %d, want 2", len(options))
	}
	if options[0].Hidden {
		t.Error("options[0] (on) hidden, want visible")
	}
	if !options[1].Hidden {
		t.Error("options[1] (off) not hidden, want hidden")
	}
}

func TestMarshalRangeAlwaysEmitsBounds(t *testing.T) {
	doc := &ir.Document{
		Groups: map[string]ir.Group{
			"g": {
				Name: "g",
				RootBlock: ir.Block{
					Fields: []ir.Field{
						{Kind: ir.FieldKind{Kind: ir.KindRange, TypeTag: "float_clamped"}},
					},
				},
			},
		},
	}

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var decoded struct {
		Groups map[string]struct {
			Block struct {
				Fields []map[string]interface{} `json:"fields"`
			} `json:"block"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	field := decoded.Groups["g"].Block.Fields[0]
	if field["type"] != "float_clamped" {
		t.Errorf(`type = %v, want "float_clamped"`, field["type"])
	}
	if field["bounds"] != true {
		t.Errorf("bounds = %v, want true", field["bounds"])
	}
}

func TestMarshalSectionUsesTextKey(t *testing.T) {
	doc := &ir.Document{
		Groups: map[string]ir.Group{
			"g": {
				Name: "g",
				RootBlock: ir.Block{
					Fields: []ir.Field{
						{Kind: ir.FieldKind{Kind: ir.KindSection, Text: "weapon settings"}},
					},
				},
			},
		},
	}

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if !containsString(string(out), `"text": "weapon settings"`) {
		t.Errorf("output missing text key:\n%s", out)
	}
}

func containsString(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
