package peview

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// VS_VERSIONINFO structural constants, grounded on
// saferwall-pe/version.go (VsVersionInfoString, StringFileInfoString,
// the fixed-size header fields all being 3 uint16s = 6 bytes).
const (
	vsVersionInfoKey  = "VS_VERSION_INFO"
	stringFileInfoKey = "StringFileInfo"
	fileVersionKey    = "FileVersion"

	versionNodeHeaderSize = 6 // wLength, wValueLength, wType
	maxKeyBytes           = 128
)

// alignDword rounds offset up to the next 4-byte boundary measured
// from base, matching saferwall-pe/version.go's alignDword calls
// (every offset inside a VS_VERSIONINFO tree is aligned relative to
// the start of the overall resource blob, not to file offset zero).
func alignDword(offset, base uint32) uint32 {
	rel := offset - base
	rel = (rel + 3) &^ 3
	return base + rel
}

// decodeUTF16String decodes a NUL-terminated UTF-16LE byte slice,
// matching saferwall-pe/helper.go's DecodeUTF16String.
func decodeUTF16String(b []byte) (string, error) {
	n := utf16TerminatorIndex(b)
	if n < 0 {
		n = len(b) - len(b)%2
	}
	if n <= 0 {
		return "", nil
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := decoder.Bytes(b[:n])
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// utf16TerminatorIndex returns the byte offset of the first NUL code
// unit in b, checking only even offsets so that the zero high byte of
// an ASCII character is not mistaken for the terminator; -1 if none.
func utf16TerminatorIndex(b []byte) int {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return i
		}
	}
	return -1
}

// readVersionKey reads the NUL-terminated UTF-16LE key string at
// offset and returns the decoded key plus the number of bytes
// consumed, including the terminating NUL pair.
func readVersionKey(c *cursor, offset uint32) (string, uint32, error) {
	raw, err := c.bytes(offset, maxKeyBytes)
	if err != nil {
		// Fall back to whatever is left in the buffer.
		raw, err = c.bytes(offset, c.len()-offset)
		if err != nil {
			return "", 0, err
		}
	}
	n := utf16TerminatorIndex(raw)
	if n < 0 {
		return "", 0, errNotAResourceDirectory
	}
	key, err := decodeUTF16String(raw[:n+2])
	if err != nil {
		return "", 0, err
	}
	return key, uint32(n) + 2, nil
}

// versionNode is one node of the VS_VERSIONINFO tree (§4.1 step 9).
type versionNode struct {
	length         uint16
	valueLength    uint16
	nodeType       uint16
	key            string
	valueOffset    uint32
	childrenOffset uint32
}

func readVersionNode(c *cursor, offset, base uint32) (versionNode, error) {
	length, err := c.u16(offset)
	if err != nil {
		return versionNode{}, err
	}
	valueLength, err := c.u16(offset + 2)
	if err != nil {
		return versionNode{}, err
	}
	nodeType, err := c.u16(offset + 4)
	if err != nil {
		return versionNode{}, err
	}
	key, keyBytes, err := readVersionKey(c, offset+versionNodeHeaderSize)
	if err != nil {
		return versionNode{}, err
	}

	afterKey := offset + versionNodeHeaderSize + keyBytes
	valueOffset := alignDword(afterKey, base)

	var valueSizeBytes uint32
	if nodeType == 1 {
		valueSizeBytes = uint32(valueLength) * 2 // text: wValueLength counts UTF-16 code units
	} else {
		valueSizeBytes = uint32(valueLength)
	}
	childrenOffset := alignDword(valueOffset+valueSizeBytes, base)

	return versionNode{
		length:         length,
		valueLength:    valueLength,
		nodeType:       nodeType,
		key:            key,
		valueOffset:    valueOffset,
		childrenOffset: childrenOffset,
	}, nil
}

func (n versionNode) end(nodeOffset uint32) uint32 {
	return nodeOffset + uint32(n.length)
}

// findChildByKey scans the children of a node (which occupy
// [node.childrenOffset, node.end(nodeOffset))) for one whose key
// equals want, returning its own offset and parsed node.
func findChildByKey(c *cursor, node versionNode, nodeOffset, base uint32, want string) (uint32, versionNode, bool, error) {
	childOffset := node.childrenOffset
	limit := node.end(nodeOffset)
	for childOffset < limit {
		child, err := readVersionNode(c, childOffset, base)
		if err != nil || child.length == 0 {
			return 0, versionNode{}, false, nil
		}
		if child.key == want {
			return childOffset, child, true, nil
		}
		childOffset = alignDword(childOffset+uint32(child.length), base)
	}
	return 0, versionNode{}, false, nil
}

// extractFileVersion walks the VS_VERSIONINFO tree rooted at
// blobOffset (the file offset the .rsrc data-entry RVA translates to)
// and returns the FileVersion string from the
// StringFileInfo/<langid+codepage>/FileVersion leaf, per spec.md §4.1
// step 9. Any structural mismatch is reported as an error; callers
// treat this as non-fatal degradation per spec.md §7.2.
func extractFileVersion(c *cursor, blobOffset uint32) (string, error) {
	root, err := readVersionNode(c, blobOffset, blobOffset)
	if err != nil {
		return "", err
	}
	if root.key != vsVersionInfoKey {
		return "", errNotAResourceDirectory
	}

	// VS_FIXEDFILEINFO (the Value payload) is skipped implicitly:
	// root.childrenOffset already accounts for its size.
	sfiOffset, sfi, ok, err := findChildByKey(c, root, blobOffset, blobOffset, stringFileInfoKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errNotAResourceDirectory
	}

	// The StringFileInfo's only child is one StringTable keyed by an
	// 8-hex-digit "langid+codepage" string (e.g. "040904b0"); take it
	// whichever language it is for, per spec.md step 9.
	tableOffset := sfi.childrenOffset
	if tableOffset >= sfi.end(sfiOffset) {
		return "", errNotAResourceDirectory
	}
	table, err := readVersionNode(c, tableOffset, blobOffset)
	if err != nil {
		return "", err
	}

	stringOffset := table.childrenOffset
	limit := table.end(tableOffset)
	for stringOffset < limit {
		entry, err := readVersionNode(c, stringOffset, blobOffset)
		if err != nil || entry.length == 0 {
			break
		}
		if entry.key == fileVersionKey {
			valueBytes := uint32(entry.valueLength) * 2
			raw, err := c.bytes(entry.valueOffset, valueBytes)
			if err != nil {
				return "", err
			}
			value, err := decodeUTF16String(raw)
			if err != nil {
				return "", err
			}
			return normalizeFileVersion(value), nil
		}
		stringOffset = alignDword(stringOffset+uint32(entry.length), blobOffset)
	}
	return "", errNotAResourceDirectory
}

// normalizeFileVersion strips spaces and turns commas into dots, per
// spec.md §4.1 step 9 — original_source/ does not perform this
// normalization at all.
func normalizeFileVersion(v string) string {
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, ",", ".")
	return v
}
