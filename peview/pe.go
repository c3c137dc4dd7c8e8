// Package peview implements the minimal PE32/COFF parser this repo
// needs: just enough to build a virtual-address-to-file-offset map,
// read the executable's timestamp and checksum, and make a best
// effort at extracting the FileVersion string from the .rsrc
// directory. It performs no I/O of its own; see spec.md §4.1.
package peview

// PEView is the result of parsing a PE32 i386 executable's headers
// and section table, per spec.md §3.1.
type PEView struct {
	CreationDate uint32
	Checksum     uint32
	Version      string
	HasVersion   bool

	imageBase uint32
	sections  *sectionTable
	data      []byte
	cur       *cursor
}

// Parse decodes the COFF and optional headers and the section table
// of data, then makes a best-effort attempt at extracting the file
// version string from .rsrc. Failures before the section table is
// built are fatal (spec.md §7.1); a failed version extraction is not
// (spec.md §7.2) and simply leaves Version unset.
func Parse(data []byte) (*PEView, error) {
	c := newCursor(data)

	peHeaderOffset, err := readPEHeaderOffset(c)
	if err != nil {
		return nil, err
	}

	coffOffset := peHeaderOffset + 4
	coff, err := parseCOFFHeader(c, coffOffset)
	if err != nil {
		return nil, err
	}

	optOffset := coffOffset + 20
	opt, err := parseOptionalHeader(c, optOffset)
	if err != nil {
		return nil, err
	}

	sectionTableOffset := optOffset + uint32(coff.OptHeaderSize)
	sections, err := parseSections(c, sectionTableOffset, coff.SectionCount, opt.ImageBase)
	if err != nil {
		return nil, err
	}

	view := &PEView{
		CreationDate: coff.TimeDateStamp,
		Checksum:     opt.Checksum,
		imageBase:    opt.ImageBase,
		sections:     newSectionTable(sections),
		data:         data,
		cur:          c,
	}

	if version, ok := view.tryExtractVersion(c); ok {
		view.Version = version
		view.HasVersion = true
	}

	return view, nil
}

// tryExtractVersion performs the best-effort .rsrc walk of spec.md
// §4.1 steps 8-9. Any failure — missing .rsrc, missing RT_VERSION
// entry, malformed VS_VERSIONINFO tree — is swallowed here; the
// caller only sees whether it succeeded.
func (v *PEView) tryExtractVersion(c *cursor) (string, bool) {
	rsrc, ok := v.sections.byNameLookup(".rsrc")
	if !ok {
		return "", false
	}

	loc, err := findVersionResource(c, rsrc.FileOffset)
	if err != nil {
		return "", false
	}

	blobOffset, err := v.translateRVA(loc.rva)
	if err != nil {
		return "", false
	}

	version, err := extractFileVersion(c, blobOffset)
	if err != nil {
		return "", false
	}
	return version, true
}

// TranslateVA converts an absolute virtual address (as embedded in
// the guerilla binary's own data structures — real pointers, not
// RVAs, since the image is not relocated) to a file offset. This is
// the primitive the scanner+walker pipeline uses for every pointer
// chase, per spec.md §3.1's address translation invariant.
func (v *PEView) TranslateVA(va uint32) (uint32, error) {
	return v.sections.offsetOf(va)
}

// translateRVA converts a PE-relative virtual address (as used inside
// the .rsrc resource directory) to a file offset, by reintroducing
// the image base that TranslateVA's section table already carries.
func (v *PEView) translateRVA(rva uint32) (uint32, error) {
	return v.sections.offsetOf(rva + v.imageBase)
}

// Data returns the raw input buffer this view was parsed from.
func (v *PEView) Data() []byte {
	return v.data
}

// ReadUint32 reads a little-endian u32 at offset, bounds-checked.
func (v *PEView) ReadUint32(offset uint32) (uint32, error) {
	return v.cur.u32(offset)
}

// ReadUint8 reads a byte at offset, bounds-checked.
func (v *PEView) ReadUint8(offset uint32) (uint8, error) {
	return v.cur.u8(offset)
}

// ReadCString reads a NUL-terminated ASCII string at offset,
// bounds-checked.
func (v *PEView) ReadCString(offset uint32) (string, error) {
	return v.cur.cString(offset)
}

// ReadStringAtVA translates va and reads the C-string located there,
// per spec.md §4.3.4's "Name decoding" rule.
func (v *PEView) ReadStringAtVA(va uint32) (string, error) {
	offset, err := v.TranslateVA(va)
	if err != nil {
		return "", err
	}
	return v.ReadCString(offset)
}

// ReadUint32AtVA translates va and reads the u32 located there.
func (v *PEView) ReadUint32AtVA(va uint32) (uint32, error) {
	offset, err := v.TranslateVA(va)
	if err != nil {
		return 0, err
	}
	return v.ReadUint32(offset)
}
