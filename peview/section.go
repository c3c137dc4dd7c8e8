package peview

const sectionHeaderSize = 40

// SectionPtr describes one PE section's placement in both the virtual
// address space and the file image, per spec.md §3.1.
type SectionPtr struct {
	Name           string
	FileOffset     uint32
	Size           uint32
	VirtualAddress uint32
}

// contains reports whether v falls within [VirtualAddress, VirtualAddress+Size).
func (s SectionPtr) contains(v uint32) bool {
	return s.VirtualAddress <= v && v < s.VirtualAddress+s.Size
}

// translate converts a virtual address within this section to a file
// offset. Callers must check contains(v) first.
func (s SectionPtr) translate(v uint32) uint32 {
	return s.FileOffset + (v - s.VirtualAddress)
}

// parseSections reads the section table starting at tableOffset,
// which holds count entries of sectionHeaderSize bytes each. Each
// entry's address field is image_base + virtual_address, per spec.md
// §4.1 step 7 — matching original_source/src/def_dumper/win32.rs,
// which folds image_base into the stored address up front so every
// later lookup is against one absolute VA space.
func parseSections(c *cursor, tableOffset uint32, count uint16, imageBase uint32) ([]SectionPtr, error) {
	sections := make([]SectionPtr, 0, count)
	for i := uint16(0); i < count; i++ {
		entryOffset := tableOffset + uint32(i)*sectionHeaderSize

		name, err := c.fixedString(entryOffset, 8)
		if err != nil {
			return nil, err
		}
		virtualAddress, err := c.u32(entryOffset + 12)
		if err != nil {
			return nil, err
		}
		sizeOfRawData, err := c.u32(entryOffset + 16)
		if err != nil {
			return nil, err
		}
		pointerToRawData, err := c.u32(entryOffset + 20)
		if err != nil {
			return nil, err
		}

		sections = append(sections, SectionPtr{
			Name:           name,
			FileOffset:     pointerToRawData,
			Size:           sizeOfRawData,
			VirtualAddress: virtualAddress + imageBase,
		})
	}
	return sections, nil
}

// sectionTable holds the parsed sections and answers VA<->offset
// translation queries by linear scan, same as the teacher's helper.go
// getSectionByRva. The first section whose range contains v wins;
// overlapping sections are not detected.
type sectionTable struct {
	sections []SectionPtr
	byName   map[string]SectionPtr
}

func newSectionTable(sections []SectionPtr) *sectionTable {
	byName := make(map[string]SectionPtr, len(sections))
	for _, s := range sections {
		byName[s.Name] = s
	}
	return &sectionTable{sections: sections, byName: byName}
}

// offsetOf translates a virtual address to a file offset. It fails if
// no section's range contains v.
func (t *sectionTable) offsetOf(v uint32) (uint32, error) {
	for _, s := range t.sections {
		if s.contains(v) {
			return s.translate(v), nil
		}
	}
	return 0, ErrAddressNotMapped
}

func (t *sectionTable) byNameLookup(name string) (SectionPtr, bool) {
	s, ok := t.byName[name]
	return s, ok
}
