package peview

const (
	resourceTypeVersion  = 0x10 // RT_VERSION
	resourceIDVersion    = 0x1
	resourceLangEnglishUS = 0x409

	resourceDirectorySize      = 16 // sizeof(IMAGE_RESOURCE_DIRECTORY)
	resourceDirectoryEntrySize = 8  // sizeof(IMAGE_RESOURCE_DIRECTORY_ENTRY)
	resourceDataEntrySize      = 16 // sizeof(IMAGE_RESOURCE_DATA_ENTRY)
)

// versionResourceLocation is the (rva, size) of the VS_VERSIONINFO
// blob located inside the .rsrc directory, as found by descending the
// single path type=RT_VERSION -> id=1 -> lang=0x409 spec.md §4.1 step 8
// calls for. This is a narrowed, path-specific adaptation of
// saferwall-pe/resource.go's general doParseResourceDirectory —
// generic resource-directory traversal beyond this one path is out of
// scope per spec.md §1.
type versionResourceLocation struct {
	rva  uint32
	size uint32
}

// findVersionResource walks the three directory levels rooted at
// rsrcBaseOffset (the file offset of the .rsrc section's raw data) and
// returns the data entry for the English (US) VS_VERSIONINFO resource,
// if present. Any structural mismatch is reported through the error
// return; callers treat this as non-fatal per spec.md §7.2.
func findVersionResource(c *cursor, rsrcBaseOffset uint32) (versionResourceLocation, error) {
	typeEntry, err := findDirectoryEntry(c, rsrcBaseOffset, resourceTypeVersion)
	if err != nil {
		return versionResourceLocation{}, err
	}
	if !typeEntry.isDirectory {
		return versionResourceLocation{}, errNotAResourceDirectory
	}

	idEntry, err := findDirectoryEntry(c, rsrcBaseOffset+typeEntry.offset, resourceIDVersion)
	if err != nil {
		return versionResourceLocation{}, err
	}
	if !idEntry.isDirectory {
		return versionResourceLocation{}, errNotAResourceDirectory
	}

	langEntry, err := findDirectoryEntry(c, rsrcBaseOffset+idEntry.offset, resourceLangEnglishUS)
	if err != nil {
		return versionResourceLocation{}, err
	}
	if langEntry.isDirectory {
		return versionResourceLocation{}, errNotAResourceDirectory
	}

	dataEntryOffset := rsrcBaseOffset + langEntry.offset
	rva, err := c.u32(dataEntryOffset)
	if err != nil {
		return versionResourceLocation{}, err
	}
	size, err := c.u32(dataEntryOffset + 4)
	if err != nil {
		return versionResourceLocation{}, err
	}
	return versionResourceLocation{rva: rva, size: size}, nil
}

type directoryEntry struct {
	isDirectory bool
	offset      uint32 // relative to the start of the .rsrc section data
}

var errNotAResourceDirectory = errOutsideExpectedShape("resource directory entry did not match expected shape")

type shapeError string

func errOutsideExpectedShape(msg string) error { return shapeError(msg) }
func (e shapeError) Error() string             { return string(e) }

// findDirectoryEntry scans one IMAGE_RESOURCE_DIRECTORY at dirOffset
// (relative to the .rsrc section's raw data start) for an entry whose
// numeric ID equals id, per saferwall-pe/resource.go's
// doParseResourceDirectory named-vs-id entry split (this repo's one
// caller only ever looks up numeric IDs, never name strings).
func findDirectoryEntry(c *cursor, dirOffset uint32, id uint32) (directoryEntry, error) {
	namedCount, err := c.u16(dirOffset + 12)
	if err != nil {
		return directoryEntry{}, err
	}
	idCount, err := c.u16(dirOffset + 14)
	if err != nil {
		return directoryEntry{}, err
	}
	total := uint32(namedCount) + uint32(idCount)

	entriesStart := dirOffset + resourceDirectorySize
	for i := uint32(0); i < total; i++ {
		entryOffset := entriesStart + i*resourceDirectoryEntrySize

		name, err := c.u32(entryOffset)
		if err != nil {
			return directoryEntry{}, err
		}
		offsetToData, err := c.u32(entryOffset + 4)
		if err != nil {
			return directoryEntry{}, err
		}

		isNamed := name&0x80000000 != 0
		if isNamed {
			continue // this path only ever looks up numeric IDs
		}
		if name != id {
			continue
		}

		isDirectory := offsetToData&0x80000000 != 0
		return directoryEntry{
			isDirectory: isDirectory,
			offset:      offsetToData &^ 0x80000000,
		}, nil
	}
	return directoryEntry{}, errNotAResourceDirectory
}
