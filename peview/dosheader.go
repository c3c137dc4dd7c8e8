package peview

// elfanewOffset is the fixed file offset of the e_lfanew field in the
// DOS stub, per spec.md §4.1 step 1.
const elfanewOffset = 0x3C

var peSignature = [4]byte{'P', 'E', 0, 0}

// readPEHeaderOffset reads e_lfanew and validates the "PE\x00\x00"
// signature at that offset, matching original_source/src/def_dumper/win32.rs
// and saferwall-pe/dosheader.go's ParseDOSHeader bounds check on
// AddressOfNewEXEHeader.
func readPEHeaderOffset(c *cursor) (uint32, error) {
	lfanew, err := c.u32(elfanewOffset)
	if err != nil {
		return 0, ErrTinyFile
	}
	if lfanew < 4 || lfanew > c.len() {
		return 0, ErrInvalidElfanew
	}

	sig, err := c.bytes(lfanew, 4)
	if err != nil {
		return 0, ErrNotAPEFile
	}
	if sig[0] != peSignature[0] || sig[1] != peSignature[1] ||
		sig[2] != peSignature[2] || sig[3] != peSignature[3] {
		return 0, ErrNotAPEFile
	}
	return lfanew, nil
}
