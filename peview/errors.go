package peview

import "errors"

// Fatal errors. A PEView that fails to parse for any of these reasons
// aborts the whole pipeline; see spec.md §7.
var (
	// ErrTinyFile is returned when the input is smaller than the
	// smallest header peview ever needs to read.
	ErrTinyFile = errors.New("not a PE file, smaller than tiny PE")

	// ErrNotAPEFile is returned when the bytes at the e_lfanew offset
	// are not the "PE\x00\x00" signature.
	ErrNotAPEFile = errors.New("not a PE file")

	// ErrInvalidElfanew is returned when e_lfanew points outside the
	// file or before the DOS header itself.
	ErrInvalidElfanew = errors.New("invalid e_lfanew value, probably not a PE file")

	// ErrUnsupportedMachine64 is returned when the COFF machine type
	// is x86-64 (0x8664).
	ErrUnsupportedMachine64 = errors.New("not a i386 exe... it's 64-bit x86")

	// ErrUnsupportedMachine is returned for any machine type other
	// than i386 or amd64.
	ErrUnsupportedMachine = errors.New("not a i386 exe, unknown machine type")

	// ErrPE32Plus is returned when the optional header magic is
	// IMAGE_NT_OPTIONAL_HDR64_MAGIC.
	ErrPE32Plus = errors.New("can't handle PE32+")

	// ErrUnknownOptionalHeaderMagic is returned for any optional
	// header magic other than PE32/PE32+.
	ErrUnknownOptionalHeaderMagic = errors.New("unknown PE32/PE32+ type")

	// ErrOutsideBoundary is returned whenever a read would cross the
	// end of the input buffer.
	ErrOutsideBoundary = errors.New("reading data outside boundary")

	// ErrAddressNotMapped is returned when a virtual address does not
	// fall inside any known section.
	ErrAddressNotMapped = errors.New("virtual address not mapped to any section")
)
