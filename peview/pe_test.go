package peview

import (
	"encoding/binary"
	"errors"
	"testing"
)

// testSection describes one section to bake into a synthetic PE32
// image built by buildTestPE. No fixture executables ship in this
// repo, so tests construct minimal byte buffers directly.
type testSection struct {
	name   string
	rva    uint32
	size   uint32
	offset uint32
	data   []byte
}

type testPEOptions struct {
	machine       uint16
	imageBase     uint32
	checksum      uint32
	timestamp     uint32
	optHeaderSize uint16
	sections      []testSection
}

const (
	testPEOffset   = 0x80
	testCOFFOffset = testPEOffset + 4
	testOptOffset  = testCOFFOffset + 20
)

func buildTestPE(opts testPEOptions) []byte {
	if opts.optHeaderSize == 0 {
		opts.optHeaderSize = 96
	}
	if opts.machine == 0 {
		opts.machine = machineI386
	}

	sectionTableOffset := uint32(testOptOffset) + uint32(opts.optHeaderSize)

	size := sectionTableOffset + uint32(len(opts.sections))*sectionHeaderSize
	for _, s := range opts.sections {
		if end := s.offset + uint32(len(s.data)); end > size {
			size = end
		}
	}
	size += 16

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0x3C:], testPEOffset)
	copy(buf[testPEOffset:], peSignature[:])

	binary.LittleEndian.PutUint16(buf[testCOFFOffset:], opts.machine)
	binary.LittleEndian.PutUint16(buf[testCOFFOffset+2:], uint16(len(opts.sections)))
	binary.LittleEndian.PutUint32(buf[testCOFFOffset+4:], opts.timestamp)
	binary.LittleEndian.PutUint16(buf[testCOFFOffset+16:], opts.optHeaderSize)

	binary.LittleEndian.PutUint16(buf[testOptOffset:], optionalHeaderMagicPE32)
	binary.LittleEndian.PutUint32(buf[testOptOffset+28:], opts.imageBase)
	binary.LittleEndian.PutUint32(buf[testOptOffset+64:], opts.checksum)

	for i, s := range opts.sections {
		entryOffset := sectionTableOffset + uint32(i)*sectionHeaderSize
		copy(buf[entryOffset:entryOffset+8], []byte(s.name))
		size := s.size
		if size == 0 {
			size = uint32(len(s.data))
		}
		binary.LittleEndian.PutUint32(buf[entryOffset+12:], s.rva)
		binary.LittleEndian.PutUint32(buf[entryOffset+16:], size)
		binary.LittleEndian.PutUint32(buf[entryOffset+20:], s.offset)
		copy(buf[s.offset:], s.data)
	}

	return buf
}

func TestParseRejectsTinyInput(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("Parse(tiny) succeeded, want error")
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	buf := buildTestPE(testPEOptions{})
	copy(buf[testPEOffset:], []byte{'X', 'X', 0, 0})

	_, err := Parse(buf)
	if !errors.Is(err, ErrNotAPEFile) {
		t.Fatalf("Parse(bad signature) = %v, want %v", err, ErrNotAPEFile)
	}
}

func TestParseRejectsAMD64(t *testing.T) {
	buf := buildTestPE(testPEOptions{machine: machineAMD64})

	_, err := Parse(buf)
	if !errors.Is(err, ErrUnsupportedMachine64) {
		t.Fatalf("Parse(amd64) = %v, want %v", err, ErrUnsupportedMachine64)
	}
}

func TestParseRejectsUnknownMachine(t *testing.T) {
	buf := buildTestPE(testPEOptions{machine: 0x01c4})

	_, err := Parse(buf)
	if !errors.Is(err, ErrUnsupportedMachine) {
		t.Fatalf("Parse(unknown machine) = %v, want %v", err, ErrUnsupportedMachine)
	}
}

func TestParseCapturesMetadata(t *testing.T) {
	buf := buildTestPE(testPEOptions{
		imageBase: 0x00400000,
		checksum:  0xDEADBEEF,
		timestamp: 0x5F000000,
		sections: []testSection{
			{name: ".text", rva: 0x1000, offset: 0x400, data: []byte{0x90, 0x90}},
		},
	})

	view, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if view.Checksum != 0xDEADBEEF {
		t.Errorf("Checksum = 0x%X, want 0xDEADBEEF", view.Checksum)
	}
	if view.CreationDate != 0x5F000000 {
		t.Errorf("CreationDate = 0x%X, want 0x5F000000", view.CreationDate)
	}
}

func TestTranslateVA(t *testing.T) {
	buf := buildTestPE(testPEOptions{
		imageBase: 0x00400000,
		sections: []testSection{
			{name: ".text", rva: 0x1000, size: 0x100, offset: 0x400, data: []byte{0xAB, 0xCD}},
		},
	})

	view, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	tests := []struct {
		va      uint32
		offset  uint32
		wantErr bool
	}{
		{va: 0x00401000, offset: 0x400, wantErr: false},
		{va: 0x00401001, offset: 0x401, wantErr: false},
		{va: 0x00500000, wantErr: true},
	}

	for _, tt := range tests {
		got, err := view.TranslateVA(tt.va)
		if tt.wantErr {
			if err == nil {
				t.Errorf("TranslateVA(0x%X) succeeded, want error", tt.va)
			}
			continue
		}
		if err != nil {
			t.Errorf("TranslateVA(0x%X) failed: %v", tt.va, err)
			continue
		}
		if got != tt.offset {
			t.Errorf("TranslateVA(0x%X) = 0x%X, want 0x%X", tt.va, got, tt.offset)
		}
	}
}

func TestReadStringAtVA(t *testing.T) {
	buf := buildTestPE(testPEOptions{
		imageBase: 0x00400000,
		sections: []testSection{
			{name: ".rdata", rva: 0x2000, offset: 0x600, data: append([]byte("sound"), 0)},
		},
	})

	view, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	got, err := view.ReadStringAtVA(0x00402000)
	if err != nil {
		t.Fatalf("ReadStringAtVA() failed: %v", err)
	}
	if got != "sound" {
		t.Errorf("ReadStringAtVA() = %q, want %q", got, "sound")
	}
}

func TestParseWithoutVersionResourceLeavesVersionUnset(t *testing.T) {
	buf := buildTestPE(testPEOptions{})

	view, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if view.HasVersion {
		t.Errorf("HasVersion = true, want false (no .rsrc section present)")
	}
}
