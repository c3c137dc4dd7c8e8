package scanner

import "testing"

func mustPattern(t *testing.T, bytes ...Byte) Pattern {
	t.Helper()
	p, err := New(bytes)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return p
}

func TestNewRejectsEmptyPattern(t *testing.T) {
	if _, err := New(nil); err != ErrEmptyPattern {
		t.Fatalf("New(nil) = %v, want %v", err, ErrEmptyPattern)
	}
}

func TestNewRejectsLeadingWildcard(t *testing.T) {
	if _, err := New([]Byte{Any(), Exact(1)}); err != ErrEmptyPattern {
		t.Fatalf("New(leading wildcard) = %v, want %v", err, ErrEmptyPattern)
	}
}

func TestNewRejectsTrailingWildcard(t *testing.T) {
	if _, err := New([]Byte{Exact(1), Any()}); err != ErrEmptyPattern {
		t.Fatalf("New(trailing wildcard) = %v, want %v", err, ErrEmptyPattern)
	}
}

func TestScanExactMatch(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	pat := mustPattern(t, Exact(0x03), Exact(0x04))

	i, err := Scan(data, pat)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if i != 2 {
		t.Errorf("Scan() = %d, want 2", i)
	}
}

func TestScanWithWildcard(t *testing.T) {
	data := []byte{0x39, 0x0C, 0x85, 0xAA, 0xBB, 0xCC, 0xDD, 0x74}
	pat := mustPattern(t, Exact(0x39), Exact(0x0C), Exact(0x85), Any(), Any(), Any(), Any(), Exact(0x74))

	i, err := Scan(data, pat)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if i != 0 {
		t.Errorf("Scan() = %d, want 0", i)
	}
}

func TestScanReturnsSmallestIndex(t *testing.T) {
	data := []byte{0xFF, 0x01, 0x02, 0xFF, 0x01, 0x02}
	pat := mustPattern(t, Exact(0x01), Exact(0x02))

	i, err := Scan(data, pat)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if i != 1 {
		t.Errorf("Scan() = %d, want 1", i)
	}
}

func TestScanNoMatch(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	pat := mustPattern(t, Exact(0xAA))

	if _, err := Scan(data, pat); err != ErrNoMatch {
		t.Fatalf("Scan() = %v, want %v", err, ErrNoMatch)
	}
}

func TestScanPatternLongerThanData(t *testing.T) {
	data := []byte{0x01}
	pat := mustPattern(t, Exact(0x01), Exact(0x02))

	if _, err := Scan(data, pat); err != ErrNoMatch {
		t.Fatalf("Scan() = %v, want %v", err, ErrNoMatch)
	}
}
