package deviceinfo

import "testing"

func TestLookupKnownPart(t *testing.T) {
	info := Lookup(0x3002AEFD)
	if !info.Known {
		t.Fatalf("Lookup(%#x) not known", 0x3002AEFD)
	}
	if info.BSDLEntity != "TT_JTAG_COUNTER" {
		t.Fatalf("BSDLEntity = %q, want TT_JTAG_COUNTER", info.BSDLEntity)
	}
	if info.BoundaryLength != 26 {
		t.Fatalf("BoundaryLength = %d, want 26", info.BoundaryLength)
	}
	if info.IDCode.Version != 3 {
		t.Fatalf("Version = %d, want 3", info.IDCode.Version)
	}

	// Other silicon revisions share the entry.
	if !Lookup(0x7002AEFD).Known {
		t.Fatalf("revision 7 not known")
	}
}

func TestLookupUnknownPart(t *testing.T) {
	info := Lookup(0x00999041)
	if info.Known {
		t.Fatalf("Lookup(%#x) known", 0x00999041)
	}
	if info.Name != "Unknown device" {
		t.Fatalf("Name = %q, want %q", info.Name, "Unknown device")
	}
	if info.Manufacturer.Abbreviation != "STM" {
		t.Fatalf("Manufacturer = %q, want STM", info.Manufacturer.Abbreviation)
	}
}
