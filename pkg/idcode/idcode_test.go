package idcode

import "testing"

func TestParseIDCode(t *testing.T) {
	id := ParseIDCode(0x3002AEFD)
	if id.Version != 3 || id.PartNumber != 0x002A || id.ManufacturerCode != 0x77E || !id.HasIDCode {
		t.Fatalf("ParseIDCode = %+v", id)
	}
	if id.Bank() != 15 || id.Identity() != 0x7E {
		t.Fatalf("bank %d identity %#x", id.Bank(), id.Identity())
	}
	if err := id.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	for _, raw := range []uint32{0x00000000, 0x3002AEFC, 0xFFFFFFFF, 0x000000FF} {
		if err := ParseIDCode(raw).Validate(); err == nil {
			t.Fatalf("Validate(%#08x) = nil", raw)
		}
	}
}

func TestLookupManufacturer(t *testing.T) {
	m, ok := LookupManufacturer(0x020)
	if !ok || m.Abbreviation != "STM" {
		t.Fatalf("LookupManufacturer(0x020) = %+v, %v", m, ok)
	}
	m, ok = LookupManufacturer(0x77E)
	if ok || m.Name != "Unlisted (bank 15, id 0x7e)" {
		t.Fatalf("LookupManufacturer(0x77E) = %+v, %v", m, ok)
	}
}

func TestLookupArmDebugPort(t *testing.T) {
	id := ParseIDCode(0x4BA00477)
	m, ok := LookupManufacturer(id.ManufacturerCode)
	if !ok || m.Abbreviation != "ARM" {
		t.Fatalf("manufacturer of %s = %+v", id, m)
	}
}
