package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
slave_id: "test-device"
coils:
  - address: 1
    initial: true
  - address: 0
    initial: false
holding_registers:
  - address: 0
    type: u16
    initial: 100
  - address: 1
    type: u32
    byte_order: big
    word_order: high_first
    initial: 70000
input_registers:
  - address: 0
    type: i16
    initial: -5
`

func TestLoadParsesYAML(t *testing.T) {
	m, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.SlaveID != "test-device" {
		t.Errorf("expected slave id 'test-device', got %q", m.SlaveID)
	}
	if len(m.Coils) != 2 {
		t.Fatalf("expected 2 coils, got %d", len(m.Coils))
	}
	if len(m.HoldingRegisters) != 2 {
		t.Fatalf("expected 2 holding registers, got %d", len(m.HoldingRegisters))
	}
}

func TestBuildSortsDescriptorsAscending(t *testing.T) {
	m, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst, err := m.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// coils were configured address 1 then 0; after sort+build, address 0
	// must be readable as false and address 1 as true.
	res := inst.HandleRequest([]byte{0x01, 0x00, 0x00, 0x00, 0x02})
	want := []byte{0x01, 0x01, 0x02} // bit0=0 (addr0=false), bit1=1 (addr1=true) -> 0b10 = 0x02
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestBuildAppliesInitialValues(t *testing.T) {
	m, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, err := m.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := inst.HandleRequest([]byte{0x03, 0x00, 0x00, 0x00, 0x01})
	want := []byte{0x03, 0x02, 0x00, 0x64} // 100
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestBuildInputRegisterReadsConfiguredInitialValue(t *testing.T) {
	m, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, err := m.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := inst.HandleRequest([]byte{0x04, 0x00, 0x00, 0x00, 0x01})
	want := []byte{0x04, 0x02, 0xFF, 0xFB} // int16(-5) big-endian
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestBuildRejectsUnknownRegisterType(t *testing.T) {
	m, err := Load(strings.NewReader(`
holding_registers:
  - address: 0
    type: bogus
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Build(); err == nil {
		t.Errorf("expected an error for an unknown register type")
	}
}
