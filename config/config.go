// Package config loads a declarative YAML description of a slave's data
// model (its coil, discrete input and register banks) and builds a
// ready-to-serve mbslave.Instance from it, the way a deployment would
// configure a real device without recompiling. Grounded on
// simonvetter-modbus's functional-options configuration style, generalized
// here to a YAML source.
package config

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/brightgrid-io/mbslave"
)

// CoilSpec describes one statically configured coil or discrete input.
// Its backing storage is owned by the Map itself once built.
type CoilSpec struct {
	Address uint16 `yaml:"address"`
	Initial bool   `yaml:"initial"`
}

// RegSpec describes one statically configured register.
type RegSpec struct {
	Address   uint16  `yaml:"address"`
	Type      string  `yaml:"type"`       // u16, i16, u32, i32, u64, i64, f32, f64
	ByteOrder string  `yaml:"byte_order"` // "big" (default) or "little"
	WordOrder string  `yaml:"word_order"` // "high_first" (default) or "low_first"
	Initial   float64 `yaml:"initial"`
}

// Map is the top-level YAML document shape: a fixed set of descriptor
// banks plus the slave identification payload for function code 0x11.
type Map struct {
	SlaveID          string     `yaml:"slave_id"`
	Coils            []CoilSpec `yaml:"coils"`
	DiscreteInputs   []CoilSpec `yaml:"discrete_inputs"`
	HoldingRegisters []RegSpec  `yaml:"holding_registers"`
	InputRegisters   []RegSpec  `yaml:"input_registers"`
}

// Load parses a YAML descriptor map from r.
func Load(r io.Reader) (*Map, error) {
	var m Map
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &m, nil
}

func byteOrder(s string) mbslave.ByteOrder {
	if s == "little" {
		return mbslave.LittleEndian
	}
	return mbslave.BigEndian
}

func wordOrder(s string) mbslave.WordOrder {
	if s == "low_first" {
		return mbslave.LowWordFirst
	}
	return mbslave.HighWordFirst
}

// Build assembles an *mbslave.Instance from the parsed map. Register and
// coil backing storage is allocated here and owned by the returned
// instance's closures; config does not expose it since descriptor tables
// in mbslave are meant to wrap a host's own memory, not the loader's.
func (m *Map) Build() (*mbslave.Instance, error) {
	sortCoilSpecs(m.Coils)
	sortCoilSpecs(m.DiscreteInputs)
	sortRegSpecs(m.HoldingRegisters)
	sortRegSpecs(m.InputRegisters)

	coils := make([]mbslave.CoilDesc, len(m.Coils))
	for idx, s := range m.Coils {
		v := new(bool)
		*v = s.Initial
		coils[idx] = mbslave.NewCoil(s.Address,
			mbslave.WithCoilReadValue(v),
			mbslave.WithCoilWriteFunc(func(val bool) mbslave.Status {
				*v = val
				return mbslave.StatusOK
			}),
		)
	}

	discretes := make([]mbslave.CoilDesc, len(m.DiscreteInputs))
	for idx, s := range m.DiscreteInputs {
		v := new(bool)
		*v = s.Initial
		discretes[idx] = mbslave.NewCoil(s.Address, mbslave.WithCoilReadValue(v))
	}

	holding, err := m.buildRegs(m.HoldingRegisters, true)
	if err != nil {
		return nil, err
	}
	input, err := m.buildRegs(m.InputRegisters, false)
	if err != nil {
		return nil, err
	}

	return mbslave.NewInstance(
		mbslave.WithCoils(coils),
		mbslave.WithDiscreteInputs(discretes),
		mbslave.WithHoldingRegisters(holding),
		mbslave.WithInputRegisters(input),
		mbslave.WithSlaveID([]byte(m.SlaveID)),
	), nil
}

func (m *Map) buildRegs(specs []RegSpec, writable bool) ([]mbslave.RegDesc, error) {
	out := make([]mbslave.RegDesc, 0, len(specs))
	for _, s := range specs {
		bo, wo := byteOrder(s.ByteOrder), wordOrder(s.WordOrder)
		var opts []mbslave.RegOption
		if !writable {
			opts = append(opts, mbslave.WithRegWriteLock(func() bool { return true }))
		}

		switch s.Type {
		case "u16":
			v := new(uint16)
			*v = uint16(s.Initial)
			out = append(out, mbslave.RegU16Ptr(s.Address, v, opts...))
		case "i16":
			v := new(int16)
			*v = int16(s.Initial)
			out = append(out, mbslave.RegI16Ptr(s.Address, v, opts...))
		case "u32":
			v := new(uint32)
			*v = uint32(s.Initial)
			out = append(out, mbslave.RegU32Ptr(s.Address, v, bo, wo, opts...))
		case "i32":
			v := new(int32)
			*v = int32(s.Initial)
			out = append(out, mbslave.RegI32Ptr(s.Address, v, bo, wo, opts...))
		case "u64":
			v := new(uint64)
			*v = uint64(s.Initial)
			out = append(out, mbslave.RegU64Ptr(s.Address, v, bo, wo, opts...))
		case "i64":
			v := new(int64)
			*v = int64(s.Initial)
			out = append(out, mbslave.RegI64Ptr(s.Address, v, bo, wo, opts...))
		case "f32":
			v := new(float32)
			*v = float32(s.Initial)
			out = append(out, mbslave.RegF32Ptr(s.Address, v, bo, wo, opts...))
		case "f64":
			v := new(float64)
			*v = s.Initial
			out = append(out, mbslave.RegF64Ptr(s.Address, v, bo, wo, opts...))
		default:
			return nil, fmt.Errorf("config: unknown register type %q at address %d", s.Type, s.Address)
		}
	}
	return out, nil
}

func sortCoilSpecs(s []CoilSpec) {
	sort.Slice(s, func(i, j int) bool { return s[i].Address < s[j].Address })
}

func sortRegSpecs(s []RegSpec) {
	sort.Slice(s, func(i, j int) bool { return s[i].Address < s[j].Address })
}
