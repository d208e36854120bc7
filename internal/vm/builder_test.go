package vm

import "encoding/binary"

// imageBuilder assembles a packed executable image byte-for-byte, the way a
// test fixture in this package builds one by hand rather than through a
// compiler — spec.md explicitly leaves "write a general assembler" as a
// non-goal, so this stays a narrow, test-only helper.
type imageBuilder struct {
	cfg                Config
	mainVariablesCount uint8
	functions          []FunctionDescriptor
	constants          []int32
	code               []byte
}

func newImageBuilder(cfg Config) *imageBuilder {
	return &imageBuilder{cfg: cfg}
}

func (b *imageBuilder) withMainVariables(n uint8) *imageBuilder {
	b.mainVariablesCount = n
	return b
}

// function registers a descriptor and returns its index, for use as a CAL
// parameter.
func (b *imageBuilder) function(fd FunctionDescriptor) int32 {
	b.functions = append(b.functions, fd)
	return int32(len(b.functions) - 1)
}

// constant registers a pool entry and returns its index, for use as an LDC
// operand.
func (b *imageBuilder) constant(v int32) int32 {
	b.constants = append(b.constants, v)
	return int32(len(b.constants) - 1)
}

func (b *imageBuilder) emit(bytes ...byte) *imageBuilder {
	b.code = append(b.code, bytes...)
	return b
}

func (b *imageBuilder) build() []byte {
	cellBytes := b.cfg.cellBytes()

	var tables []byte
	for _, fd := range b.functions {
		var rec [functionRecordLen]byte
		binary.LittleEndian.PutUint16(rec[0:2], fd.Address)
		rec[2] = fd.ArgumentsCount
		rec[3] = fd.VariablesCount
		packed := fd.ReturnsCount & 0x3F
		if fd.IsVariadic {
			packed |= 0x40
		}
		if fd.IsBuiltIn {
			packed |= 0x80
		}
		rec[4] = packed
		tables = append(tables, rec[:]...)
	}
	for _, c := range b.constants {
		cell := make([]byte, cellBytes)
		uv := uint32(c)
		for i := 0; i < cellBytes; i++ {
			cell[i] = byte(uv >> (8 * i))
		}
		tables = append(tables, cell...)
	}
	tables = append(tables, b.code...)

	out := make([]byte, 3, 3+3+len(tables))
	out[0] = b.cfg.VMVersion
	binary.LittleEndian.PutUint16(out[1:3], uint16(3+len(tables)))
	out = append(out, byte(len(b.functions)), byte(len(b.constants)), b.mainVariablesCount)
	out = append(out, tables...)
	return out
}

// Opcode byte encoders, one per spec.md §4.1/§4.4 shape. Kept alongside the
// builder so a scenario reads as a sequence of mnemonics rather than raw hex.

func opPSH(literal byte) byte { return literal & 0x7F }
func opPSC(low5 byte) byte    { return 0x80 | (low5 & 0x1F) }

func opArith(sel byte) byte  { return 0xA8 | (sel & 0x07) }
func opBranch(sel byte) byte { return 0xA0 | (sel & 0x07) }
func opUnary(sel byte) byte  { return 0xB8 | (sel & 0x03) }
func opPop(n byte) byte      { return 0xBC | (n & 0x03) }
func opSkip(sel byte) byte   { return 0xB0 | (sel & 0x03) }

func opSLP() byte { return 0xB4 }
func opRET() byte { return 0xB5 }
func opLDC() byte { return 0xB6 }
func opJMB() byte { return 0xB7 }

// opJMP/opCAL/opLDV/opSTV encode the direct (non-saturated) form; param must
// be in [0,14]. Use opSaturated to build the 0x0F sentinel form for larger
// parameters, preceded by a PSH/PSC that supplies the real value.
func opJMP(param byte) byte { return 0xC0 | (param & 0x0F) }
func opCAL(param byte) byte { return 0xD0 | (param & 0x0F) }
func opLDV(param byte) byte { return 0xE0 | (param & 0x0F) }
func opSTV(param byte) byte { return 0xF0 | (param & 0x0F) }

func opJMPSat() byte { return 0xC0 | 0x0F }
func opCALSat() byte { return 0xD0 | 0x0F }
func opLDVSat() byte { return 0xE0 | 0x0F }
func opSTVSat() byte { return 0xF0 | 0x0F }
