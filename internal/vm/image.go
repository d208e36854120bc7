package vm

import "encoding/binary"

// FunctionDescriptor is one packed entry of the image's functions table, per
// spec.md §3. Address holds either a code offset (user function) or a
// built-in index (IsBuiltIn), both taken from the same 16-bit field.
type FunctionDescriptor struct {
	Address        uint16
	ArgumentsCount uint8
	VariablesCount uint8
	ReturnsCount   uint8
	IsVariadic     bool
	IsBuiltIn      bool
}

// Image is the read-only accessor over a parsed executable. It never
// mutates its backing bytes and may be shared across concurrently running
// VM instances, per spec.md §5.
type Image struct {
	version            uint8
	functions          []FunctionDescriptor
	constants          []int32
	code               []byte
	mainVariablesCount uint8
}

const (
	fixedHeaderBytes  = 3 // vm_version + size
	countsFieldBytes  = 3 // functions_count, constants_count, main_variables_count
	functionRecordLen = 5 // address(2) + arguments_count(1) + variables_count(1) + packed(1)
)

// NewImage parses and validates a packed executable image, combining the
// "check" and "accessor construction" steps of spec.md §6 into one call: a
// caller that only wants validation can discard the *Image and keep the
// error.
//
// Functions-table packed byte layout (bit 7 downward): is_built_in(1),
// is_variadic(1), returns_count(6). The spec leaves the exact bit order
// within the packed byte unspecified; this is the order this repository's
// images use consistently.
func NewImage(data []byte, cfg Config) (*Image, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(data) < fixedHeaderBytes+countsFieldBytes {
		return nil, ErrWrongSize
	}

	version := data[0]
	if version != cfg.VMVersion {
		return nil, ErrWrongVersion
	}

	declaredSize := binary.LittleEndian.Uint16(data[1:3])
	if int(declaredSize) != len(data)-fixedHeaderBytes {
		return nil, ErrWrongSize
	}

	off := fixedHeaderBytes
	functionsCount := int(data[off])
	constantsCount := int(data[off+1])
	mainVariablesCount := data[off+2]
	off += countsFieldBytes

	functionsEnd := off + functionsCount*functionRecordLen
	constantsEnd := functionsEnd + constantsCount*cfg.cellBytes()
	if functionsEnd > len(data) || constantsEnd > len(data) {
		return nil, ErrWrongSize
	}

	functions := make([]FunctionDescriptor, functionsCount)
	for i := 0; i < functionsCount; i++ {
		rec := data[off+i*functionRecordLen : off+(i+1)*functionRecordLen]
		packed := rec[4]
		functions[i] = FunctionDescriptor{
			Address:        binary.LittleEndian.Uint16(rec[0:2]),
			ArgumentsCount: rec[2],
			VariablesCount: rec[3],
			ReturnsCount:   packed & 0x3F,
			IsVariadic:     packed&0x40 != 0,
			IsBuiltIn:      packed&0x80 != 0,
		}
	}

	constants := make([]int32, constantsCount)
	cellBytes := cfg.cellBytes()
	for i := 0; i < constantsCount; i++ {
		raw := decodeCell(data[functionsEnd+i*cellBytes:functionsEnd+(i+1)*cellBytes], cellBytes)
		constants[i] = widen(raw, cfg.CellBits)
	}

	code := data[constantsEnd:]

	return &Image{
		version:            version,
		functions:          functions,
		constants:          constants,
		code:               code,
		mainVariablesCount: mainVariablesCount,
	}, nil
}

// decodeCell reads a little-endian cell of the given byte width as a raw
// (not yet sign-extended) 32-bit pattern.
func decodeCell(b []byte, width int) int32 {
	var v uint32
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return int32(v)
}

func (img *Image) Version() uint8                    { return img.version }
func (img *Image) FunctionsCount() int               { return len(img.functions) }
func (img *Image) ConstantsCount() int                { return len(img.constants) }
func (img *Image) MainVariablesCount() uint8          { return img.mainVariablesCount }
func (img *Image) CodeSize() int                      { return len(img.code) }
func (img *Image) Function(i int) FunctionDescriptor  { return img.functions[i] }
func (img *Image) Constant(i int) int32               { return img.constants[i] }
func (img *Image) CodeByte(pc uint16) byte            { return img.code[pc] }
