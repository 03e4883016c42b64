package mbslave

// FileDesc groups a set of register records under a single Modbus file
// number, addressed by (file_no, record_no) pairs per function codes 0x14
// and 0x15. Directly grounded on original_source/src/mbfile.c/mbfile.h:
// records must be sorted ascending by register address, matching the
// invariant findDescriptor relies on.
type FileDesc struct {
	fileNo  uint16
	records []RegDesc
}

func (f FileDesc) startAddr() uint16 { return f.fileNo }
func (f FileDesc) count() uint16     { return 1 }

// NewFile builds a file descriptor. records must already be sorted ascending
// by their register address.
func NewFile(fileNo uint16, records []RegDesc) FileDesc {
	return FileDesc{fileNo: fileNo, records: records}
}

// fileReadOutcome mirrors mbfile_read_status_e.
type fileReadOutcome uint8

const (
	fileReadOK fileReadOutcome = iota
	fileReadIllegalAddr
	fileReadDeviceErr
)

// readFileRecord reads recordLength registers starting at recordNo from
// file, appending big-endian encoded bytes to out. Delegates to
// regRangeRead, the same engine backing holding/input register reads,
// since mbfile_read and mbfn_read_regs share the identical
// sparse-descriptor-table traversal in the original source.
func readFileRecord(file *FileDesc, recordNo, recordLength uint16, out []byte) ([]byte, fileReadOutcome) {
	out, status := regRangeRead(file.records, recordNo, recordLength, out)
	switch status {
	case StatusOK:
		return out, fileReadOK
	case StatusIllegalDataAddress:
		return out, fileReadIllegalAddr
	default:
		return out, fileReadDeviceErr
	}
}

// fileWriteAllowed validates, without mutating anything, that every register
// touched by a write of recordLength registers starting at recordNo exists
// and accepts writes. Mirrors mbfile_write_allowed's role in the
// validate-all-before-write atomicity pattern used by fn_files.go.
func fileWriteAllowed(file *FileDesc, recordNo, recordLength uint16) Status {
	return regRangeWriteAllowed(file.records, recordNo, recordLength)
}

// writeFileRecord writes recordLength big-endian-encoded registers from val
// into file starting at recordNo. Callers must have already called
// fileWriteAllowed over the same range.
func writeFileRecord(file *FileDesc, recordNo, recordLength uint16, val []byte) Status {
	return regRangeWrite(file.records, recordNo, recordLength, val)
}
