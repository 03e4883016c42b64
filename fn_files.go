package mbslave

// File record request/response layout constants, mirrored from
// original_source/src/mbfn_files.c.
const (
	fileReadReqHeaderSize  = 2
	fileReadSubReqSize     = 7
	fileMinReadReqSize     = fileReadReqHeaderSize + fileReadSubReqSize
	fileMaxReadReqByteCnt  = 0xF5
	fileRefType            = 0x06
	fileMaxRecordNo        = 0x270F
	fileSubRespHeaderSize  = 2
	fileMaxRespByteCount   = 0xF5
	fileWriteSubReqHeader  = 7 // ref_type(1) + file_no(2) + record_no(2) + record_length(2)
	fileMinWriteReqSize    = fileReadReqHeaderSize + fileWriteSubReqHeader
)

// handleReadFileRecord implements function code 0x14 (Read File Record).
// Grounded on mbfn_file_read: every sub-request is validated before any
// data is read, then each is resolved against the file table in turn.
func (inst *Instance) handleReadFileRecord(req []byte, res *[]byte) Status {
	if len(req) < fileMinReadReqSize {
		return StatusIllegalDataValue
	}

	byteCount := int(req[1])
	if byteCount < fileReadSubReqSize || byteCount > fileMaxReadReqByteCnt ||
		byteCount != len(req)-fileReadReqHeaderSize || byteCount%fileReadSubReqSize != 0 {
		return StatusIllegalDataValue
	}

	nSubReqs := byteCount / fileReadSubReqSize
	respByteCount := 0

	type subReq struct {
		fileNo, recordNo, recordLength uint16
	}
	subs := make([]subReq, nSubReqs)

	for k := 0; k < nSubReqs; k++ {
		p := req[fileReadReqHeaderSize+k*fileReadSubReqSize:]
		if p[0] != fileRefType {
			return StatusIllegalDataValue
		}

		fileNo := beU16(p[1:3])
		recordNo := beU16(p[3:5])
		recordLength := beU16(p[5:7])

		if fileNo == 0 {
			return StatusIllegalDataValue
		}
		if recordNo > fileMaxRecordNo {
			return StatusIllegalDataAddress
		}
		if recordLength == 0 {
			return StatusIllegalDataValue
		}

		subs[k] = subReq{fileNo, recordNo, recordLength}
		respByteCount += fileSubRespHeaderSize + int(recordLength)*2
	}

	if respByteCount > fileMaxRespByteCount {
		return StatusIllegalDataValue
	}

	out := make([]byte, 0, respByteCount+1)
	out = append(out, byte(respByteCount))

	for _, s := range subs {
		idx := findDescriptor(inst.files, s.fileNo)
		if idx < 0 {
			return StatusIllegalDataAddress
		}
		file := &inst.files[idx]

		out = append(out, byte(1+s.recordLength*2), fileRefType)

		var outcome fileReadOutcome
		out, outcome = readFileRecord(file, s.recordNo, s.recordLength, out)
		switch outcome {
		case fileReadOK:
		case fileReadIllegalAddr:
			return StatusIllegalDataAddress
		default:
			return StatusDeviceFailure
		}
	}

	*res = append(*res, out...)
	return StatusOK
}

// handleWriteFileRecord implements function code 0x15 (Write File Record).
// The original source stubs this function entirely; this engine
// implements it in full, mirroring the read sub-request framing with the
// record length followed immediately by big-endian register data, and
// applying the same validate-all-before-write atomicity as every other
// multi-entity write in this engine.
func (inst *Instance) handleWriteFileRecord(req []byte, res *[]byte) Status {
	if len(req) < fileMinWriteReqSize {
		return StatusIllegalDataValue
	}

	byteCount := int(req[1])
	if byteCount != len(req)-fileReadReqHeaderSize {
		return StatusIllegalDataValue
	}

	type subReq struct {
		fileNo, recordNo, recordLength uint16
		val                            []byte
	}
	var subs []subReq

	pos := fileReadReqHeaderSize
	for pos < len(req) {
		if len(req)-pos < fileWriteSubReqHeader {
			return StatusIllegalDataValue
		}
		p := req[pos:]
		if p[0] != fileRefType {
			return StatusIllegalDataValue
		}

		fileNo := beU16(p[1:3])
		recordNo := beU16(p[3:5])
		recordLength := beU16(p[5:7])

		if fileNo == 0 {
			return StatusIllegalDataValue
		}
		if recordNo > fileMaxRecordNo {
			return StatusIllegalDataAddress
		}

		dataLen := int(recordLength) * 2
		if len(req)-pos-fileWriteSubReqHeader < dataLen {
			return StatusIllegalDataValue
		}

		subs = append(subs, subReq{
			fileNo:       fileNo,
			recordNo:     recordNo,
			recordLength: recordLength,
			val:          p[fileWriteSubReqHeader : fileWriteSubReqHeader+dataLen],
		})
		pos += fileWriteSubReqHeader + dataLen
	}

	if len(subs) == 0 {
		return StatusIllegalDataValue
	}

	files := make([]*FileDesc, len(subs))
	for k, s := range subs {
		idx := findDescriptor(inst.files, s.fileNo)
		if idx < 0 {
			return StatusIllegalDataAddress
		}
		files[k] = &inst.files[idx]
		if st := fileWriteAllowed(files[k], s.recordNo, s.recordLength); st != StatusOK {
			return st
		}
	}

	for k, s := range subs {
		if st := writeFileRecord(files[k], s.recordNo, s.recordLength, s.val); st != StatusOK {
			return st
		}
	}

	if inst.commitRegsWriteCB != nil {
		inst.commitRegsWriteCB(inst)
	}

	*res = append(*res, req[1:]...)
	return StatusOK
}
