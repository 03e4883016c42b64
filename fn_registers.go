package mbslave

// Quantity limits per the Modbus Application Protocol's PDU size bound
// (253 data bytes), mirrored from mbfn_coils.c's pattern for the
// register-reading/writing function codes.
const (
	regReadMax       = 0x007D
	regWriteMax      = 0x007B
	regReadWriteMaxR = 0x007D
	regReadWriteMaxW = 0x0079
)

// handleReadRegs implements function codes 0x03 (Read Holding Registers)
// and 0x04 (Read Input Registers).
func handleReadRegs(table []RegDesc, req []byte, res *[]byte) Status {
	if len(req) != 5 {
		return StatusIllegalDataValue
	}

	startAddr := beU16(req[1:3])
	quantity := beU16(req[3:5])

	if quantity == 0 || quantity > regReadMax {
		return StatusIllegalDataValue
	}

	for offs := uint16(0); offs < quantity; offs++ {
		if idx := findDescriptor(table, startAddr+offs); idx >= 0 {
			if r := &table[idx]; r.rlock != nil && r.rlock() {
				return StatusIllegalDataAddress
			}
		}
	}

	data, status := regRangeRead(table, startAddr, quantity, nil)
	if status != StatusOK {
		return status
	}

	*res = append(*res, byte(len(data)))
	*res = append(*res, data...)
	return StatusOK
}

// handleWriteSingleReg implements function code 0x06 (Write Single
// Register).
func (inst *Instance) handleWriteSingleReg(req []byte, res *[]byte) Status {
	if len(req) != 5 {
		return StatusIllegalDataValue
	}

	addr := beU16(req[1:3])

	if st := regRangeWriteAllowed(inst.holdingRegs, addr, 1); st != StatusOK {
		return st
	}
	if st := regRangeWrite(inst.holdingRegs, addr, 1, req[3:5]); st != StatusOK {
		return st
	}

	if inst.commitRegsWriteCB != nil {
		inst.commitRegsWriteCB(inst)
	}

	*res = append(*res, req[1], req[2], req[3], req[4])
	return StatusOK
}

// handleWriteMultipleRegs implements function code 0x10 (Write Multiple
// Registers), validating every touched register before writing any of
// them, matching the atomicity pattern used throughout this engine for
// multi-entity writes.
func (inst *Instance) handleWriteMultipleRegs(req []byte, res *[]byte) Status {
	if len(req) < 7 {
		return StatusIllegalDataValue
	}

	startAddr := beU16(req[1:3])
	quantity := beU16(req[3:5])
	byteCount := req[5]

	if quantity == 0 || quantity > regWriteMax {
		return StatusIllegalDataValue
	}
	if uint16(byteCount) != quantity*2 {
		return StatusIllegalDataValue
	}
	if len(req) != 6+int(byteCount) {
		return StatusIllegalDataValue
	}

	if st := regRangeWriteAllowed(inst.holdingRegs, startAddr, quantity); st != StatusOK {
		return st
	}
	if st := regRangeWrite(inst.holdingRegs, startAddr, quantity, req[6:]); st != StatusOK {
		return st
	}

	if inst.commitRegsWriteCB != nil {
		inst.commitRegsWriteCB(inst)
	}

	*res = append(*res, putBeU16Bytes(startAddr)...)
	*res = append(*res, putBeU16Bytes(quantity)...)
	return StatusOK
}

// handleMaskWriteReg implements function code 0x16 (Mask Write Register):
// result = (current AND andMask) OR (orMask AND NOT andMask).
func (inst *Instance) handleMaskWriteReg(req []byte, res *[]byte) Status {
	if len(req) != 7 {
		return StatusIllegalDataValue
	}

	addr := beU16(req[1:3])
	andMask := beU16(req[3:5])
	orMask := beU16(req[5:7])

	idx := findDescriptor(inst.holdingRegs, addr)
	if idx < 0 {
		return StatusIllegalDataAddress
	}
	reg := &inst.holdingRegs[idx]
	if reg.startAddr() != addr || reg.count() != 1 {
		return StatusIllegalDataAddress
	}

	if !regWriteAllowed(reg) {
		return StatusIllegalDataAddress
	}

	cur, outcome := readRegBytes(reg)
	if outcome != regReadOK {
		return StatusDeviceFailure
	}
	current := beU16(cur)

	result := (current & andMask) | (orMask &^ andMask)
	if st := writeRegBytes(reg, 0, 1, putBeU16Bytes(result)); st != StatusOK {
		return st
	}

	if inst.commitRegsWriteCB != nil {
		inst.commitRegsWriteCB(inst)
	}

	*res = append(*res, req[1], req[2], req[3], req[4], req[5], req[6])
	return StatusOK
}

// handleReadWriteMultipleRegs implements function code 0x17 (Read/Write
// Multiple Registers): the write is validated and applied first, then the
// (possibly overlapping) read range is returned, per the Modbus
// Application Protocol's specified ordering for this function code.
func (inst *Instance) handleReadWriteMultipleRegs(req []byte, res *[]byte) Status {
	if len(req) < 10 {
		return StatusIllegalDataValue
	}

	readAddr := beU16(req[1:3])
	readQty := beU16(req[3:5])
	writeAddr := beU16(req[5:7])
	writeQty := beU16(req[7:9])
	byteCount := req[9]

	if readQty == 0 || readQty > regReadWriteMaxR {
		return StatusIllegalDataValue
	}
	if writeQty == 0 || writeQty > regReadWriteMaxW {
		return StatusIllegalDataValue
	}
	if uint16(byteCount) != writeQty*2 {
		return StatusIllegalDataValue
	}
	if len(req) != 10+int(byteCount) {
		return StatusIllegalDataValue
	}

	if findDescriptor(inst.holdingRegs, readAddr) < 0 {
		return StatusIllegalDataAddress
	}
	if st := regRangeWriteAllowed(inst.holdingRegs, writeAddr, writeQty); st != StatusOK {
		return st
	}
	if st := regRangeWrite(inst.holdingRegs, writeAddr, writeQty, req[10:]); st != StatusOK {
		return st
	}
	if inst.commitRegsWriteCB != nil {
		inst.commitRegsWriteCB(inst)
	}

	data, status := regRangeRead(inst.holdingRegs, readAddr, readQty, nil)
	if status != StatusOK {
		return status
	}

	*res = append(*res, byte(len(data)))
	*res = append(*res, data...)
	return StatusOK
}
