package mbslave

// handleDiagnostics implements function code 0x08 and its sub-functions.
// Grounded on mbfn_digs.c's mbfn_digs: every sub-function echoes the
// function code and sub-function code ahead of its own payload, and a
// request shorter than 3 bytes or an unrecognized sub-function is
// rejected before any sub-handler runs.
func (inst *Instance) handleDiagnostics(req []byte, res *[]byte) Status {
	if len(req) < 3 {
		return StatusIllegalDataValue
	}

	sub := beU16(req[1:3])
	*res = append(*res, req[1], req[2])

	switch sub {
	case subDiagLoopback:
		*res = append(*res, req[3:]...)
		return StatusOK

	case subDiagRestartComms:
		return inst.diagRestartComms(req, res)

	case subDiagReadDiagReg:
		if len(req) != 5 || beU16(req[3:5]) != 0 {
			return StatusIllegalDataValue
		}
		var v uint16
		if inst.readDiagnosticsCB != nil {
			v = inst.readDiagnosticsCB()
		}
		*res = append(*res, putBeU16Bytes(v)...)
		return StatusOK

	case subDiagChangeASCIIDelim:
		if len(req) != 5 || req[3] > 127 || req[4] != 0 {
			return StatusIllegalDataValue
		}
		inst.asciiDelimiter = req[3]
		*res = append(*res, req[3], 0x00)
		return StatusOK

	case subDiagForceListenOnly:
		if len(req) != 5 || beU16(req[3:5]) != 0 {
			return StatusIllegalDataValue
		}
		// No response is ever sent for this sub-function: setting
		// isListenOnly here makes HandleRequest's trailing listen-only
		// check suppress the reply for us.
		inst.isListenOnly = true
		addCommEvent(inst, eventEnteredListenOnly)
		return StatusOK

	case subDiagClrCountsAndDiag:
		if len(req) != 5 || beU16(req[3:5]) != 0 {
			return StatusIllegalDataValue
		}
		inst.resetCommCounters()
		if inst.resetDiagnosticsCB != nil {
			inst.resetDiagnosticsCB()
		}
		*res = append(*res, 0x00, 0x00)
		return StatusOK

	case subDiagBusMsgCount:
		return diagReadCounter(inst.busMsgCounter, req, res)
	case subDiagBusCommErrCount:
		return diagReadCounter(inst.busCommErrCounter, req, res)
	case subDiagExceptionCount:
		return diagReadCounter(inst.exceptionCounter, req, res)
	case subDiagMsgCount:
		return diagReadCounter(inst.msgCounter, req, res)
	case subDiagNoRespCount:
		return diagReadCounter(inst.noRespCounter, req, res)
	case subDiagNAKCount:
		return diagReadCounter(inst.nakCounter, req, res)
	case subDiagBusyCount:
		return diagReadCounter(inst.busyCounter, req, res)
	case subDiagBusOverrunCount:
		return diagReadCounter(inst.busCharOverrunCounter, req, res)

	case subDiagClrOverrunCounter:
		if len(req) != 5 || beU16(req[3:5]) != 0 {
			return StatusIllegalDataValue
		}
		inst.busCharOverrunCounter = 0
		*res = append(*res, 0x00, 0x00)
		return StatusOK

	default:
		return StatusIllegalFunction
	}
}

// diagRestartComms implements diagnostics sub-function 0x01. Per
// restart_comms_opt, the echoed data field selects whether the event log
// ring buffer itself is also cleared (0xFF00) or a restart event is logged
// instead (0x0000); any other value is illegal.
func (inst *Instance) diagRestartComms(req []byte, res *[]byte) Status {
	if len(req) != 5 {
		return StatusIllegalDataValue
	}
	val := beU16(req[3:5])
	if val != 0x0000 && val != 0xFF00 {
		return StatusIllegalDataValue
	}

	if inst.requestRestartCB != nil {
		inst.requestRestartCB()
	}
	inst.isListenOnly = false
	inst.resetCommCounters()

	if val == 0xFF00 {
		inst.eventLogWritePos = 0
		inst.eventLogCount = 0
	} else {
		addCommEvent(inst, eventCommRestart)
	}

	*res = append(*res, putBeU16Bytes(val)...)
	return StatusOK
}

func diagReadCounter(counter uint16, req []byte, res *[]byte) Status {
	if len(req) != 5 || beU16(req[3:5]) != 0 {
		return StatusIllegalDataValue
	}
	*res = append(*res, putBeU16Bytes(counter)...)
	return StatusOK
}

// handleCommEventCounter implements function code 0x0B.
func (inst *Instance) handleCommEventCounter(req []byte, res *[]byte) Status {
	if len(req) != 1 {
		return StatusIllegalDataValue
	}
	*res = append(*res, putBeU16Bytes(inst.statusWord())...)
	*res = append(*res, putBeU16Bytes(inst.commEventCounter)...)
	return StatusOK
}

// handleCommEventLog implements function code 0x0C.
func (inst *Instance) handleCommEventLog(req []byte, res *[]byte) Status {
	if len(req) != 1 {
		return StatusIllegalDataValue
	}

	events := eventLogNewestFirst(inst)

	*res = append(*res, byte(6+len(events)))
	*res = append(*res, putBeU16Bytes(inst.statusWord())...)
	*res = append(*res, putBeU16Bytes(inst.commEventCounter)...)
	*res = append(*res, putBeU16Bytes(inst.busMsgCounter)...)
	*res = append(*res, events...)
	return StatusOK
}

// handleReadExceptionStatus implements function code 0x07.
func (inst *Instance) handleReadExceptionStatus(req []byte, res *[]byte) Status {
	if len(req) != 1 {
		return StatusIllegalDataValue
	}
	*res = append(*res, inst.readExceptionStatusCB())
	return StatusOK
}
