package mbslave

// HandleRequest is the single entry point for the PDU dispatcher: given the
// raw PDU bytes of a request (function code followed by its data, as
// delivered by an ADU layer with addressing/framing already stripped), it
// returns the raw PDU bytes of the response to send, or a zero-length slice
// if no response should be sent at all (listen-only mode, or a broadcast
// the caller should suppress upstream).
//
// Grounded on original_source/src/mbpdu.c's mbpdu_handle_req/handle pair:
// the listen-only short-circuit, message counters, exception assembly and
// event-log bookkeeping all follow that function's sequencing directly.
func (i *Instance) HandleRequest(req []byte) []byte {
	if len(req) < 1 {
		return nil
	}

	send := sendEvent(0)

	if i.isListenOnly && !isRestartCommsRequest(req) {
		addCommEvent(i, byte(eventByteIsSendBroadcst)|byte(sendListenOnly))
		return nil
	}

	i.msgCounter++
	wasListenOnly := i.isListenOnly

	res := make([]byte, 0, 256)
	res = append(res, req[0])

	status := i.dispatch(req, &res)

	if status != StatusOK {
		res = res[:0]
		res = append(res, req[0]|errFlag, byte(status))
		send |= sendEventForStatus(status)
	}

	if wasListenOnly {
		send |= sendListenOnly
	}
	addCommEvent(i, sendEventByte(i, send))

	fc := req[0]
	if status == StatusOK && fc != fcDiagnostics && fc != fcCommEventCounter && fc != fcCommEventLog {
		i.commEventCounter++
	}
	if status != StatusOK {
		i.exceptionCounter++
	}
	if status == StatusNegativeAcknowledge {
		i.nakCounter++
	}
	if status == StatusDeviceBusy {
		i.busyCounter++
	}

	if i.isListenOnly || wasListenOnly {
		return nil
	}
	return res
}

func isRestartCommsRequest(req []byte) bool {
	return len(req) >= 3 && req[0] == fcDiagnostics && beU16(req[1:3]) == subDiagRestartComms
}

// dispatch routes a single PDU to its function handler, appending the
// response payload (after the already-copied function code byte) to res.
func (i *Instance) dispatch(req []byte, res *[]byte) Status {
	switch req[0] {
	case fcReadCoils:
		if i.coils != nil {
			return handleReadCoils(i.coils, req, res)
		}
	case fcReadDiscreteInputs:
		if i.discreteInputs != nil {
			return handleReadCoils(i.discreteInputs, req, res)
		}
	case fcReadHoldingRegisters:
		if i.holdingRegs != nil {
			return handleReadRegs(i.holdingRegs, req, res)
		}
	case fcReadInputRegisters:
		if i.inputRegs != nil {
			return handleReadRegs(i.inputRegs, req, res)
		}
	case fcWriteSingleCoil:
		if i.coils != nil {
			return i.handleWriteSingleCoil(req, res)
		}
	case fcWriteSingleRegister:
		if i.holdingRegs != nil {
			return i.handleWriteSingleReg(req, res)
		}
	case fcReadExceptionStatus:
		if i.readExceptionStatusCB != nil {
			return i.handleReadExceptionStatus(req, res)
		}
		return i.handleFnCB(req, res)
	case fcDiagnostics:
		return i.handleDiagnostics(req, res)
	case fcCommEventCounter:
		return i.handleCommEventCounter(req, res)
	case fcCommEventLog:
		return i.handleCommEventLog(req, res)
	case fcWriteMultipleCoils:
		if i.coils != nil {
			return i.handleWriteMultipleCoils(req, res)
		}
	case fcWriteMultipleRegisters:
		if i.holdingRegs != nil {
			return i.handleWriteMultipleRegs(req, res)
		}
	case fcReportSlaveID:
		return i.handleFnCB(req, res)
	case fcReadFileRecord:
		return i.handleReadFileRecord(req, res)
	case fcWriteFileRecord:
		return i.handleWriteFileRecord(req, res)
	case fcMaskWriteRegister:
		if i.holdingRegs != nil {
			return i.handleMaskWriteReg(req, res)
		}
	case fcReadWriteMultipleRegs:
		if i.holdingRegs != nil {
			return i.handleReadWriteMultipleRegs(req, res)
		}
	}

	return i.handleFnCB(req, res)
}
