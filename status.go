package mbslave

import "errors"

// Status is the internal result of a function handler, distinct from the
// exported sentinel errors used at the host-facing boundary (see Err* below).
// Handlers return a Status; the dispatcher is the only place a non-OK Status
// is turned into a Modbus exception response.
type Status uint8

const (
	StatusOK                  Status = 0x00
	StatusIllegalFunction     Status = 0x01
	StatusIllegalDataAddress  Status = 0x02
	StatusIllegalDataValue    Status = 0x03
	StatusDeviceFailure       Status = 0x04
	StatusAcknowledge         Status = 0x05
	StatusDeviceBusy          Status = 0x06
	StatusNegativeAcknowledge Status = 0x07
	StatusMemoryParityError   Status = 0x08
)

// errFlag is OR-ed into the response function code to mark an exception
// response on the wire.
const errFlag uint8 = 0x80

// Function codes this engine dispatches on.
const (
	fcReadCoils              uint8 = 0x01
	fcReadDiscreteInputs     uint8 = 0x02
	fcReadHoldingRegisters   uint8 = 0x03
	fcReadInputRegisters     uint8 = 0x04
	fcWriteSingleCoil        uint8 = 0x05
	fcWriteSingleRegister    uint8 = 0x06
	fcReadExceptionStatus    uint8 = 0x07
	fcDiagnostics            uint8 = 0x08
	fcCommEventCounter       uint8 = 0x0B
	fcCommEventLog           uint8 = 0x0C
	fcWriteMultipleCoils     uint8 = 0x0F
	fcWriteMultipleRegisters uint8 = 0x10
	fcReportSlaveID          uint8 = 0x11
	fcReadFileRecord         uint8 = 0x14
	fcWriteFileRecord        uint8 = 0x15
	fcMaskWriteRegister      uint8 = 0x16
	fcReadWriteMultipleRegs  uint8 = 0x17
)

// Diagnostics (FC 0x08) sub-function codes.
const (
	subDiagLoopback          uint16 = 0x00
	subDiagRestartComms      uint16 = 0x01
	subDiagReadDiagReg       uint16 = 0x02
	subDiagChangeASCIIDelim  uint16 = 0x03
	subDiagForceListenOnly   uint16 = 0x04
	subDiagClrCountsAndDiag  uint16 = 0x0A
	subDiagBusMsgCount       uint16 = 0x0B
	subDiagBusCommErrCount   uint16 = 0x0C
	subDiagExceptionCount    uint16 = 0x0D
	subDiagMsgCount          uint16 = 0x0E
	subDiagNoRespCount       uint16 = 0x0F
	subDiagNAKCount          uint16 = 0x10
	subDiagBusyCount         uint16 = 0x11
	subDiagBusOverrunCount   uint16 = 0x12
	subDiagClrOverrunCounter uint16 = 0x14
)

// Send-event flags, OR-ed together and logged after a request is handled.
// See the event log byte encoding below.
type sendEvent uint8

const (
	sendReadEx       sendEvent = 1 << 0
	sendAbortEx      sendEvent = 1 << 1
	sendBusyEx       sendEvent = 1 << 2
	sendNAKEx        sendEvent = 1 << 3
	sendWriteTimeout sendEvent = 1 << 4
	sendListenOnly   sendEvent = 1 << 5
)

// Receive-event flags.
type recvEvent uint8

const (
	recvCommErr    recvEvent = 1 << 1
	recvCharOver   recvEvent = 1 << 4
	recvListenMode recvEvent = 1 << 5
	recvBroadcast  recvEvent = 1 << 6
)

const (
	eventCommRestart        uint8 = 0x00
	eventEnteredListenOnly  uint8 = 0x04
	eventByteIsRecv         uint8 = 0x80
	eventByteIsSendBroadcst uint8 = 0x40
)

// Host-facing sentinel errors, mirroring simonvetter-modbus's own Err*
// table so that ambient code (logging, bridges) can compare against
// well-known values the same way its client package does.
var (
	ErrIllegalFunction     = errors.New("illegal function")
	ErrIllegalDataAddress  = errors.New("illegal data address")
	ErrIllegalDataValue    = errors.New("illegal data value")
	ErrServerDeviceFailure = errors.New("server device failure")
	ErrAcknowledge         = errors.New("request acknowledged")
	ErrServerDeviceBusy    = errors.New("server device busy")
	ErrNegativeAcknowledge = errors.New("negative acknowledge")
	ErrMemoryParityError   = errors.New("memory parity error")
	ErrBadCRC              = errors.New("bad crc")
	ErrBadLRC              = errors.New("bad lrc")
	ErrShortFrame          = errors.New("short frame")
	ErrProtocolError       = errors.New("protocol error")
	ErrNotAddressed        = errors.New("request not addressed to this instance")
)

// StatusToError maps an internal Status to the equivalent sentinel error, for
// host-facing logging and metrics. StatusOK maps to nil.
func StatusToError(s Status) error {
	switch s {
	case StatusOK:
		return nil
	case StatusIllegalFunction:
		return ErrIllegalFunction
	case StatusIllegalDataAddress:
		return ErrIllegalDataAddress
	case StatusIllegalDataValue:
		return ErrIllegalDataValue
	case StatusDeviceFailure:
		return ErrServerDeviceFailure
	case StatusAcknowledge:
		return ErrAcknowledge
	case StatusDeviceBusy:
		return ErrServerDeviceBusy
	case StatusNegativeAcknowledge:
		return ErrNegativeAcknowledge
	case StatusMemoryParityError:
		return ErrMemoryParityError
	default:
		return ErrServerDeviceFailure
	}
}

// sendEventForStatus implements the status-to-send-event-flag table.
func sendEventForStatus(s Status) sendEvent {
	switch s {
	case StatusIllegalFunction, StatusIllegalDataAddress, StatusIllegalDataValue:
		return sendReadEx
	case StatusDeviceFailure:
		return sendAbortEx
	case StatusAcknowledge, StatusDeviceBusy:
		return sendBusyEx
	case StatusNegativeAcknowledge:
		return sendNAKEx
	default:
		return 0
	}
}
