package mbslave

// Instance holds one Modbus slave's complete data model and diagnostic
// state: its coil/register/file descriptor banks plus the counters, status
// word and event log mandated by the Diagnostics and Comm Event Log
// function codes. Grounded on original_source/src/mbdef.h's mbinst_s field
// list (mbinst.h itself was not captured, but every field read or written
// by mbfn_digs.c is represented here).
//
// Instance carries no internal locking: serializing
// access across concurrent transports is the caller's job, done the way
// the transport package wraps each HandleRequest call in a sync.Mutex.
type Instance struct {
	coils          []CoilDesc
	discreteInputs []CoilDesc
	holdingRegs    []RegDesc
	inputRegs      []RegDesc
	files          []FileDesc

	slaveID               []byte
	readExceptionStatusCB func() uint8
	readDiagnosticsCB     func() uint16
	resetDiagnosticsCB    func()
	requestRestartCB      func()
	commitCoilsWriteCB    func(*Instance)
	commitRegsWriteCB     func(*Instance)
	handleFnCB            func(req []byte, res *[]byte) Status

	busMsgCounter         uint16
	busCommErrCounter     uint16
	exceptionCounter      uint16
	msgCounter            uint16
	noRespCounter         uint16
	nakCounter            uint16
	busyCounter           uint16
	busCharOverrunCounter uint16
	commEventCounter      uint16
	isListenOnly          bool
	asciiDelimiter        byte

	eventLog         [commEventLogLen]byte
	eventLogWritePos int
	eventLogCount    int
}

const commEventLogLen = 64

// InstanceOption configures an Instance built by NewInstance.
type InstanceOption func(*Instance)

// WithCoils installs the read/write coil bank (function codes 0x01, 0x05,
// 0x0F). descs must be sorted ascending by address.
func WithCoils(descs []CoilDesc) InstanceOption {
	return func(i *Instance) { i.coils = descs }
}

// WithDiscreteInputs installs the read-only discrete input bank (function
// code 0x02). descs must be sorted ascending by address.
func WithDiscreteInputs(descs []CoilDesc) InstanceOption {
	return func(i *Instance) { i.discreteInputs = descs }
}

// WithHoldingRegisters installs the read/write register bank (function
// codes 0x03, 0x06, 0x10, 0x16, 0x17). descs must be sorted ascending by
// address.
func WithHoldingRegisters(descs []RegDesc) InstanceOption {
	return func(i *Instance) { i.holdingRegs = descs }
}

// WithInputRegisters installs the read-only register bank (function code
// 0x04). descs must be sorted ascending by address.
func WithInputRegisters(descs []RegDesc) InstanceOption {
	return func(i *Instance) { i.inputRegs = descs }
}

// WithFiles installs the file record bank (function codes 0x14, 0x15).
// descs must be sorted ascending by file number.
func WithFiles(descs []FileDesc) InstanceOption {
	return func(i *Instance) { i.files = descs }
}

// WithSlaveID sets the fixed identification payload returned by function
// code 0x11, ahead of the running indicator byte.
func WithSlaveID(id []byte) InstanceOption {
	return func(i *Instance) { i.slaveID = id }
}

// WithCommitCoilsWriteCB is invoked once after a successful single- or
// multi-coil write, after every touched coil's own post-write hook has
// already run. Mirrors inst->commit_coils_write_cb in mbfn_coils.c.
func WithCommitCoilsWriteCB(fn func(*Instance)) InstanceOption {
	return func(i *Instance) { i.commitCoilsWriteCB = fn }
}

// WithCommitRegsWriteCB is invoked once after a successful single- or
// multi-register write (function codes 0x06, 0x10, 0x15, 0x16, 0x17).
func WithCommitRegsWriteCB(fn func(*Instance)) InstanceOption {
	return func(i *Instance) { i.commitRegsWriteCB = fn }
}

// WithReadExceptionStatusCB backs function code 0x07 (Read Exception
// Status); without it the function code falls back to handle_fn_cb, matching
// mbpdu.c's handle() only routing to mbfn_read_exception_status when
// inst->serial.read_exception_status_cb is set.
func WithReadExceptionStatusCB(fn func() uint8) InstanceOption {
	return func(i *Instance) { i.readExceptionStatusCB = fn }
}

// WithHandleFnCB installs the fallback handler invoked for function codes
// this engine does not itself resolve: Report Slave ID (0x11, always), Read
// Exception Status (0x07) when no WithReadExceptionStatusCB is set, and any
// function code this dispatcher does not recognize at all. Mirrors
// mbinst_s::handle_fn_cb from original_source/src/mbdef.h, the hook mbpdu.c
// defers to for function codes the core stack leaves to the host. Installing
// one replaces the built-in Report Slave ID default entirely; req[0] tells
// fn which function code it was called for.
func WithHandleFnCB(fn func(req []byte, res *[]byte) Status) InstanceOption {
	return func(i *Instance) { i.handleFnCB = fn }
}

// WithReadDiagnosticsCB backs diagnostics sub-function 0x02 (Return
// Diagnostic Register); without it the register reads as zero.
func WithReadDiagnosticsCB(fn func() uint16) InstanceOption {
	return func(i *Instance) { i.readDiagnosticsCB = fn }
}

// WithResetDiagnosticsCB is invoked, in addition to the built-in counter
// reset, by diagnostics sub-function 0x0A (Clear Counters and Diagnostic
// Register).
func WithResetDiagnosticsCB(fn func()) InstanceOption {
	return func(i *Instance) { i.resetDiagnosticsCB = fn }
}

// WithRequestRestartCB is invoked by diagnostics sub-function 0x01 (Restart
// Communications Option) before its own counter reset.
func WithRequestRestartCB(fn func()) InstanceOption {
	return func(i *Instance) { i.requestRestartCB = fn }
}

// NewInstance builds an Instance with the default ASCII input delimiter
// (LF, 0x0A) and zeroed diagnostic state.
func NewInstance(opts ...InstanceOption) *Instance {
	i := &Instance{asciiDelimiter: '\n'}
	i.handleFnCB = i.defaultHandleFnCB
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// defaultHandleFnCB is the handle_fn_cb installed until a host supplies its
// own via WithHandleFnCB. It answers Report Slave ID from whatever payload
// WithSlaveID configured (see handleReportSlaveID in slaveid.go) and responds
// illegal function to everything else, the same terminal answer dispatch
// gave every one of these function codes before handle_fn_cb existed.
func (i *Instance) defaultHandleFnCB(req []byte, res *[]byte) Status {
	if len(req) > 0 && req[0] == fcReportSlaveID {
		return i.handleReportSlaveID(req, res)
	}
	return StatusIllegalFunction
}

// resetCommCounters implements reset_comm_counters from mbfn_digs.c.
func (i *Instance) resetCommCounters() {
	i.commEventCounter = 0
	i.busMsgCounter = 0
	i.busCommErrCounter = 0
	i.exceptionCounter = 0
	i.msgCounter = 0
	i.noRespCounter = 0
	i.nakCounter = 0
	i.busyCounter = 0
	i.busCharOverrunCounter = 0
}

// NoteBusMessage increments the serial bus message counter read back by
// diagnostics sub-function 0x0B and function code 0x0C. Meant to be called
// once per well-framed ADU addressed to this instance by the RTU/ASCII
// transport layer, ahead of the HandleRequest call for that same frame —
// Modbus TCP carries no equivalent per-frame bus counter. Grounded on
// mbadu_ascii.c's bus_msg_counter increment, which happens at the ADU layer
// rather than inside the PDU dispatcher.
func (i *Instance) NoteBusMessage() {
	i.busMsgCounter++
}

// NoteBusCommError increments the serial bus communication error counter
// and logs a receive event flagged RECV_COMM_ERR. Meant to be called by the
// RTU/ASCII transport layer on a CRC or LRC failure, whether or not the
// offending frame was addressed to this instance — per the ASCII
// LRC-before-address-filter design, a bus-level framing error is bus-level
// health data regardless of who it was meant for. Grounded on
// mbadu_ascii.c's bus_comm_err_counter increment and its companion
// mb_add_comm_event call flagged MB_COMM_EVENT_RECV_COMM_ERR.
func (i *Instance) NoteBusCommError() {
	i.busCommErrCounter++
	addCommEvent(i, recvEventByte(i, recvCommErr))
}

// IsListenOnly reports whether the instance is currently in listen-only
// mode, entered via diagnostics sub-function 0x04 and cleared only by a
// Restart Communications Option request.
func (i *Instance) IsListenOnly() bool { return i.isListenOnly }

// statusWord returns the 16-bit status word reported by function codes
// 0x0B and 0x0C: 0xFFFF while in listen-only mode, 0x0000 otherwise.
func (i *Instance) statusWord() uint16 {
	if i.isListenOnly {
		return 0xFFFF
	}
	return 0x0000
}
