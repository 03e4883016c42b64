package mbslave

import "testing"

func TestDiagReturnQueryDataLoopback(t *testing.T) {
	inst := NewInstance()
	res := inst.HandleRequest([]byte{0x08, 0x00, 0x00, 0xAB, 0xCD, 0xEF})
	want := []byte{0x08, 0x00, 0x00, 0xAB, 0xCD, 0xEF}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestDiagReturnDiagnosticRegister(t *testing.T) {
	inst := NewInstance(WithReadDiagnosticsCB(func() uint16 { return 0xCAFE }))
	res := inst.HandleRequest([]byte{0x08, 0x00, 0x02, 0x00, 0x00})
	want := []byte{0x08, 0x00, 0x02, 0xCA, 0xFE}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestDiagChangeASCIIDelimiter(t *testing.T) {
	inst := NewInstance()
	res := inst.HandleRequest([]byte{0x08, 0x00, 0x03, '.', 0x00})
	want := []byte{0x08, 0x00, 0x03, '.', 0x00}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
	if inst.asciiDelimiter != '.' {
		t.Errorf("expected ascii delimiter to become '.', got %q", inst.asciiDelimiter)
	}
}

func TestDiagClearCountersAndDiagRegister(t *testing.T) {
	resetCBCalled := false
	inst := NewInstance(WithResetDiagnosticsCB(func() { resetCBCalled = true }))
	inst.msgCounter = 5
	inst.busMsgCounter = 7

	res := inst.HandleRequest([]byte{0x08, 0x00, 0x0A, 0x00, 0x00})
	want := []byte{0x08, 0x00, 0x0A, 0x00, 0x00}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
	if inst.msgCounter != 0 || inst.busMsgCounter != 0 {
		t.Errorf("expected counters cleared, got msgCounter=%v busMsgCounter=%v", inst.msgCounter, inst.busMsgCounter)
	}
	if !resetCBCalled {
		t.Errorf("expected the reset diagnostics callback to run")
	}
}

func TestDiagClearOverrunCounter(t *testing.T) {
	inst := NewInstance()
	inst.busCharOverrunCounter = 3

	res := inst.HandleRequest([]byte{0x08, 0x00, 0x14, 0x00, 0x00})
	want := []byte{0x08, 0x00, 0x14, 0x00, 0x00}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
	if inst.busCharOverrunCounter != 0 {
		t.Errorf("expected overrun counter cleared, got %v", inst.busCharOverrunCounter)
	}
}

func TestDiagUnknownSubFunctionIsIllegalFunction(t *testing.T) {
	inst := NewInstance()
	res := inst.HandleRequest([]byte{0x08, 0x00, 0x63, 0x00, 0x00})
	want := []byte{0x88, 0x01}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestRestartCommsWithFF00ClearsEventLog(t *testing.T) {
	inst := NewInstance()
	addCommEvent(inst, 0x11)
	addCommEvent(inst, 0x22)

	res := inst.HandleRequest([]byte{0x08, 0x00, 0x01, 0xFF, 0x00})
	want := []byte{0x08, 0x00, 0x01, 0xFF, 0x00}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
	// the log is cleared, then the dispatcher logs this request's own send
	// event (0x40), which is all that remains
	if got := eventLogNewestFirst(inst); string(got) != string([]byte{0x40}) {
		t.Errorf("expected event log cleared by the 0xFF00 restart option, leaving only 40, got % X", got)
	}
}

func TestHandleCommEventCounterReportsStatusWord(t *testing.T) {
	inst := NewInstance()
	inst.isListenOnly = true
	inst.commEventCounter = 9

	// called directly: HandleRequest sends no response while listen-only
	res := []byte{0x0B}
	if st := inst.handleCommEventCounter([]byte{0x0B}, &res); st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	want := []byte{0x0B, 0xFF, 0xFF, 0x00, 0x09}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestHandleReadExceptionStatusRequiresCallback(t *testing.T) {
	inst := NewInstance()
	res := inst.HandleRequest([]byte{0x07})
	want := []byte{0x87, 0x01}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}

func TestHandleReadExceptionStatusReturnsCallbackValue(t *testing.T) {
	inst := NewInstance(WithReadExceptionStatusCB(func() uint8 { return 0x5A }))
	res := inst.HandleRequest([]byte{0x07})
	want := []byte{0x07, 0x5A}
	if string(res) != string(want) {
		t.Errorf("expected % X, got % X", want, res)
	}
}
