package lvdu

import (
	"testing"

	"lvducore/errcode"
	"lvducore/hvcm"
	"lvducore/vstate"
)

func baseInputs() Inputs {
	return Inputs{
		ReadySafetyIn:        true,
		RawDCPowerMilliVolts: 13000,
		LV12vLowThreshold:    11.0,
		HVLowThreshold:       200.0,
		BMSDataValid:         true,
		BMSContState:         1, // contactors open
		BMSPackVoltage:       400.0,
		ChargeDoneCurrent:    0.5,
		ChargeDoneDelayS:     30,
		ThermalTaskCompleted: true,
	}
}

func TestNewMachineBootsIntoSleep(t *testing.T) {
	m := NewMachine()
	out := m.Tick(baseInputs(), nil)
	if out.State != vstate.Standby {
		t.Fatalf("first tick State = %s, want STANDBY (SLEEP unconditionally advances)", out.State)
	}
}

func TestSleepToStandbyToHVConnectingToReady(t *testing.T) {
	m := NewMachine()
	in := baseInputs()
	in.IgnitionIn = true

	out := m.Tick(in, nil) // SLEEP -> STANDBY
	if out.State != vstate.Standby {
		t.Fatalf("tick 1: State = %s, want STANDBY", out.State)
	}

	out = m.Tick(in, nil) // STANDBY -> HV_CONNECTING, queues READY
	if out.State != vstate.HVConnecting || out.QueuedState != vstate.Ready {
		t.Fatalf("tick 2: State=%s QueuedState=%s, want HV_CONNECTING queued READY", out.State, out.QueuedState)
	}

	out = m.Tick(in, nil) // HVCM Disconnected -> Requested, state unchanged
	if out.State != vstate.HVConnecting || out.HVCMState != hvcm.Requested {
		t.Fatalf("tick 3: State=%s HVCMState=%s, want HV_CONNECTING / REQUESTED", out.State, out.HVCMState)
	}

	// BMS keeps reporting contactors open -- stays parked in HV_CONNECTING.
	out = m.Tick(in, nil)
	if out.State != vstate.HVConnecting {
		t.Fatalf("tick 4: State = %s, want still HV_CONNECTING while contactors report open", out.State)
	}

	in.BMSContState = 4 // BMS reports contactors closed
	out = m.Tick(in, nil)
	if out.State != vstate.Ready {
		t.Fatalf("tick 5: State = %s, want READY once contactors close", out.State)
	}
	if out.Trigger != vstate.TriggerHVCMConnected {
		t.Fatalf("tick 5: Trigger = %s, want hvcm_connected trigger", out.Trigger)
	}
	if out.QueuedState != vstate.Invalid {
		t.Fatalf("tick 5: QueuedState = %s, want INVALID (consumed)", out.QueuedState)
	}
	if !out.ReadyOut || !out.ConditionOut || !out.VcuOut {
		t.Fatalf("tick 5: outputs = %+v, want all asserted in READY", out)
	}
}

func TestIgnitionOffFromReadyGoesToConditioningAndQueuesDiagnose(t *testing.T) {
	m := driveToReady(t)

	in := baseInputs()
	in.IgnitionIn = false
	in.BMSContState = 4
	out := m.Tick(in, nil)
	if out.State != vstate.Conditioning {
		t.Fatalf("State = %s, want CONDITIONING", out.State)
	}
	if !out.DiagnosePending {
		t.Fatal("DiagnosePending not set on READY->CONDITIONING edge")
	}
	if !out.ReadyOut {
		t.Fatal("ReadyOut dropped immediately on the READY->CONDITIONING edge; should stay asserted while the diagnose timer runs")
	}
}

func TestManualStandbyFromReadyGoesThroughHVDisconnecting(t *testing.T) {
	m := driveToReady(t)

	in := baseInputs()
	in.IgnitionIn = true
	in.BMSContState = 4
	in.ManualStandbyMode = true
	out := m.Tick(in, nil)
	if out.State != vstate.HVDisconnecting || out.QueuedState != vstate.Standby {
		t.Fatalf("State=%s QueuedState=%s, want HV_DISCONNECTING queued STANDBY", out.State, out.QueuedState)
	}
}

func TestManualStandbyIgnoredDuringHVHandshake(t *testing.T) {
	m := NewMachine()
	in := baseInputs()
	in.IgnitionIn = true
	m.Tick(in, nil)        // SLEEP -> STANDBY
	out := m.Tick(in, nil) // STANDBY -> HV_CONNECTING
	if out.State != vstate.HVConnecting {
		t.Fatalf("setup: State = %s, want HV_CONNECTING", out.State)
	}

	in.ManualStandbyMode = true
	out = m.Tick(in, nil)
	if out.State != vstate.HVConnecting {
		t.Fatalf("State = %s, want still HV_CONNECTING (manual standby must not abandon an in-flight handshake)", out.State)
	}
}

func TestCriticalFaultFromReadyEntersErrorViaHVDisconnecting(t *testing.T) {
	m := driveToReady(t)

	in := baseInputs()
	in.IgnitionIn = true
	in.BMSContState = 4
	in.CriticalFault = true
	out := m.Tick(in, nil)
	if out.State != vstate.HVDisconnecting || out.QueuedState != vstate.Error {
		t.Fatalf("State=%s QueuedState=%s, want HV_DISCONNECTING queued ERROR", out.State, out.QueuedState)
	}
}

func TestHVCMFaultDuringConnectingEntersErrorDirectly(t *testing.T) {
	m := NewMachine()
	in := baseInputs()
	in.IgnitionIn = true
	m.Tick(in, nil) // SLEEP -> STANDBY
	m.Tick(in, nil) // STANDBY -> HV_CONNECTING

	var out Outputs
	for i := 0; i < timeoutTicksForTest()+2; i++ {
		out = m.Tick(in, nil) // BMS never reports closed -> HVCM times out to FAULT
	}
	if out.State != vstate.Error {
		t.Fatalf("State = %s, want ERROR once HVCM gives up and faults", out.State)
	}
	if out.QueuedState != vstate.Invalid {
		t.Fatalf("QueuedState = %s, want INVALID after fault consumes it", out.QueuedState)
	}
}

func TestReadyNotSetOnIgnitionRequiresContinuousLowWindow(t *testing.T) {
	m := NewMachine()
	in := baseInputs()
	in.IgnitionIn = true
	in.ReadySafetyIn = false

	var posted []errcode.Code
	post := func(c errcode.Code) { posted = append(posted, c) }

	for i := 0; i < readyDelayTicks-1; i++ {
		m.Tick(in, post)
	}
	// ready_safety_in recovers one tick before the window closes -- must
	// reset the continuously-low counter, not just suppress this instant.
	in.ReadySafetyIn = true
	m.Tick(in, post)
	in.ReadySafetyIn = false
	for i := 0; i < readyDelayTicks-1; i++ {
		m.Tick(in, post)
	}
	if len(posted) != 0 {
		t.Fatalf("posted = %v, want none (low window was interrupted)", posted)
	}

	m.Tick(in, post) // completes a fresh, uninterrupted readyDelayTicks window
	if len(posted) != 1 || posted[0] != errcode.ReadyNotSetOnIgnition {
		t.Fatalf("posted = %v, want exactly [ReadyNotSetOnIgnition]", posted)
	}

	// Must not repost on every subsequent tick while still low.
	m.Tick(in, post)
	m.Tick(in, post)
	if len(posted) != 1 {
		t.Fatalf("posted = %v, want still exactly one post (latched)", posted)
	}
}

// timeoutTicksForTest mirrors hvcm's internal timeout constant without
// exporting it -- the manager is a black box to lvdu too.
func timeoutTicksForTest() int { return 100 }

// driveToReady advances a fresh Machine from SLEEP to READY using the
// same tick sequence TestSleepToStandbyToHVConnectingToReady verifies.
func driveToReady(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine()
	in := baseInputs()
	in.IgnitionIn = true
	m.Tick(in, nil)
	m.Tick(in, nil)
	m.Tick(in, nil)
	in.BMSContState = 4
	out := m.Tick(in, nil)
	if out.State != vstate.Ready {
		t.Fatalf("driveToReady: State = %s, want READY", out.State)
	}
	return m
}
