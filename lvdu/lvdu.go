// Package lvdu implements the vehicle state machine: the ten-state
// top-level machine that owns diagnose/force-standby/force-sleep/
// standby-idle timers, the ready-relay diagnosis, and the HV-handshake
// queued-state handshake with the HV contactor manager. Ticks at 100 ms.
//
// Grounded on original_source/include/lvdu.h's Task10Ms method split
// (UpdateInputs/UpdateState/HandleReadyDiagnosis/UpdateOutputs/
// UpdateParams), extended per the richer transition table with the HV
// contactor manager, queued_state, a diagnose cooldown and
// charge_finished_latched that the original file's earlier iteration
// did not yet have. Machine never touches a shared parameter table
// itself -- it is handed its Inputs and returns its Outputs, exactly
// like hvcm.Manager, and an owner wires those to the parameter store.
package lvdu

import (
	"lvducore/errcode"
	"lvducore/hvcm"
	"lvducore/iohal"
	"lvducore/vstate"
)

const tickMs = 100

const (
	standbyIdleTicks      = 100 // 10 s
	forceDelayTicks       = 200 // 20 s
	diagnoseTicks         = 40  // 4 s
	diagnoseCooldownTicks = 2   // 200 ms
	readyDelayTicks       = 20  // 2 s
	readySafetyLowTicks   = 5   // 500 ms
)

// Inputs sampled fresh each Tick.
type Inputs struct {
	IgnitionIn           bool
	ReadySafetyIn        bool
	RawDCPowerMilliVolts int32
	LV12vLowThreshold    float32
	HVLowThreshold       float32

	BMSDataValid       bool
	BMSContState       int32
	BMSPackVoltage     float32
	BMSBalancingActive bool
	BMSActualCurrent   float32

	ChargeDoneCurrent float32
	ChargeDoneDelayS  int32

	ChargerPlugStatus   int32
	ChargerPlugOverride bool

	ManualStandbyMode         bool
	RemotePreconditionRequest bool
	ThermalTaskCompleted      bool
	CriticalFault             bool
	DegradedFault             bool
	DriveRequest              bool

	DCDCInputPowerOffConfirmed bool
	HeaterOffConfirmed         bool
}

// Outputs to drive/publish.
type Outputs struct {
	State           vstate.VehicleState
	QueuedState     vstate.VehicleState
	Trigger         vstate.TriggerEvent
	PrevState       vstate.VehicleState
	PrevTrigger     vstate.TriggerEvent
	PrevPrevState   vstate.VehicleState
	PrevPrevTrigger vstate.TriggerEvent

	Voltage12V float32

	VcuOut          bool
	ConditionOut    bool
	ReadyOut        bool
	DiagnosePending bool

	HVCMState                 hvcm.State
	HVCMToBMSHVRequest        bool
	HVComfortFunctionsAllowed bool

	ChargeFinishedLatched bool
}

// Machine owns the top-level vehicle state, its HV contactor manager,
// and every timer/latch described by the component design.
type Machine struct {
	hv hvcm.Manager

	state, prevState, prevPrevState       vstate.VehicleState
	trigger, prevTrigger, prevPrevTrigger vstate.TriggerEvent
	queuedState                           vstate.VehicleState

	diagnosePending        bool
	diagnoseTimer          uint32
	diagnoseCooldownActive bool
	diagnoseCooldownTimer  uint32
	readySetDelayTimer     uint32
	readyNotSetPosted      bool
	readySafetyLowTimer    uint32

	forceStandbyActive bool
	forceStandbyTimer  uint32
	forceSleepActive   bool
	forceSleepTimer    uint32
	standbyIdleTimer   uint32

	chargeFinishedLatched bool
	chargeDoneTimer       uint32
	wasPlugged            bool
}

// NewMachine returns a Machine booted into SLEEP, matching the
// parameter table's compiled-in default for LVDU_vehicle_state.
func NewMachine() *Machine {
	return &Machine{
		state:         vstate.Sleep,
		prevState:     vstate.Sleep,
		prevPrevState: vstate.Sleep,
	}
}

// HVCMState reports the embedded HV contactor manager's current state,
// for callers (e.g. a CAN status frame encoder) that need it between
// ticks.
func (m *Machine) HVCMState() hvcm.State { return m.hv.State() }

// Tick advances the machine by one 100 ms step. Internal ordering
// matches the component design: sample/derive predicates, advance the
// HV contactor manager (so this tick's FSM evaluation observes the
// fresh HVCM state), evaluate the vehicle FSM, evaluate the
// force-standby/force-sleep timers, run the ready-relay diagnosis, then
// assemble outputs.
func (m *Machine) Tick(in Inputs, post func(errcode.Code)) Outputs {
	voltage12V := iohal.MilliVoltsToVolts(in.RawDCPowerMilliVolts)
	hvTooLow := in.BMSDataValid && in.BMSPackVoltage < in.HVLowThreshold
	lvTooLow := voltage12V < in.LV12vLowThreshold
	pluggedEffective := in.ChargerPlugStatus > 1 && !in.ChargerPlugOverride

	if m.wasPlugged && !pluggedEffective {
		m.chargeFinishedLatched = false
	}
	m.wasPlugged = pluggedEffective

	chargeFinished := m.updateChargeFinished(in)
	m.updateReadySafetyLowTimer(in)

	hvOut := m.hv.Update(hvcm.Inputs{
		BMSDataValid:               in.BMSDataValid,
		BMSContState:               in.BMSContState,
		DCDCInputPowerOffConfirmed: in.DCDCInputPowerOffConfirmed,
		HeaterOffConfirmed:         in.HeaterOffConfirmed,
	}, post)

	m.evaluateState(in, pluggedEffective, chargeFinished, lvTooLow)
	m.evaluateForceTimers(hvTooLow, lvTooLow)
	m.handleReadyDiagnosis(in, post)

	vcu, condition, ready := outputsFor(m.state, m.diagnosePending)

	return Outputs{
		State:           m.state,
		QueuedState:     m.queuedState,
		Trigger:         m.trigger,
		PrevState:       m.prevState,
		PrevTrigger:     m.prevTrigger,
		PrevPrevState:   m.prevPrevState,
		PrevPrevTrigger: m.prevPrevTrigger,

		Voltage12V: voltage12V,

		VcuOut:          vcu,
		ConditionOut:    condition,
		ReadyOut:        ready,
		DiagnosePending: m.diagnosePending,

		HVCMState:                 hvOut.State,
		HVCMToBMSHVRequest:        hvOut.ToBMSHVRequest,
		HVComfortFunctionsAllowed: hvOut.State == hvcm.Connected,

		ChargeFinishedLatched: m.chargeFinishedLatched,
	}
}

func (m *Machine) updateChargeFinished(in Inputs) bool {
	if in.ChargeDoneDelayS <= 0 {
		return true
	}
	current := in.BMSActualCurrent
	if current < 0 {
		current = -current
	}
	target := uint32(in.ChargeDoneDelayS) * 10 // seconds -> 100 ms ticks
	if current < in.ChargeDoneCurrent {
		if m.chargeDoneTimer < target {
			m.chargeDoneTimer++
		}
	} else {
		m.chargeDoneTimer = 0
	}
	return m.chargeDoneTimer >= target
}

func (m *Machine) updateReadySafetyLowTimer(in Inputs) {
	if in.ReadySafetyIn {
		m.readySafetyLowTimer = 0
		return
	}
	if m.readySafetyLowTimer < readySafetyLowTicks {
		m.readySafetyLowTimer++
	}
}

func (m *Machine) evaluateState(in Inputs, pluggedEffective, chargeFinished, lvTooLow bool) {
	// A manual standby request is honored in any state except one
	// already settled on STANDBY or mid HV-handshake -- abandoning a
	// handshake in flight would violate the HVCM/state coupling
	// invariant, so HV_CONNECTING/HV_DISCONNECTING are excluded too.
	if in.ManualStandbyMode &&
		m.state != vstate.Standby &&
		m.state != vstate.HVConnecting &&
		m.state != vstate.HVDisconnecting {
		if m.state.HVConsumer() {
			m.enterHVDisconnecting(vstate.Standby, vstate.TriggerManualStandby)
		} else {
			m.transitionTo(vstate.Standby, vstate.TriggerManualStandby)
		}
		return
	}

	switch m.state {
	case vstate.Sleep:
		m.transitionTo(vstate.Standby, vstate.TriggerNone)

	case vstate.Standby:
		switch {
		case in.IgnitionIn && !pluggedEffective:
			m.enterHVConnecting(vstate.Ready, vstate.TriggerIgnitionOn)
		case in.RemotePreconditionRequest:
			m.enterHVConnecting(vstate.Conditioning, vstate.TriggerPreconditionRequest)
		case pluggedEffective:
			m.enterHVConnecting(vstate.Charge, vstate.TriggerPlugged)
		case in.BMSBalancingActive:
			if !in.BMSDataValid || lvTooLow {
				m.transitionTo(vstate.Sleep, vstate.TriggerBalancingLVDrop)
			}
		default:
			if m.standbyIdleTimer < standbyIdleTicks {
				m.standbyIdleTimer++
			}
			if m.standbyIdleTimer >= standbyIdleTicks {
				m.transitionTo(vstate.Sleep, vstate.TriggerStandbyIdleTimeout)
			}
		}

	case vstate.HVConnecting:
		switch m.hv.State() {
		case hvcm.Connected:
			target := m.queuedState
			m.queuedState = vstate.Invalid
			m.transitionTo(target, vstate.TriggerHVCMConnected)
		case hvcm.Fault:
			m.queuedState = vstate.Invalid
			m.transitionTo(vstate.Error, vstate.TriggerHVCMFault)
		}

	case vstate.HVDisconnecting:
		switch m.hv.State() {
		case hvcm.Disconnected:
			target := m.queuedState
			m.queuedState = vstate.Invalid
			m.transitionTo(target, vstate.TriggerHVCMDisconnected)
		case hvcm.Fault:
			m.queuedState = vstate.Invalid
			m.transitionTo(vstate.Error, vstate.TriggerHVCMFault)
		}

	case vstate.Ready:
		switch {
		case !in.IgnitionIn:
			m.transitionTo(vstate.Conditioning, vstate.TriggerIgnitionOff)
		case in.DriveRequest:
			m.transitionTo(vstate.Drive, vstate.TriggerDriveRequest)
		case pluggedEffective:
			m.transitionTo(vstate.Charge, vstate.TriggerPlugged)
		case in.CriticalFault:
			m.enterHVDisconnecting(vstate.Error, vstate.TriggerCriticalFault)
		}

	case vstate.Conditioning:
		switch {
		case in.CriticalFault:
			m.enterHVDisconnecting(vstate.Error, vstate.TriggerCriticalFault)
		case in.IgnitionIn:
			m.transitionTo(vstate.Ready, vstate.TriggerIgnitionOn)
		case pluggedEffective && !m.chargeFinishedLatched:
			m.transitionTo(vstate.Charge, vstate.TriggerPlugged)
		case in.ThermalTaskCompleted && !m.diagnosePending && m.readySafetyLowTimer >= readySafetyLowTicks:
			m.enterHVDisconnecting(vstate.Standby, vstate.TriggerThermalDone)
		}

	case vstate.Drive:
		switch {
		case !in.IgnitionIn:
			m.transitionTo(vstate.Conditioning, vstate.TriggerIgnitionOff)
		case pluggedEffective:
			m.transitionTo(vstate.Charge, vstate.TriggerPlugged)
		case in.DegradedFault:
			m.transitionTo(vstate.LimpHome, vstate.TriggerDegradedFault)
		}

	case vstate.Charge:
		switch {
		case in.CriticalFault:
			m.enterHVDisconnecting(vstate.Error, vstate.TriggerCriticalFault)
		case !pluggedEffective && in.IgnitionIn:
			m.transitionTo(vstate.Ready, vstate.TriggerUnplugged)
		case chargeFinished && !in.IgnitionIn:
			m.chargeFinishedLatched = true
			m.transitionTo(vstate.Conditioning, vstate.TriggerChargeFinished)
		}

	case vstate.LimpHome:
		switch {
		case !in.IgnitionIn:
			m.transitionTo(vstate.Conditioning, vstate.TriggerIgnitionOff)
		case pluggedEffective:
			m.transitionTo(vstate.Charge, vstate.TriggerPlugged)
		}

	case vstate.Error:
		if !in.IgnitionIn {
			m.enterHVDisconnecting(vstate.Sleep, vstate.TriggerIgnitionOff)
		}
	}
}

func (m *Machine) evaluateForceTimers(hvTooLow, lvTooLow bool) {
	if (m.state == vstate.Ready || m.state == vstate.Conditioning) && hvTooLow {
		m.forceStandbyActive = true
	} else {
		m.forceStandbyActive = false
		m.forceStandbyTimer = 0
	}
	if m.forceStandbyActive {
		m.forceStandbyTimer++
		if m.forceStandbyTimer >= forceDelayTicks {
			m.forceStandbyActive = false
			m.forceStandbyTimer = 0
			m.enterHVDisconnecting(vstate.Standby, vstate.TriggerHVTooLow)
		}
	}

	if (m.state == vstate.Standby || m.state == vstate.Error) && lvTooLow {
		m.forceSleepActive = true
	} else {
		m.forceSleepActive = false
		m.forceSleepTimer = 0
	}
	if m.forceSleepActive {
		m.forceSleepTimer++
		if m.forceSleepTimer >= forceDelayTicks {
			m.forceSleepActive = false
			m.forceSleepTimer = 0
			m.transitionTo(vstate.Sleep, vstate.TriggerLVTooLow)
		}
	}
}

func (m *Machine) handleReadyDiagnosis(in Inputs, post func(errcode.Code)) {
	if in.IgnitionIn {
		if in.ReadySafetyIn {
			// Any rising edge resets the continuously-low window -- a
			// ready signal that arrives late (or drops out and comes back)
			// must not count toward the 2 s diagnosis.
			m.readySetDelayTimer = 0
			m.readyNotSetPosted = false
			return
		}
		if !m.readyNotSetPosted && m.readySetDelayTimer < readyDelayTicks {
			m.readySetDelayTimer++
			if m.readySetDelayTimer == readyDelayTicks {
				m.readyNotSetPosted = true
				if post != nil {
					post(errcode.ReadyNotSetOnIgnition)
				}
			}
		}
		return
	}
	m.readySetDelayTimer = 0
	m.readyNotSetPosted = false

	if m.diagnosePending {
		if m.diagnoseTimer > 0 {
			m.diagnoseTimer--
			if !in.ReadySafetyIn && post != nil {
				post(errcode.ReadyDroppedDuringDiagnose)
			}
			return
		}
		m.diagnosePending = false
		m.diagnoseCooldownActive = true
		m.diagnoseCooldownTimer = diagnoseCooldownTicks
		return
	}

	if m.diagnoseCooldownActive {
		if m.diagnoseCooldownTimer > 0 {
			m.diagnoseCooldownTimer--
			return
		}
		m.diagnoseCooldownActive = false
	}

	if in.ReadySafetyIn && post != nil {
		post(errcode.ReadyStuckOnIgnitionOff)
	}
}

func (m *Machine) transitionTo(next vstate.VehicleState, trig vstate.TriggerEvent) {
	prev := m.state
	m.prevPrevState, m.prevPrevTrigger = m.prevState, m.prevTrigger
	m.prevState, m.prevTrigger = prev, m.trigger
	m.state = next
	m.trigger = trig

	if prev == vstate.Standby {
		m.standbyIdleTimer = 0
	}
	if prev == vstate.Ready && next == vstate.Conditioning {
		m.diagnosePending = true
		m.diagnoseTimer = diagnoseTicks
		m.diagnoseCooldownActive = false
		m.diagnoseCooldownTimer = 0
	}
}

func (m *Machine) enterHVConnecting(target vstate.VehicleState, trig vstate.TriggerEvent) {
	m.queuedState = target
	m.transitionTo(vstate.HVConnecting, trig)
	m.hv.SetRequest(true)
}

func (m *Machine) enterHVDisconnecting(target vstate.VehicleState, trig vstate.TriggerEvent) {
	m.queuedState = target
	m.transitionTo(vstate.HVDisconnecting, trig)
	m.hv.SetRequest(false)
}

func outputsFor(state vstate.VehicleState, diagnosePending bool) (vcu, condition, ready bool) {
	switch state {
	case vstate.Sleep:
		return false, false, false
	case vstate.Standby:
		return true, false, false
	case vstate.HVConnecting, vstate.HVDisconnecting:
		return true, true, false
	case vstate.Ready:
		return true, true, true
	case vstate.Conditioning:
		return true, true, diagnosePending
	case vstate.Drive:
		return true, true, true
	case vstate.Charge:
		return true, true, false
	case vstate.Error:
		return true, false, false
	case vstate.LimpHome:
		return true, true, true
	default:
		return false, false, false
	}
}
