// Package hvcm implements the HV contactor manager: a six-state
// sub-machine that sequences HV contactor closure/opening with the BMS,
// each waiting state (REQUESTED, CONNECTED_STOP_CONSUMERS,
// OPEN_CONTACTORS) guarded by a 10 s (100-tick) timeout.
//
// Manager never touches the parameter store directly -- read/publish
// goes through the owner (lvdu.Machine), mirroring
// services/hal/types.go's Adaptor contract ("must NOT touch the bus or
// spawn goroutines"): the manager is handed its inputs and returns its
// outputs, and the caller is responsible for wiring those to param.
package hvcm

import "lvducore/errcode"

// State is one of the six HVCM states.
type State int

const (
	Disconnected State = iota
	Requested
	Connected
	ConnectedStopConsumers
	OpenContactors
	Fault
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Requested:
		return "REQUESTED"
	case Connected:
		return "CONNECTED"
	case ConnectedStopConsumers:
		return "CONNECTED_STOP_CONSUMERS"
	case OpenContactors:
		return "OPEN_CONTACTORS"
	case Fault:
		return "FAULT"
	default:
		return "UNKNOWN"
	}
}

// timeoutTicks is the per-state timeout: 10 s at the 100 ms tick rate the
// owner calls Update at.
const timeoutTicks = 100

// Inputs are sampled fresh by the caller each Update call.
type Inputs struct {
	BMSDataValid               bool
	BMSContState               int32
	DCDCInputPowerOffConfirmed bool
	HeaterOffConfirmed         bool
}

// Outputs are what the caller publishes into the parameter store.
type Outputs struct {
	State          State
	ToBMSHVRequest bool
}

// Manager owns the sub-machine's private state: the current State and its
// elapsed-ticks-in-state counter. The zero value starts in Disconnected
// with a zeroed counter, which is the correct boot state.
type Manager struct {
	state   State
	elapsed uint32
	request bool
}

// State returns the current state.
func (m *Manager) State() State { return m.state }

// SetRequest is idempotent: repeated calls with the same value are no-ops
// from the state machine's point of view. Update reads the stored request
// level on every call, so a request left set still drives DISCONNECTED to
// REQUESTED on the next Update.
func (m *Manager) SetRequest(req bool) { m.request = req }

func (m *Manager) setState(s State) {
	m.state = s
	m.elapsed = 0
}

// Update advances the sub-machine by one 100 ms tick. post is called
// with a code to post on a timeout transition to FAULT; pass nil to
// discard (tests may do this safely since Fault/timeout cases are few).
func (m *Manager) Update(in Inputs, post func(errcode.Code)) Outputs {
	hvClosed := in.BMSDataValid && in.BMSContState == 4
	hvOpen := in.BMSDataValid && in.BMSContState == 1

	switch m.state {
	case Disconnected:
		if m.request {
			m.setState(Requested)
		}

	case Requested:
		switch {
		case hvClosed:
			m.setState(Connected)
		case m.elapsed >= timeoutTicks:
			if post != nil {
				post(errcode.HVContactorTimeoutClosing)
			}
			m.setState(Fault)
		}

	case Connected:
		if !m.request {
			m.setState(ConnectedStopConsumers)
		}

	case ConnectedStopConsumers:
		switch {
		case in.DCDCInputPowerOffConfirmed && in.HeaterOffConfirmed:
			m.setState(OpenContactors)
		case m.elapsed >= timeoutTicks:
			if post != nil {
				post(errcode.HVContactorTimeoutStopConsumers)
			}
			m.setState(Fault)
		}

	case OpenContactors:
		switch {
		case hvOpen:
			m.setState(Disconnected)
		case m.elapsed >= timeoutTicks:
			if post != nil {
				post(errcode.HVContactorTimeoutOpening)
			}
			m.setState(Fault)
		}

	case Fault:
		// terminal; only a power cycle (a fresh Manager) clears it.
	}

	// elapsed counts completed Update calls in the current state,
	// including the call that entered it: it increments here
	// unconditionally, after the timeout comparison above, so a state
	// entered on tick N compares elapsed == k on tick N+k and times out on
	// tick N+timeoutTicks.
	m.elapsed++

	return Outputs{
		State:          m.state,
		ToBMSHVRequest: m.state == Requested || m.state == Connected || m.state == ConnectedStopConsumers,
	}
}
