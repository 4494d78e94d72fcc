// Package eps implements the electric power steering enable sequencer:
// a two-step ignition-then-spoolup ramp gated on DC/DC health and
// vehicle state. Ticks at 100 ms.
//
// The rising-edge-triggered latch with a one-shot fault gate checked
// only at the edge (not on every subsequent tick) is grounded on
// original_source/include/eps.h's Task100Ms -- EPS_FAULT is entered only
// when the vehicle state transitions into a traction-active state while
// dcdc_fault_any is already set, exactly as the original's lastState
// edge check does.
package eps

import (
	"lvducore/errcode"
	"lvducore/vstate"
	"lvducore/x/mathx"
)

// State is one of the four EPS states.
type State int

const (
	Off State = iota
	SpoolUp
	On
	Fault
)

func (s State) String() string {
	switch s {
	case Off:
		return "OFF"
	case SpoolUp:
		return "SPOOL_UP"
	case On:
		return "ON"
	case Fault:
		return "FAULT"
	default:
		return "UNKNOWN"
	}
}

const tickMs = 100

// Inputs sampled fresh each Tick.
type Inputs struct {
	State             vstate.VehicleState
	DCDCFaultAny      bool
	DCDCOutputVoltage float32
	SpoolupDelayMs    int32
}

// Outputs to drive/publish.
type Outputs struct {
	State       State
	IgnitionOut bool
	StartupOut  bool
}

// Controller owns the spool-up ramp counter, the current state, and
// whether the state has already been decided for the current
// traction-active span (armed).
type Controller struct {
	state        State
	spoolupTicks uint32
	armed        bool
}

// Tick advances the controller by one 100 ms step.
func (c *Controller) Tick(in Inputs, post func(errcode.Code)) Outputs {
	if !in.State.TractionActive() {
		c.state = Off
		c.spoolupTicks = 0
		c.armed = false
		return Outputs{State: Off}
	}

	if !c.armed {
		if in.DCDCFaultAny {
			c.armed = true
			c.spoolupTicks = 0
			c.state = Fault
			if post != nil {
				post(errcode.EPSStartupDCDCFault)
			}
			return Outputs{State: Fault}
		}
		if in.DCDCOutputVoltage <= 9.0 {
			// Rail not yet healthy -- stay OFF and re-check next tick
			// without arming, so the OFF->active edge only fires once the
			// full active condition holds. Arming here would latch a
			// pulsed IgnitionOut every time the later voltage gate below
			// knocks the controller back to OFF.
			c.state = Off
			return Outputs{State: Off}
		}
		c.armed = true
		c.spoolupTicks = 0
		c.state = SpoolUp
		return Outputs{State: SpoolUp, IgnitionOut: true}
	}

	if c.state == Fault {
		// Persists for the rest of this traction-active span; original
		// source only re-evaluates on the OFF->active edge.
		return Outputs{State: Fault}
	}

	if in.DCDCFaultAny || in.DCDCOutputVoltage <= 9.0 {
		c.state = Off
		c.spoolupTicks = 0
		c.armed = false
		return Outputs{State: Off}
	}

	switch c.state {
	case SpoolUp:
		delaySteps := uint32(ticksFromMs(in.SpoolupDelayMs))
		c.spoolupTicks++
		if c.spoolupTicks >= delaySteps {
			c.state = On
		}
		return Outputs{State: c.state, IgnitionOut: true, StartupOut: c.state == On}
	case On:
		return Outputs{State: On, IgnitionOut: true, StartupOut: true}
	default:
		return Outputs{State: Off}
	}
}

func ticksFromMs(ms int32) int32 {
	if ms <= 0 {
		return 0
	}
	return int32(mathx.CeilDiv(uint32(ms), uint32(tickMs)))
}
