// Package heater implements the cabin/battery heater contactor
// controller: an on-delay gated by thermal-switch closure, a debounced
// contactor-feedback diagnosis, two thermal-switch timeout diagnoses,
// and a boot check. Ticks at 10 ms.
//
// Grounded on original_source/include/heater.h's Task10Ms/
// DiagnoseContactor/DiagnoseThermalSwitch split: the same four
// independent pieces (run condition, on-delay, contactor-feedback
// debounce, thermal-switch timeouts) computed every tick in the same
// order, translated from free parameter globals into an explicit
// Inputs struct and fault fields on Controller.
package heater

import (
	"lvducore/vstate"
	"lvducore/x/mathx"
)

const tickMs = 10

// contactorFaultDebounceTicks is the 20 ms debounce window from the
// original's CONTACTOR_FAULT_DEBOUNCE_COUNT (2 x 10 ms).
const contactorFaultDebounceTicks = 2

// ContactorFault is the latched contactor-feedback diagnosis value.
type ContactorFault int32

const (
	ContactorFaultNone      ContactorFault = 0
	ContactorFaultStuckOpen ContactorFault = 1
	ContactorFaultWelded    ContactorFault = 2
)

// Inputs sampled fresh each Tick.
type Inputs struct {
	State                     vstate.VehicleState
	HVComfortFunctionsAllowed bool
	FlapRaw                   int32
	FlapThreshold             int32
	ManualOverride            bool
	ThermalSwitchClosed       bool // true = HIGH = OK/closed
	ContactorFeedbackClosed   bool
	ContactorOnDelayMs        int32
	ThermalOpenTimeoutS       int32
	ThermalCloseTimeoutS      int32
}

// Outputs to drive/publish.
type Outputs struct {
	ContactorOut            bool
	Active                  bool
	ContactorFault          ContactorFault
	ThermalSwitchBootFault  bool
	ThermalDoesNotOpenFault bool
	ThermalOverheatFault    bool
}

// Controller owns every timer and latch; latched faults survive until a
// new Controller is constructed (power cycle), matching the spec's
// "cleared only by power cycle".
type Controller struct {
	bootChecked      bool
	bootFault        bool
	contactorFault   ContactorFault
	openDoesNotFault bool
	overheatFault    bool

	onFaultTicks  uint32
	offFaultTicks uint32
	openTimer     uint32
	closeTimer    uint32
	onDelayTimer  uint32

	thermalWasOpen bool
	active         bool
}

// NewController returns a Controller ready to run its first tick; the
// boot fault is latched on the first call to Tick, mirroring the
// original's lazy thermal_switch_boot_checked flag.
func NewController() *Controller {
	return &Controller{thermalWasOpen: true}
}

// Tick advances the controller by one 10 ms step.
func (c *Controller) Tick(in Inputs) Outputs {
	if !c.bootChecked {
		if !in.ThermalSwitchClosed {
			c.bootFault = true
		}
		c.bootChecked = true
	}

	c.diagnoseContactor(in)
	c.diagnoseThermalSwitch(in)

	faultPresent := c.bootFault || c.contactorFault != ContactorFaultNone ||
		c.openDoesNotFault || c.overheatFault

	shouldRun := in.ManualOverride || in.FlapRaw > in.FlapThreshold

	if in.ThermalSwitchClosed && c.thermalWasOpen {
		c.onDelayTimer = 0
	}
	c.thermalWasOpen = !in.ThermalSwitchClosed

	lvduOK := in.State.HeaterAllowedState()

	if in.HVComfortFunctionsAllowed && lvduOK && !faultPresent && shouldRun {
		if in.ThermalSwitchClosed {
			delayTicks := uint32(ticksFromMs(in.ContactorOnDelayMs))
			if c.onDelayTimer < delayTicks {
				c.onDelayTimer++
			}
			if c.onDelayTimer >= delayTicks {
				c.active = true
			} else {
				c.active = false
			}
		} else {
			c.onDelayTimer = 0
			c.active = false
		}
	} else {
		c.onDelayTimer = 0
		c.active = false
	}

	return Outputs{
		ContactorOut:            c.active,
		Active:                  c.active,
		ContactorFault:          c.contactorFault,
		ThermalSwitchBootFault:  c.bootFault,
		ThermalDoesNotOpenFault: c.openDoesNotFault,
		ThermalOverheatFault:    c.overheatFault,
	}
}

func (c *Controller) diagnoseContactor(in Inputs) {
	cmdOn := c.active

	if cmdOn && !in.ContactorFeedbackClosed && in.ThermalSwitchClosed {
		c.onFaultTicks++
		if c.onFaultTicks >= contactorFaultDebounceTicks {
			c.contactorFault = ContactorFaultStuckOpen
		}
	} else {
		c.onFaultTicks = 0
	}

	if !cmdOn && in.ContactorFeedbackClosed {
		c.offFaultTicks++
		if c.offFaultTicks >= contactorFaultDebounceTicks {
			c.contactorFault = ContactorFaultWelded
		}
	} else {
		c.offFaultTicks = 0
	}
}

func (c *Controller) diagnoseThermalSwitch(in Inputs) {
	openTimeoutTicks := uint32(in.ThermalOpenTimeoutS) * 1000 / tickMs
	closeTimeoutTicks := uint32(in.ThermalCloseTimeoutS) * 1000 / tickMs

	if c.active && in.ThermalSwitchClosed {
		c.openTimer++
		if openTimeoutTicks > 0 && c.openTimer >= openTimeoutTicks {
			c.openDoesNotFault = true
		}
	} else {
		c.openTimer = 0
	}

	if !c.active && !in.ThermalSwitchClosed {
		c.closeTimer++
		if closeTimeoutTicks > 0 && c.closeTimer >= closeTimeoutTicks {
			c.overheatFault = true
		}
	} else {
		c.closeTimer = 0
	}
}

func ticksFromMs(ms int32) int32 {
	if ms <= 0 {
		return 0
	}
	return int32(mathx.CeilDiv(uint32(ms), uint32(tickMs)))
}
