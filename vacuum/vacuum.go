// Package vacuum implements the vacuum pump controller: hysteretic
// bang-bang on a vacuum-ok sensor, with an independent
// insufficient-vacuum warning timeout. Ticks at 10 ms.
//
// The hysteresis/latch shape is grounded on the repo root main.go's
// power-good debounce-then-latch idiom (PG_ON_VIN/PG_OFF_HYST/
// DEBOUNCE_OK): assert immediately on the "bad" edge, de-assert only
// after N ticks of "good" -- here applied to a boolean sensor instead of
// a voltage threshold.
package vacuum

import (
	"lvducore/errcode"
	"lvducore/vstate"
	"lvducore/x/mathx"
)

const tickMs = 10

// Inputs sampled fresh each Tick.
type Inputs struct {
	State          vstate.VehicleState
	VacuumOK       bool
	HysteresisMs   int32
	WarningDelayMs int32
}

// Outputs to drive/publish.
type Outputs struct {
	PumpOn       bool
	Insufficient bool
}

// Controller owns its own hysteresis and warning timers.
type Controller struct {
	pumpOn       bool
	offHystTicks uint32 // ticks of continuous vacuum_ok=1 while pump is on
	badTicks     uint32 // ticks of continuous vacuum_ok=0
	insufficient bool
}

// Tick advances the controller by one 10 ms step.
func (c *Controller) Tick(in Inputs, post func(errcode.Code)) Outputs {
	if !in.State.TractionActive() {
		c.pumpOn = false
		c.offHystTicks = 0
		c.badTicks = 0
		if c.insufficient {
			c.insufficient = false
		}
		return Outputs{}
	}

	if !in.VacuumOK {
		c.pumpOn = true
		c.offHystTicks = 0
		c.badTicks++
	} else {
		c.badTicks = 0
		if c.insufficient {
			c.insufficient = false
		}
		if c.pumpOn {
			c.offHystTicks++
			hystTicks := uint32(msToTicks(in.HysteresisMs))
			if c.offHystTicks >= hystTicks {
				c.pumpOn = false
			}
		}
	}

	warnTicks := uint32(msToTicks(in.WarningDelayMs))
	if warnTicks > 0 && c.badTicks >= warnTicks && !c.insufficient {
		c.insufficient = true
		if post != nil {
			post(errcode.VacuumInsufficient)
		}
	}

	return Outputs{PumpOn: c.pumpOn, Insufficient: c.insufficient}
}

func msToTicks(ms int32) int32 {
	if ms <= 0 {
		return 0
	}
	return int32(mathx.CeilDiv(uint32(ms), uint32(tickMs)))
}
