package eps

import (
	"testing"

	"lvducore/errcode"
	"lvducore/vstate"
)

func baseInputs() Inputs {
	return Inputs{
		State:             vstate.Ready,
		DCDCFaultAny:      false,
		DCDCOutputVoltage: 14.0,
		SpoolupDelayMs:    300, // 3 ticks at 100ms
	}
}

func TestOffWhenNotTractionActive(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.State = vstate.Standby

	out := c.Tick(in, nil)
	if out.State != Off || out.IgnitionOut || out.StartupOut {
		t.Fatalf("out = %+v, want all-zero Off", out)
	}
}

func TestEntersSpoolUpOnRisingEdge(t *testing.T) {
	var c Controller
	out := c.Tick(baseInputs(), nil)
	if out.State != SpoolUp || !out.IgnitionOut || out.StartupOut {
		t.Fatalf("out = %+v, want SpoolUp with IgnitionOut only", out)
	}
}

func TestSpoolUpReachesOnAfterDelay(t *testing.T) {
	var c Controller
	in := baseInputs()
	c.Tick(in, nil) // edge -> SpoolUp

	delayTicks := int(ticksFromMs(in.SpoolupDelayMs))
	var out Outputs
	for i := 0; i < delayTicks-1; i++ {
		out = c.Tick(in, nil)
		if out.State != SpoolUp || out.StartupOut {
			t.Fatalf("tick %d: out = %+v, want still SpoolUp without StartupOut", i, out)
		}
	}
	out = c.Tick(in, nil)
	if out.State != On || !out.IgnitionOut || !out.StartupOut {
		t.Fatalf("out = %+v, want On with both outputs asserted", out)
	}
}

func TestFaultOnEdgeWhenDCDCAlreadyFaulted(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = true

	var posted []errcode.Code
	out := c.Tick(in, func(code errcode.Code) { posted = append(posted, code) })
	if out.State != Fault {
		t.Fatalf("out.State = %s, want Fault", out.State)
	}
	if len(posted) != 1 || posted[0] != errcode.EPSStartupDCDCFault {
		t.Fatalf("posted = %v, want exactly one EPSStartupDCDCFault", posted)
	}
}

func TestFaultPersistsForRestOfSpanDespiteDCDCRecovering(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = true
	c.Tick(in, nil) // edge -> Fault

	in.DCDCFaultAny = false // DC/DC recovers mid-span
	out := c.Tick(in, nil)
	if out.State != Fault {
		t.Fatalf("out.State = %s, want Fault to persist for the span", out.State)
	}
}

func TestFaultDoesNotPostAgainWithinSameSpan(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = true

	var posted []errcode.Code
	post := func(code errcode.Code) { posted = append(posted, code) }
	c.Tick(in, post)
	c.Tick(in, post)
	c.Tick(in, post)
	if len(posted) != 1 {
		t.Fatalf("post called %d times across one fault span, want 1", len(posted))
	}
}

func TestFaultReevaluatedOnNextSpan(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = true
	c.Tick(in, nil) // span 1 -> Fault

	in.State = vstate.Standby
	c.Tick(in, nil) // span ends

	in.State = vstate.Ready
	in.DCDCFaultAny = false
	out := c.Tick(in, nil) // span 2, edge re-armed
	if out.State != SpoolUp {
		t.Fatalf("out.State = %s, want SpoolUp on fresh span with no fault", out.State)
	}
}

func TestStaysOffOnRisingEdgeWithHealthyFlagButLowVoltage(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = false
	in.DCDCOutputVoltage = 8.0 // rail still ramping, no fault flag set

	out := c.Tick(in, nil)
	if out.State != Off || out.IgnitionOut || out.StartupOut {
		t.Fatalf("out = %+v, want all-zero Off while rail is below 9V even with no fault flag", out)
	}
}

func TestDoesNotPulseIgnitionWhileVoltageStaysLow(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = false
	in.DCDCOutputVoltage = 8.0

	for i := 0; i < 5; i++ {
		out := c.Tick(in, nil)
		if out.IgnitionOut {
			t.Fatalf("tick %d: IgnitionOut = true, want it to never assert while voltage stays <= 9V", i)
		}
	}
}

func TestArmsOnceVoltageRecoversAfterLowStart(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.DCDCFaultAny = false
	in.DCDCOutputVoltage = 8.0
	c.Tick(in, nil)
	c.Tick(in, nil)

	in.DCDCOutputVoltage = 14.0
	out := c.Tick(in, nil)
	if out.State != SpoolUp || !out.IgnitionOut {
		t.Fatalf("out = %+v, want SpoolUp with IgnitionOut once the rail recovers", out)
	}
}

func TestDropsToOffOnLowDCDCVoltageAfterSpoolUp(t *testing.T) {
	var c Controller
	in := baseInputs()
	in.SpoolupDelayMs = 100 // 1 tick
	c.Tick(in, nil)         // edge -> SpoolUp
	out := c.Tick(in, nil)  // -> On
	if out.State != On {
		t.Fatalf("setup: out.State = %s, want On", out.State)
	}

	in.DCDCOutputVoltage = 8.0
	out = c.Tick(in, nil)
	if out.State != Off {
		t.Fatalf("out.State = %s, want Off when DC/DC output drops at/below 9V", out.State)
	}
}
