package sched

import (
	"testing"

	"lvducore/errjournal"
	"lvducore/iohal"
	"lvducore/param"
	"lvducore/vstate"
)

type fakePin struct{ level bool }

func (p *fakePin) ConfigureInput(iohal.Pull) error { return nil }
func (p *fakePin) ConfigureOutput(initial bool) error {
	p.level = initial
	return nil
}
func (p *fakePin) Set(level bool) { p.level = level }
func (p *fakePin) Get() bool      { return p.level }

type fakeAnalog struct{ mv int32 }

func (a *fakeAnalog) ReadMilliVolts() int32 { return a.mv }

type fakeBoard struct {
	pins    map[string]*fakePin
	analogs map[string]*fakeAnalog
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{pins: map[string]*fakePin{}, analogs: map[string]*fakeAnalog{}}
}

func (b *fakeBoard) Pin(name string) iohal.Pin {
	if p, ok := b.pins[name]; ok {
		return p
	}
	p := &fakePin{}
	b.pins[name] = p
	return p
}

func (b *fakeBoard) Analog(name string) iohal.AnalogChannel {
	if a, ok := b.analogs[name]; ok {
		return a
	}
	a := &fakeAnalog{}
	b.analogs[name] = a
	return a
}

type fakeCAN struct {
	frames [][8]byte
}

func (c *fakeCAN) Send(frame [8]byte) { c.frames = append(c.frames, frame) }

func newTestCore() (*Core, *fakeBoard, *param.Store, *fakeCAN) {
	board := newFakeBoard()
	store := param.NewStore()
	journal := errjournal.New(64)
	can := &fakeCAN{}
	core := NewCore(board, store, journal, can)
	return core, board, store, can
}

func TestTask1MsBlinksLEDAtOneHertz(t *testing.T) {
	core, board, _, _ := newTestCore()
	led := board.Pin(iohal.PinLED).(*fakePin)
	initial := led.level

	for i := 0; i < 499; i++ {
		core.Task1Ms()
	}
	if led.level != initial {
		t.Fatalf("LED toggled before 500 ticks: level=%v", led.level)
	}
	core.Task1Ms()
	if led.level == initial {
		t.Fatal("LED did not toggle at 500 ticks")
	}
}

func TestTask100MsPublishesStateAndTransmitsCANFrame(t *testing.T) {
	core, board, store, can := newTestCore()
	board.Pin(iohal.PinIgnitionIn).(*fakePin).level = false
	board.Pin(iohal.PinReadySafetyIn).(*fakePin).level = true

	core.Task100Ms() // SLEEP -> STANDBY

	if got := vstate.VehicleState(store.GetInt(param.LVDUVehicleState)); got != vstate.Standby {
		t.Fatalf("published LVDUVehicleState = %s, want STANDBY", got)
	}
	if len(can.frames) != 1 {
		t.Fatalf("CAN frames sent = %d, want 1", len(can.frames))
	}
	if can.frames[0][0] != byte(vstate.Standby) {
		t.Errorf("frame[0] = %d, want %d (STANDBY)", can.frames[0][0], byte(vstate.Standby))
	}
}

func TestTask100MsCANCounterIncrementsAndWrapsToFourBits(t *testing.T) {
	core, board, _, can := newTestCore()
	board.Pin(iohal.PinIgnitionIn).(*fakePin).level = false

	for i := 0; i < 20; i++ {
		core.Task100Ms()
	}
	if len(can.frames) != 20 {
		t.Fatalf("CAN frames sent = %d, want 20", len(can.frames))
	}
	for i, f := range can.frames {
		want := byte(i % 16)
		if f[3] != want {
			t.Errorf("frame %d counter byte = %d, want %d", i, f[3], want)
		}
	}
}

func TestTask100MsFrameHVRequestByteMatchesPublishedParam(t *testing.T) {
	core, board, store, can := newTestCore()
	board.Pin(iohal.PinIgnitionIn).(*fakePin).level = true

	core.Task100Ms() // SLEEP -> STANDBY
	core.Task100Ms() // STANDBY -> HV_CONNECTING
	core.Task100Ms() // HVCM Disconnected -> Requested; request now observed

	want := store.GetBool(param.HVCMToBMSHVRequest)
	last := can.frames[len(can.frames)-1]
	got := last[2] != 0
	if got != want {
		t.Errorf("frame HV-request byte = %v, want %v (match published param)", got, want)
	}
}

func TestTask10MsDrivesVacuumPumpActiveLow(t *testing.T) {
	core, board, store, _ := newTestCore()
	store.SetInt(param.LVDUVehicleState, int32(vstate.Ready))
	board.Pin(iohal.PinVacuumSensorIn).(*fakePin).level = false // vacuum bad

	core.Task10Ms()

	pumpPin := board.Pin(iohal.PinVacuumPumpOut).(*fakePin)
	if pumpPin.level {
		t.Fatal("vacuum pump pin left high while commanded on (pin is active low)")
	}
	if !store.GetBool(param.VacuumPumpOut) {
		t.Fatal("VacuumPumpOut param not set true despite bad vacuum in a traction-active state")
	}
}

func TestLastTransitionReflectsMostRecentTick(t *testing.T) {
	core, board, _, _ := newTestCore()
	board.Pin(iohal.PinIgnitionIn).(*fakePin).level = false

	core.Task100Ms()
	state, trig, _ := core.LastTransition()
	if state != vstate.Standby {
		t.Fatalf("LastTransition state = %s, want STANDBY", state)
	}
	if trig != vstate.TriggerNone {
		t.Fatalf("LastTransition trigger = %s, want none", trig)
	}
}
