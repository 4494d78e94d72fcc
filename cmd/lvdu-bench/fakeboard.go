package main

import "lvducore/iohal"

// fakePin is an in-memory digital pin: Set/Get just read and write
// level, with no debounce or edge detection of its own -- scenarios
// drive edges explicitly with set/tick lines.
type fakePin struct {
	level bool
}

func (p *fakePin) ConfigureInput(iohal.Pull) error   { return nil }
func (p *fakePin) ConfigureOutput(initial bool) error { p.level = initial; return nil }
func (p *fakePin) Set(level bool)                     { p.level = level }
func (p *fakePin) Get() bool                          { return p.level }

// fakeAnalog is an in-memory analog channel reporting a fixed raw
// millivolt value until a scenario changes it.
type fakeAnalog struct {
	mv int32
}

func (a *fakeAnalog) ReadMilliVolts() int32 { return a.mv }

// fakeBoard satisfies iohal.Board with lazily-created fake pins and
// channels, named exactly like a real board wiring would name them.
type fakeBoard struct {
	pins    map[string]*fakePin
	analogs map[string]*fakeAnalog
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		pins:    make(map[string]*fakePin),
		analogs: make(map[string]*fakeAnalog),
	}
}

func (b *fakeBoard) Pin(name string) iohal.Pin { return b.pin(name) }

func (b *fakeBoard) pin(name string) *fakePin {
	p, ok := b.pins[name]
	if !ok {
		p = &fakePin{}
		b.pins[name] = p
	}
	return p
}

func (b *fakeBoard) Analog(name string) iohal.AnalogChannel { return b.analog(name) }

func (b *fakeBoard) analog(name string) *fakeAnalog {
	a, ok := b.analogs[name]
	if !ok {
		a = &fakeAnalog{}
		b.analogs[name] = a
	}
	return a
}

// fakeCAN records every transmitted status frame instead of putting it
// on a bus.
type fakeCAN struct {
	frames [][8]byte
}

func (c *fakeCAN) Send(frame [8]byte) { c.frames = append(c.frames, frame) }
