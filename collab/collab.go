// Package collab names the contracts the three external collaborators
// satisfy -- the BMS CAN decoder, the DC/DC converter driver, and the
// charger emulation layer. All three are out of scope for the core:
// they own their wire transport and hardware access, and only ever
// communicate with the core by writing decoded scalars into
// param.Store. Nothing in this package is wired to anything -- it
// exists so a concrete collaborator implementation (or a bench fake)
// has a named contract to satisfy, the same role
// services/hal/types.go's Adaptor interface plays for a device driver
// the HAL core never constructs itself.
package collab

import (
	"lvducore/param"

	"tinygo.org/x/drivers"
)

// I2CBus names the bus a real DCDCDriver reads its telemetry over.
// It's an alias for tinygo.org/x/drivers.I2C rather than a new
// interface so the same concrete driver runs unmodified on TinyGo
// hardware and against a host-side fake bus in a bench.
type I2CBus = drivers.I2C

// BMSDecoder turns BMS CAN traffic into the BMS_* parameters the HV
// contactor manager and vehicle state machine read. A decoder never
// reads back param values it did not itself write, and never calls
// into lvdu, hvcm, heater, eps or vacuum directly.
type BMSDecoder interface {
	// Decode applies one received CAN frame's worth of BMS data,
	// writing BMSDataValid, BMSContState, BMSPackVoltage,
	// BMSBalancingActive and BMSActualCurrent into store.
	Decode(store *param.Store, frame [8]byte)

	// MarkStale writes BMSDataValid = false after the decoder's own
	// staleness timeout elapses with no fresh frame. The core defines no
	// journal code for a stale BMS; it only sees BMSDataValid drop.
	MarkStale(store *param.Store)
}

// DCDCDriver owns the DC/DC converter and writes the cross-signals the
// EPS sequencer and HV contactor manager read. A concrete
// implementation typically reads telemetry over an I2CBus; the
// interface itself stays transport-agnostic.
type DCDCDriver interface {
	// PublishStatus writes DCDCFaultAny, DCDCOutputVoltage and
	// DCDCInputPowerOffConfirmed into store from the driver's own
	// sampled state.
	PublishStatus(store *param.Store)
}

// ChargerDriver owns the charger emulation layer (plug presence,
// session state) and writes the plug-status parameter the vehicle
// state machine reads.
type ChargerDriver interface {
	// PublishPlugStatus writes ChargerPlugStatus into store; values
	// greater than 1 mean the plug is physically inserted, matching
	// the core's charger_plugged = plug_status > 1 predicate.
	PublishPlugStatus(store *param.Store)
}
