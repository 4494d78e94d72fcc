package sched

import (
	"lvducore/canframe"
	"lvducore/eps"
	"lvducore/errcode"
	"lvducore/errjournal"
	"lvducore/heater"
	"lvducore/iohal"
	"lvducore/lvdu"
	"lvducore/param"
	"lvducore/vacuum"
	"lvducore/vstate"
	"lvducore/x/timex"
)

// CANTransmitter sends one pre-built status frame. Real transport is
// out of scope; a bench harness or a board wiring supplies this.
type CANTransmitter interface {
	Send(frame [8]byte)
}

// Core is the single orchestration layer: it owns the parameter table
// and the board, samples raw inputs, runs every controller's Tick in
// the order the scheduling model requires, and publishes the returned
// outputs back to param and to the board. It satisfies Tasks so a
// Scheduler can drive it directly.
//
// None of lvdu.Machine, heater.Controller, eps.Controller or
// vacuum.Controller touch param or iohal themselves -- Core is the only
// place that bridges the pure controllers to the shared state, the same
// separation services/hal draws between its Adaptor contract (touches
// the bus) and its device packages (pure decode/encode).
type Core struct {
	board   iohal.Board
	params  *param.Store
	journal *errjournal.Journal
	can     CANTransmitter

	ledOut iohal.Pin

	ignitionIn    iohal.Pin
	readySafetyIn iohal.Pin
	readyOut      iohal.Pin
	conditionOut  iohal.Pin
	vcuOut        iohal.Pin

	vacuumPumpOut  iohal.Pin
	vacuumSensorIn iohal.Pin

	heaterContactorOut    iohal.Pin
	heaterContactorFbIn   iohal.Pin
	heaterThermalSwitchIn iohal.Pin

	epsQuickSpoolupOut iohal.Pin
	epsIgnitionOnOut   iohal.Pin

	dcPower iohal.AnalogChannel

	lvdu   *lvdu.Machine
	heater *heater.Controller
	eps    *eps.Controller
	vacuum *vacuum.Controller

	ledTicks   uint32
	canCounter uint8

	lastState       vstate.VehicleState
	lastTrigger     vstate.TriggerEvent
	lastQueuedState vstate.VehicleState
}

// NewCore resolves every named pin and analog channel once at
// construction and builds each controller fresh.
func NewCore(board iohal.Board, params *param.Store, journal *errjournal.Journal, can CANTransmitter) *Core {
	return &Core{
		board:   board,
		params:  params,
		journal: journal,
		can:     can,

		ledOut: board.Pin(iohal.PinLED),

		ignitionIn:    board.Pin(iohal.PinIgnitionIn),
		readySafetyIn: board.Pin(iohal.PinReadySafetyIn),
		readyOut:      board.Pin(iohal.PinReadyOut),
		conditionOut:  board.Pin(iohal.PinConditionOut),
		vcuOut:        board.Pin(iohal.PinVcuOut),

		vacuumPumpOut:  board.Pin(iohal.PinVacuumPumpOut),
		vacuumSensorIn: board.Pin(iohal.PinVacuumSensorIn),

		heaterContactorOut:    board.Pin(iohal.PinHeaterContactorOut),
		heaterContactorFbIn:   board.Pin(iohal.PinHeaterContactorFbIn),
		heaterThermalSwitchIn: board.Pin(iohal.PinHeaterThermalSwitchIn),

		epsQuickSpoolupOut: board.Pin(iohal.PinEPSQuickSpoolupOut),
		epsIgnitionOnOut:   board.Pin(iohal.PinEPSIgnitionOnOut),

		dcPower: board.Analog(iohal.AnalogDCPowerSupply),

		lvdu:   lvdu.NewMachine(),
		heater: heater.NewController(),
		eps:    &eps.Controller{},
		vacuum: &vacuum.Controller{},
	}
}

// Task1Ms blinks the status LED at 1 Hz (500 ms on, 500 ms off) as a
// liveness indicator independent of the watchdog.
func (c *Core) Task1Ms() {
	c.ledTicks++
	if c.ledTicks >= 500 {
		c.ledTicks = 0
		c.ledOut.Set(!c.ledOut.Get())
	}
}

// Task10Ms runs the heater and vacuum pump controllers.
func (c *Core) Task10Ms() {
	state := vstate.VehicleState(c.params.GetInt(param.LVDUVehicleState))

	thermalClosed := c.heaterThermalSwitchIn.Get()
	fbClosed := c.heaterContactorFbIn.Get()
	c.params.SetBool(param.HeaterThermalSwitchIn, thermalClosed)
	c.params.SetBool(param.HeaterContactorFeedbackIn, fbClosed)

	hOut := c.heater.Tick(heater.Inputs{
		State:                     state,
		HVComfortFunctionsAllowed: c.params.GetBool(param.HVComfortFunctionsAllowed),
		FlapRaw:                   c.params.GetInt(param.HeaterFlapIn),
		FlapThreshold:             c.params.GetInt(param.HeaterFlapThreshold),
		ManualOverride:            c.params.GetBool(param.HeaterActiveManual),
		ThermalSwitchClosed:       thermalClosed,
		ContactorFeedbackClosed:   fbClosed,
		ContactorOnDelayMs:        c.params.GetInt(param.HeaterContactorOnDelayMs),
		ThermalOpenTimeoutS:       c.params.GetInt(param.HeaterThermalOpenTimeoutS),
		ThermalCloseTimeoutS:      c.params.GetInt(param.HeaterThermalCloseTimeoutS),
	})

	c.heaterContactorOut.Set(hOut.ContactorOut)
	c.params.SetBool(param.HeaterContactorOut, hOut.ContactorOut)
	c.params.SetBool(param.HeaterActive, hOut.Active)
	c.params.SetInt(param.HeaterContactorFault, int32(hOut.ContactorFault))
	c.params.SetBool(param.HeaterThermalSwitchBootFault, hOut.ThermalSwitchBootFault)
	c.params.SetBool(param.HeaterThermalSwitchDoesNotOpenFault, hOut.ThermalDoesNotOpenFault)
	c.params.SetBool(param.HeaterThermalSwitchOverheatFault, hOut.ThermalOverheatFault)
	// Task10Ms owns the heater wiring, so it is the writer of this
	// cross-signal: the HV-disconnect stop-consumers handshake (run in
	// Task100Ms) reads it to confirm the heater load has actually dropped.
	c.params.SetBool(param.HeaterOffConfirmed, !hOut.Active)

	vacuumOK := c.vacuumSensorIn.Get()
	c.params.SetBool(param.VacuumSensor, vacuumOK)

	vOut := c.vacuum.Tick(vacuum.Inputs{
		State:          state,
		VacuumOK:       vacuumOK,
		HysteresisMs:   c.params.GetInt(param.VacuumHysteresisMs),
		WarningDelayMs: c.params.GetInt(param.VacuumWarningDelayMs),
	}, c.post)

	c.vacuumPumpOut.Set(!vOut.PumpOn) // active low
	c.params.SetBool(param.VacuumPumpOut, vOut.PumpOn)
	c.params.SetBool(param.VacuumPumpInsufficient, vOut.Insufficient)
}

// Task100Ms runs the vehicle state machine (which runs the HV
// contactor manager internally) and the EPS sequencer, then transmits
// the periodic BMS status frame.
func (c *Core) Task100Ms() {
	in := lvdu.Inputs{
		IgnitionIn:           c.ignitionIn.Get(),
		ReadySafetyIn:        c.readySafetyIn.Get(),
		RawDCPowerMilliVolts: c.dcPower.ReadMilliVolts(),
		LV12vLowThreshold:    c.params.GetFloat(param.LVDU12vLowThreshold),
		HVLowThreshold:       c.params.GetFloat(param.LVDUHvLowThreshold),

		BMSDataValid:       c.params.GetBool(param.BMSDataValid),
		BMSContState:       c.params.GetInt(param.BMSContState),
		BMSPackVoltage:     c.params.GetFloat(param.BMSPackVoltage),
		BMSBalancingActive: c.params.GetBool(param.BMSBalancingActive),
		BMSActualCurrent:   c.params.GetFloat(param.BMSActualCurrent),

		ChargeDoneCurrent: c.params.GetFloat(param.ChargeDoneCurrent),
		ChargeDoneDelayS:  c.params.GetInt(param.ChargeDoneDelay),

		ChargerPlugStatus:   c.params.GetInt(param.ChargerPlugStatus),
		ChargerPlugOverride: c.params.GetBool(param.ChargerPlugOverride),

		ManualStandbyMode:         c.params.GetBool(param.ManualStandbyMode),
		RemotePreconditionRequest: c.params.GetBool(param.RemotePreconditionRequest),
		ThermalTaskCompleted:      c.params.GetBool(param.ThermalTaskCompleted),
		CriticalFault:             c.params.GetBool(param.CriticalFault),
		DegradedFault:             c.params.GetBool(param.DegradedFault),
		DriveRequest:              c.params.GetBool(param.DriveRequest),

		DCDCInputPowerOffConfirmed: c.params.GetBool(param.DCDCInputPowerOffConfirmed),
		HeaterOffConfirmed:         c.params.GetBool(param.HeaterOffConfirmed),
	}

	out := c.lvdu.Tick(in, c.post)
	c.lastState, c.lastTrigger, c.lastQueuedState = out.State, out.Trigger, out.QueuedState

	c.params.SetInt(param.LVDUVehicleState, int32(out.State))
	c.params.SetInt(param.LVDUQueuedState, int32(out.QueuedState))
	c.params.SetFloat(param.LVDU12vBatteryVoltage, out.Voltage12V)
	c.params.SetBool(param.LVDUVcuOut, out.VcuOut)
	c.params.SetBool(param.LVDUConditionOut, out.ConditionOut)
	c.params.SetBool(param.LVDUReadyOut, out.ReadyOut)
	c.params.SetBool(param.LVDUDiagnosePending, out.DiagnosePending)
	c.params.SetInt(param.HVCMState, int32(out.HVCMState))
	c.params.SetBool(param.HVCMToBMSHVRequest, out.HVCMToBMSHVRequest)
	c.params.SetBool(param.HVComfortFunctionsAllowed, out.HVComfortFunctionsAllowed)

	c.vcuOut.Set(out.VcuOut)
	c.conditionOut.Set(out.ConditionOut)
	c.readyOut.Set(out.ReadyOut)

	epsOut := c.eps.Tick(eps.Inputs{
		State:             out.State,
		DCDCFaultAny:      c.params.GetBool(param.DCDCFaultAny),
		DCDCOutputVoltage: c.params.GetFloat(param.DCDCOutputVoltage),
		SpoolupDelayMs:    c.params.GetInt(param.EPSSpoolupDelayMs),
	}, c.post)

	c.params.SetInt(param.EPSState, int32(epsOut.State))
	c.params.SetBool(param.EPSIgnitionOut, epsOut.IgnitionOut)
	c.params.SetBool(param.EPSStartupOut, epsOut.StartupOut)
	c.epsIgnitionOnOut.Set(epsOut.IgnitionOut)
	c.epsQuickSpoolupOut.Set(epsOut.StartupOut)

	if c.can != nil {
		forcedShutdown := out.State == vstate.Error
		frame := canframe.EncodeLVDUStatus(out.State, forcedShutdown, out.HVCMToBMSHVRequest, c.canCounter)
		c.canCounter = (c.canCounter + 1) & 0x0F
		c.can.Send(frame)
	}
}

func (c *Core) post(code errcode.Code) {
	c.journal.Push(code, timex.NowMs())
}

// LastTransition returns the vehicle state, trigger and queued state
// from the most recent Task100Ms call -- the (state, trigger) history a
// bench harness prints isn't otherwise observable through param, since
// TriggerEvent is purely diagnostic and was never given a parameter ID.
func (c *Core) LastTransition() (vstate.VehicleState, vstate.TriggerEvent, vstate.VehicleState) {
	return c.lastState, c.lastTrigger, c.lastQueuedState
}
