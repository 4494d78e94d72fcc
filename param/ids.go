// Package param is the process-wide parameter table: a single,
// statically-keyed key->scalar store that every task reads and writes.
// Each key has one nominal writer; concurrent readers are always safe
// because no key spans two fields.
package param

// ID identifies one parameter. IDs are stable across firmware revisions;
// never renumber an existing one (mirroring
// original_source/include/param_prj.h's "IDs are 16 bit... don't
// re-assign").
type ID int

const (
	// Vehicle state machine
	LVDUVehicleState ID = iota
	LVDUQueuedState
	LVDUIgnitionIn
	LVDUReadySafetyIn
	LVDU12vBatteryVoltage
	LVDUVcuOut
	LVDUConditionOut
	LVDUReadyOut
	LVDUDiagnosePending
	LVDU12vLowThreshold
	LVDUHvLowThreshold
	ManualStandbyMode
	ChargeDoneCurrent
	ChargeDoneDelay

	// HV contactor manager
	HVCMState
	HVCMToBMSHVRequest
	HVComfortFunctionsAllowed

	// BMS decoder (external writer)
	BMSDataValid
	BMSContState
	BMSActualCurrent
	BMSBalancingActive
	BMSPackVoltage

	// Charger / plug (external writer + config)
	ChargerPlugStatus
	ChargerPlugOverride

	// DC/DC + heater cross-signals (DC/DC values from an external writer;
	// HeaterOffConfirmed written by sched.Core.Task10Ms)
	DCDCInputPowerOffConfirmed
	HeaterOffConfirmed
	DCDCFaultAny
	DCDCOutputVoltage

	// Heater
	HeaterFlapThreshold
	HeaterActiveManual
	HeaterContactorOnDelayMs
	HeaterThermalOpenTimeoutS
	HeaterThermalCloseTimeoutS
	HeaterActive
	HeaterFlapIn
	HeaterThermalSwitchIn
	HeaterContactorFeedbackIn
	HeaterContactorOut
	HeaterContactorFault
	HeaterThermalSwitchBootFault
	HeaterThermalSwitchDoesNotOpenFault
	HeaterThermalSwitchOverheatFault

	// EPS
	EPSSpoolupDelayMs
	EPSState
	EPSIgnitionOut
	EPSStartupOut

	// Vacuum pump
	VacuumHysteresisMs
	VacuumWarningDelayMs
	VacuumPumpOut
	VacuumSensor
	VacuumPumpInsufficient

	// External predicates the core consumes but never computes.
	RemotePreconditionRequest
	ThermalTaskCompleted
	CriticalFault
	DegradedFault
	DriveRequest

	numIDs
)
