package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Journal codes: the only codes ever pushed into errjournal.Journal, each
// posted from the controller that detects the condition.
const (
	HVContactorTimeoutClosing       Code = "HV_CONTACTOR_TIMEOUT_CLOSING"
	HVContactorTimeoutStopConsumers Code = "HV_CONTACTOR_TIMEOUT_STOP_CONSUMERS"
	HVContactorTimeoutOpening       Code = "HV_CONTACTOR_TIMEOUT_OPENING"
	ReadyNotSetOnIgnition           Code = "READY_NOT_SET_ON_IGNITION"
	ReadyDroppedDuringDiagnose      Code = "READY_DROPPED_DURING_DIAGNOSE"
	ReadyStuckOnIgnitionOff         Code = "READY_STUCK_ON_IGNITION_OFF"
	VacuumInsufficient              Code = "VACUUM_INSUFFICIENT"
	EPSStartupDCDCFault             Code = "EPS_STARTUP_DCDC_FAULT"
)
