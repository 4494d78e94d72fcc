// Package vstate is the shared vehicle-state vocabulary: VehicleState
// and TriggerEvent. It exists on its own, separate from package lvdu,
// because every periodic subsystem -- heater, eps, vacuum, the
// scheduler -- needs to read "which of these ten states am I in" off
// the parameter store without importing the whole state machine,
// exactly as services/hal/types.go is the shared capability vocabulary
// every device package imports without importing package hal.
package vstate

// VehicleState is the ten-state top-level machine plus INVALID. Zero
// value is Invalid so an unconfigured param slot never reads as a real
// state.
type VehicleState int32

const (
	Invalid VehicleState = iota
	Sleep
	Standby
	HVConnecting
	HVDisconnecting
	Ready
	Conditioning
	Drive
	Charge
	Error
	LimpHome
)

func (s VehicleState) String() string {
	switch s {
	case Invalid:
		return "INVALID"
	case Sleep:
		return "SLEEP"
	case Standby:
		return "STANDBY"
	case HVConnecting:
		return "HV_CONNECTING"
	case HVDisconnecting:
		return "HV_DISCONNECTING"
	case Ready:
		return "READY"
	case Conditioning:
		return "CONDITIONING"
	case Drive:
		return "DRIVE"
	case Charge:
		return "CHARGE"
	case Error:
		return "ERROR"
	case LimpHome:
		return "LIMP_HOME"
	default:
		return "UNKNOWN"
	}
}

// HVConsumer reports whether a state requires the HV bus to be connected
// and not mid-handshake.
func (s VehicleState) HVConsumer() bool {
	switch s {
	case Ready, Conditioning, Drive, Charge, LimpHome:
		return true
	default:
		return false
	}
}

// TractionActive reports whether EPS/vacuum pump are permitted to assert
// their outputs: READY, DRIVE, LIMP_HOME.
func (s VehicleState) TractionActive() bool {
	switch s {
	case Ready, Drive, LimpHome:
		return true
	default:
		return false
	}
}

// HeaterAllowedState reports whether the vehicle state permits the
// heater to run: READY, CONDITIONING, DRIVE, CHARGE, LIMP_HOME.
func (s VehicleState) HeaterAllowedState() bool {
	switch s {
	case Ready, Conditioning, Drive, Charge, LimpHome:
		return true
	default:
		return false
	}
}

// TriggerEvent names the cause of the most recent transition; purely
// observational, nothing branches on it.
type TriggerEvent int32

const (
	TriggerNone TriggerEvent = iota
	TriggerIgnitionOn
	TriggerIgnitionOff
	TriggerPlugged
	TriggerUnplugged
	TriggerPreconditionRequest
	TriggerStandbyIdleTimeout
	TriggerBalancingLVDrop
	TriggerHVCMConnected
	TriggerHVCMDisconnected
	TriggerHVCMFault
	TriggerDriveRequest
	TriggerDegradedFault
	TriggerCriticalFault
	TriggerThermalDone
	TriggerHVTooLow
	TriggerLVTooLow
	TriggerManualStandby
	TriggerChargeFinished
)

func (t TriggerEvent) String() string {
	switch t {
	case TriggerNone:
		return "none"
	case TriggerIgnitionOn:
		return "ignition_on"
	case TriggerIgnitionOff:
		return "ignition_off"
	case TriggerPlugged:
		return "plugged"
	case TriggerUnplugged:
		return "unplugged"
	case TriggerPreconditionRequest:
		return "precondition_request"
	case TriggerStandbyIdleTimeout:
		return "standby_idle_timeout"
	case TriggerBalancingLVDrop:
		return "balancing_lv_drop"
	case TriggerHVCMConnected:
		return "hvcm_connected"
	case TriggerHVCMDisconnected:
		return "hvcm_disconnected"
	case TriggerHVCMFault:
		return "hvcm_fault"
	case TriggerDriveRequest:
		return "drive_request"
	case TriggerDegradedFault:
		return "degraded_fault"
	case TriggerCriticalFault:
		return "critical_fault"
	case TriggerThermalDone:
		return "thermal_done"
	case TriggerHVTooLow:
		return "hv_too_low"
	case TriggerLVTooLow:
		return "lv_too_low"
	case TriggerManualStandby:
		return "manual_standby"
	case TriggerChargeFinished:
		return "charge_finished"
	default:
		return "unknown"
	}
}
