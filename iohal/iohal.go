// Package iohal abstracts the digital GPIO and analog ADC surface the
// LVDU core drives. It never touches registers directly -- that belongs
// to a board-specific implementation injected at boot, exactly as
// services/hal/types.go's GPIOPin/PinFactory are contracts a board wiring
// layer satisfies, not code the HAL owns.
package iohal

import "lvducore/x/mathx"

// Pull selects an input's pull resistor.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Pin is a single named digital GPIO, direction fixed at boot.
type Pin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}

// AnalogChannel is a single named ADC channel; ReadMilliVolts returns the raw
// millivolt reading, conversion applied by the caller.
type AnalogChannel interface {
	ReadMilliVolts() int32
}

// Board names every pin and analog channel the core drives. A concrete
// board wiring satisfies this with real registers; cmd/lvdu-bench
// satisfies it with fakes.
type Board interface {
	Pin(name string) Pin
	Analog(name string) AnalogChannel
}

// Named pins.
const (
	PinLED                    = "led_out"
	PinTeslaCoolantValve1     = "tesla_coolant_valve_1_out"
	PinTeslaCoolantValve2     = "tesla_coolant_valve_2_out"
	PinTeslaCoolantPump       = "tesla_coolant_pump_out"
	PinIgnitionIn             = "ignition_in"
	PinReadySafetyIn          = "ready_safety_in"
	PinReadyOut               = "ready_out"
	PinConditionOut           = "condition_out"
	PinVcuOut                 = "vcu_out"
	PinVacuumPumpOut          = "vacuum_pump_out" // active low
	PinVacuumSensorIn         = "vacuum_sensor_in"
	PinHeaterContactorOut     = "heater_contactor_out"
	PinHeaterContactorFbIn    = "heater_contactor_feedback_in"
	PinHeaterThermalSwitchIn  = "heater_thermal_switch_in"
	PinServoPump              = "servo_pump_out"
	PinEPSQuickSpoolupOut     = "eps_quick_spoolup_out"
	PinEPSIgnitionOnOut       = "eps_ignition_on_out"
)

// Named analog channels.
const AnalogDCPowerSupply = "dc_power_supply"

// VoltageDividerRatio converts a raw dc_power_supply millivolt reading
// into the 12 V rail voltage.
const VoltageDividerRatio = 0.004559

// MilliVoltsToVolts applies the fixed divider ratio, clamped to a sane
// non-negative range -- a shorted or floating ADC input must never hand
// the state machine a negative voltage.
func MilliVoltsToVolts(raw int32) float32 {
	v := float32(raw) * VoltageDividerRatio
	return mathx.Clamp(v, 0, 1000)
}
