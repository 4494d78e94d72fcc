package param

// Defaults recovered from the parameter catalog and
// original_source/include/param_prj.h's PARAM_ENTRY table. Category
// comments mirror the original's CAT_* grouping.
func (s *Store) loadDefaults() {
	// CAT_LVDU
	// Vehicle/HV/EPS enums all reserve 0 for their INVALID/DISCONNECTED/OFF
	// member, so the zero value of a freshly allocated Store is already a
	// safe state for everything except LVDUVehicleState, which boots
	// explicitly into SLEEP (vstate.Sleep == 1) rather than relying on the
	// zero value meaning something it doesn't.
	s.ints[LVDUVehicleState] = 1 // vstate.Sleep
	s.ints[LVDUQueuedState] = 0  // vstate.Invalid
	s.floats[LVDU12vLowThreshold] = 11.0
	s.floats[LVDUHvLowThreshold] = 200.0
	s.ints[ManualStandbyMode] = 0
	s.floats[ChargeDoneCurrent] = 0.5
	s.ints[ChargeDoneDelay] = 30

	// CAT_HEATER
	s.ints[HeaterFlapThreshold] = 1000
	s.ints[HeaterActiveManual] = 0
	s.ints[HeaterContactorOnDelayMs] = 2000
	s.ints[HeaterThermalOpenTimeoutS] = 2
	s.ints[HeaterThermalCloseTimeoutS] = 5

	// CAT_EPS
	s.ints[EPSSpoolupDelayMs] = 500

	// CAT_VACUUM_PUMP
	s.ints[VacuumHysteresisMs] = 500
	s.ints[VacuumWarningDelayMs] = 2000

	// External predicates default to benign/neutral values; the core
	// never computes these.
	s.ints[ThermalTaskCompleted] = 1
	s.hasInit = true
}
