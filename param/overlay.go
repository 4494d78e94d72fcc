package param

import (
	"strconv"

	"github.com/andreyvit/tinyjson"
)

// nameToID lets an overlay reference parameters by their catalog name
// instead of a raw numeric id. Only the configurable parameters listed
// here can be overlaid.
var nameToID = map[string]ID{
	"LVDU_12v_low_threshold":       LVDU12vLowThreshold,
	"LVDU_hv_low_threshold":        LVDUHvLowThreshold,
	"manual_standby_mode":          ManualStandbyMode,
	"charge_done_current":         ChargeDoneCurrent,
	"charge_done_delay":           ChargeDoneDelay,
	"heater_flap_threshold":       HeaterFlapThreshold,
	"heater_active_manual":        HeaterActiveManual,
	"heater_contactor_on_delay":   HeaterContactorOnDelayMs,
	"heater_thermal_open_timeout": HeaterThermalOpenTimeoutS,
	"heater_thermal_close_timeout": HeaterThermalCloseTimeoutS,
	"eps_spoolup_delay":           EPSSpoolupDelayMs,
	"vacuum_hysteresis":           VacuumHysteresisMs,
	"vacuum_warning_delay":        VacuumWarningDelayMs,
}

// floatIDs lists the parameters that are stored as float32; everything
// else in nameToID is stored as int32. Mirrors the original firmware's
// per-entry type split between Param::GetInt and Param::GetFloat.
var floatIDs = map[ID]bool{
	LVDU12vLowThreshold: true,
	LVDUHvLowThreshold:  true,
	ChargeDoneCurrent:   true,
}

// LoadOverlay applies persisted parameter values on top of the compiled-in
// defaults. raw is a flat JSON object {"name": value, ...}, the same shape
// services/config/config.go publishes from its embedded config blob.
// Unknown names are ignored (forward-compatible: a parameter dropped in a
// newer firmware silently has no effect on an older persisted blob, and
// vice-versa). Initialization always loads compiled-in defaults first,
// then optionally overlays persisted values by name.
func (s *Store) LoadOverlay(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	r := tinyjson.Raw(raw)
	val := r.Value()
	if err := r.EnsureEOF(); err != nil {
		return err
	}
	m, ok := val.(map[string]any)
	if !ok {
		return errOverlayNotObject
	}
	for name, v := range m {
		id, ok := nameToID[name]
		if !ok {
			continue
		}
		if floatIDs[id] {
			s.SetFloat(id, toFloat32(v))
		} else {
			s.SetInt(id, toInt32(v))
		}
	}
	return nil
}

type overlayError string

func (e overlayError) Error() string { return string(e) }

const errOverlayNotObject overlayError = "param: overlay is not a JSON object"

func toFloat32(v any) float32 {
	switch x := v.(type) {
	case float64:
		return float32(x)
	case float32:
		return x
	case int:
		return float32(x)
	case string:
		f, _ := strconv.ParseFloat(x, 32)
		return float32(f)
	default:
		return 0
	}
}

func toInt32(v any) int32 {
	switch x := v.(type) {
	case float64:
		return int32(x)
	case int:
		return int32(x)
	case int32:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(x, 10, 32)
		return int32(n)
	default:
		return 0
	}
}
