// Command lvdu-bench replays a scenario file against the LVDU core
// with a fake board and prints the resulting state transitions and
// error journal. Grounded on cmd/boardtest's shape: construct fakes,
// drive the real service, print results -- here the "service" is
// sched.Core driven by sched.Scheduler, and the line language is
// tokenized with shlex instead of hand-rolled splitting.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"lvducore/errjournal"
	"lvducore/param"
	"lvducore/sched"
	"lvducore/x/fmtx"
)

func main() {
	if len(os.Args) != 2 {
		fmtx.Fprintf(os.Stderr, "usage: lvdu-bench <scenario-file>\n")
		os.Exit(2)
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		fmtx.Fprintf(os.Stderr, "lvdu-bench: %s\n", err)
		os.Exit(1)
	}
	defer f.Close()

	board := newFakeBoard()
	store := param.NewStore()
	journal := errjournal.New(256)
	can := &fakeCAN{}
	core := sched.NewCore(board, store, journal, can)
	scheduler := sched.NewScheduler(core)

	run := &runner{board: board, store: store, journal: journal, core: core, scheduler: scheduler}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil || len(tokens) == 0 {
			fmtx.Fprintf(os.Stderr, "lvdu-bench: line %d: %v\n", lineNo, err)
			os.Exit(1)
		}
		if err := run.exec(tokens); err != nil {
			fmtx.Fprintf(os.Stderr, "lvdu-bench: line %d: %v\n", lineNo, err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		fmtx.Fprintf(os.Stderr, "lvdu-bench: %s\n", err)
		os.Exit(1)
	}

	fmtx.Fprintf(os.Stdout, "--- journal ---\n")
	for _, e := range journal.Entries() {
		fmtx.Fprintf(os.Stdout, "%8dms %s\n", e.TSms, e.Code)
	}
}

type runner struct {
	board     *fakeBoard
	store     *param.Store
	journal   *errjournal.Journal
	core      *sched.Core
	scheduler *sched.Scheduler
}

func (r *runner) exec(tokens []string) error {
	switch tokens[0] {
	case "set":
		if len(tokens) != 3 {
			return fmt.Errorf("set requires <name> <value>, got %v", tokens[1:])
		}
		return r.set(tokens[1], tokens[2])

	case "tick":
		if len(tokens) != 2 {
			return fmt.Errorf("tick requires <milliseconds>")
		}
		n, err := strconv.Atoi(tokens[1])
		if err != nil || n < 0 {
			return fmt.Errorf("bad tick count %q", tokens[1])
		}
		for i := 0; i < n; i++ {
			r.scheduler.Step()
		}
		return nil

	case "print":
		state, trig, queued := r.core.LastTransition()
		fmtx.Fprintf(os.Stdout, "tick=%d state=%s trigger=%s queued=%s\n", r.scheduler.Ticks(), state, trig, queued)
		return nil

	case "expect":
		if len(tokens) != 3 {
			return fmt.Errorf("expect requires <field> <value>")
		}
		return r.expect(tokens[1], tokens[2])

	default:
		return fmt.Errorf("unknown command %q", tokens[0])
	}
}

func (r *runner) expect(field, want string) error {
	switch field {
	case "state":
		state, _, _ := r.core.LastTransition()
		if !strings.EqualFold(state.String(), want) {
			return fmt.Errorf("expect state: got %s, want %s", state, want)
		}
	case "trigger":
		_, trig, _ := r.core.LastTransition()
		if !strings.EqualFold(trig.String(), want) {
			return fmt.Errorf("expect trigger: got %s, want %s", trig, want)
		}
	default:
		return fmt.Errorf("unknown expect field %q", field)
	}
	return nil
}

func (r *runner) set(name, value string) error {
	if setter, ok := pinSetters[name]; ok {
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		setter(r.board, b)
		return nil
	}
	if setter, ok := analogSetters[name]; ok {
		mv, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("bad integer %q for %s", value, name)
		}
		setter(r.board, int32(mv))
		return nil
	}
	if setter, ok := paramSetters[name]; ok {
		return setter(r.store, value)
	}
	return fmt.Errorf("unknown settable %q", name)
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("bad boolean %q", s)
	}
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func parseInt(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

// pinSetters names every board pin a scenario may drive directly.
var pinSetters = map[string]func(b *fakeBoard, v bool){
	"ignition_in":                  func(b *fakeBoard, v bool) { b.pin("ignition_in").level = v },
	"ready_safety_in":              func(b *fakeBoard, v bool) { b.pin("ready_safety_in").level = v },
	"vacuum_sensor_in":             func(b *fakeBoard, v bool) { b.pin("vacuum_sensor_in").level = v },
	"heater_thermal_switch_in":     func(b *fakeBoard, v bool) { b.pin("heater_thermal_switch_in").level = v },
	"heater_contactor_feedback_in": func(b *fakeBoard, v bool) { b.pin("heater_contactor_feedback_in").level = v },
}

// analogSetters names every analog channel a scenario may drive
// directly, in raw millivolts.
var analogSetters = map[string]func(b *fakeBoard, mv int32){
	"dc_power_supply": func(b *fakeBoard, mv int32) { b.analog("dc_power_supply").mv = mv },
}

// paramSetters names every parameter an external collaborator would
// normally write, exposed here so a scenario can fake the BMS, DC/DC
// and charger collaborators without implementing collab.BMSDecoder et
// al.
var paramSetters = map[string]func(s *param.Store, v string) error{
	"bms_data_valid":       boolParam(param.BMSDataValid),
	"bms_cont_state":       intParam(param.BMSContState),
	"bms_pack_voltage":     floatParam(param.BMSPackVoltage),
	"bms_balancing_active": boolParam(param.BMSBalancingActive),
	"bms_actual_current":   floatParam(param.BMSActualCurrent),

	"charger_plug_status":   intParam(param.ChargerPlugStatus),
	"charger_plug_override": boolParam(param.ChargerPlugOverride),

	"dcdc_fault_any":                boolParam(param.DCDCFaultAny),
	"dcdc_output_voltage":           floatParam(param.DCDCOutputVoltage),
	"dcdc_input_power_off_confirmed": boolParam(param.DCDCInputPowerOffConfirmed),
	"heater_off_confirmed":           boolParam(param.HeaterOffConfirmed),

	"heater_flap_in":      intParam(param.HeaterFlapIn),
	"heater_active_manual": boolParam(param.HeaterActiveManual),

	"manual_standby_mode":         boolParam(param.ManualStandbyMode),
	"remote_precondition_request": boolParam(param.RemotePreconditionRequest),
	"thermal_task_completed":      boolParam(param.ThermalTaskCompleted),
	"critical_fault":              boolParam(param.CriticalFault),
	"degraded_fault":              boolParam(param.DegradedFault),
	"drive_request":               boolParam(param.DriveRequest),
}

func boolParam(id param.ID) func(*param.Store, string) error {
	return func(s *param.Store, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		s.SetBool(id, b)
		return nil
	}
}

func intParam(id param.ID) func(*param.Store, string) error {
	return func(s *param.Store, v string) error {
		n, err := parseInt(v)
		if err != nil {
			return err
		}
		s.SetInt(id, n)
		return nil
	}
}

func floatParam(id param.ID) func(*param.Store, string) error {
	return func(s *param.Store, v string) error {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		s.SetFloat(id, f)
		return nil
	}
}
