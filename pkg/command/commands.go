package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/engine"
	"github.com/itohio/gocolorimeter/pkg/sample"
	"github.com/itohio/gocolorimeter/pkg/shell"
)

// MaxDelta is the threshold set by "delta max"; no deviation reaches it.
const MaxDelta = 500000

// Menu groups.
const (
	GroupCalibration = "Calibration Functions"
	GroupSampling    = "Sampling Functions"
	GroupInterface   = "User Interface Functions"
	GroupMisc        = "Miscellaneous Functions"
)

// Command is one entry of the command table.
type Command struct {
	Name        string
	Usage       string
	Description string
	Group       string
	Run         func(d *Dispatcher, s *engine.Session, line shell.Line) error
}

// Commands returns the command table in menu order.
func Commands() []*Command {
	return []*Command{
		CalibrateCommand,
		TestCommand,
		ColorCommand,
		EraseCommand,
		PeriodicCommand,
		DeltaCommand,
		MatchCommand,
		TriggerCommand,
		ButtonCommand,
		LEDCommand,
		SetCommand,
		MenuCommand,
		StatusCommand,
		ResetCommand,
		ExitCommand,
	}
}

func argError(line shell.Line, field int, reason, message string) *ArgError {
	return &ArgError{
		Command: line.String(0),
		Field:   field,
		Reason:  reason,
		Message: message,
	}
}

// intArg parses field i as an integer in [lo, hi].
func intArg(line shell.Line, i, lo, hi int, message string) (int, error) {
	v, err := line.Int(i)
	if err != nil {
		return 0, argError(line, i, err.Error(), message)
	}
	if v < lo || v > hi {
		return 0, argError(line, i, fmt.Sprintf("%d out of range (%d..%d)", v, lo, hi), message)
	}
	return v, nil
}

// disablePeriodic turns periodic mode off before a foreground measurement.
func (d *Dispatcher) disablePeriodic(s *engine.Session) {
	if s.DisablePeriodic() {
		d.out.Println("Periodic mode disabled.")
	}
}

var (
	CalibrateCommand = &Command{
		Name:        "calibrate",
		Usage:       "calibrate T (T = 0... 4095)",
		Description: "Calibrate",
		Group:       GroupCalibration,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			const invalid = "Invalid calibration command."

			t, err := line.Int(1)
			if err != nil {
				return argError(line, 1, err.Error(), invalid)
			}
			if t > sample.MaxRaw {
				return argError(line, 1, fmt.Sprintf("%d out of range", t), "Threshold Value Outside of Range (0 to 4095).")
			}

			d.disablePeriodic(s)
			_, err = s.Calibrate(uint16(t))
			return err
		},
	}
	TestCommand = &Command{
		Name:        "test",
		Usage:       "test P (P = print)",
		Description: "Test LED response",
		Group:       GroupCalibration,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			rows := false
			if line.Len() > 1 {
				if !line.Is(1, "print") {
					return argError(line, 1, "expected print", "Invalid entry.")
				}
				rows = true
			}

			d.disablePeriodic(s)
			return s.Test(rows)
		},
	}
	ColorCommand = &Command{
		Name:        "color",
		Usage:       "color N (N = 0... 15)",
		Description: "Store color N",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			n, err := intArg(line, 1, 0, colorstore.Slots-1, "Invalid entry.")
			if err != nil {
				return err
			}

			if _, err := s.StoreColor(n); err != nil {
				return err
			}
			d.out.Printf("color %d stored.", n)
			return nil
		},
	}
	EraseCommand = &Command{
		Name:        "erase",
		Usage:       "erase N (N = 0... 15)",
		Description: "Erase color N",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			n, err := intArg(line, 1, 0, colorstore.Slots-1, "Invalid entry.")
			if err != nil {
				return err
			}

			erased, err := s.EraseColor(n)
			if err != nil {
				return err
			}
			if !erased {
				d.out.Println("No color stored at position to erase.")
				return nil
			}
			d.out.Printf("color %d erased.", n)
			return nil
		},
	}
	PeriodicCommand = &Command{
		Name:        "periodic",
		Usage:       "periodic T (T = 1... 255, off, max)",
		Description: "Sample every T x 0.1s",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			var period int
			switch {
			case line.Is(1, "off"):
			case line.Is(1, "max"):
				period = engine.MaxPeriod
			default:
				var err error
				period, err = intArg(line, 1, 0, engine.MaxPeriod, "Invalid entry.")
				if err != nil {
					return err
				}
			}

			err := s.SetPeriodic(period)
			switch {
			case errors.Is(err, engine.ErrNotCalibrated):
				d.out.Println("Calibration needs to be completed before entering periodic mode.")
				return nil
			case err != nil:
				return err
			}

			if period == 0 {
				d.out.Println("periodic T function is OFF")
			}
			return nil
		},
	}
	DeltaCommand = &Command{
		Name:        "delta",
		Usage:       "delta D (D = 0... 255, off, max)",
		Description: "Report changes above D",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			switch {
			case line.Is(1, "off"):
				s.SetDelta(false, 0)
			case line.Is(1, "max"):
				s.SetDelta(true, MaxDelta)
			default:
				v, err := intArg(line, 1, 0, engine.MaxThreshold, "No change to delta D due to invalid entry.")
				if err != nil {
					return err
				}
				s.SetDelta(true, v)
			}
			return nil
		},
	}
	MatchCommand = &Command{
		Name:        "match",
		Usage:       "match E (E = 0... 255, off)",
		Description: "Report colors closer than E",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			if line.Is(1, "off") {
				s.SetMatch(0)
				return nil
			}

			v, err := intArg(line, 1, 0, engine.MaxThreshold, "Invalid match command.")
			if err != nil {
				return err
			}
			s.SetMatch(v)
			return nil
		},
	}
	TriggerCommand = &Command{
		Name:        "trigger",
		Usage:       "trigger",
		Description: "Measure now",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			d.disablePeriodic(s)
			_, err := s.Measure(engine.SourceCommand)
			return err
		},
	}
	ButtonCommand = &Command{
		Name:        "button",
		Usage:       "button",
		Description: "Measure on button press",
		Group:       GroupSampling,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			d.disablePeriodic(s)
			d.out.Println("Press Push Button to Continue.")
			if err := s.WaitButton(); err != nil {
				return err
			}
			_, err := s.Measure(engine.SourceButton)
			return err
		},
	}
	LEDCommand = &Command{
		Name:        "led",
		Usage:       "led off | on | sample",
		Description: "Status LED",
		Group:       GroupInterface,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			var mode engine.LEDMode
			switch {
			case line.Is(1, "off"):
				mode = engine.LEDOff
			case line.Is(1, "on"):
				mode = engine.LEDOn
			case line.Is(1, "sample"):
				mode = engine.LEDSample
			default:
				return argError(line, 1, "expected off, on or sample", "Invalid entry.")
			}
			return s.SetLED(mode)
		},
	}
	SetCommand = &Command{
		Name:        "set",
		Usage:       "set R G B (0... 1023)",
		Description: "Set LEDs",
		Group:       GroupInterface,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			var levels [3]uint16
			for _, ch := range sample.Channels {
				v, err := intArg(line, 1+int(ch), 0, sample.MaxDrive, "Invalid entry.")
				if err != nil {
					return err
				}
				levels[ch] = uint16(v)
			}
			return s.SetRGB(levels)
		},
	}
	MenuCommand = &Command{
		Name:        "menu",
		Usage:       "menu",
		Description: "Re-print Menu",
		Group:       GroupMisc,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			d.printMenu()
			return nil
		},
	}
	StatusCommand = &Command{
		Name:        "status",
		Usage:       "status",
		Description: "Show settings",
		Group:       GroupMisc,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			s.Status()
			return nil
		},
	}
	ResetCommand = &Command{
		Name:        "reset",
		Usage:       "reset",
		Description: "Reset settings",
		Group:       GroupMisc,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			if err := s.Reset(); err != nil {
				return err
			}
			d.out.Println("reset")
			return nil
		},
	}
	ExitCommand = &Command{
		Name:        "exit",
		Usage:       "exit",
		Description: "Exit Program",
		Group:       GroupMisc,
		Run: func(d *Dispatcher, s *engine.Session, line shell.Line) error {
			d.disablePeriodic(s)
			if err := s.AllOff(); err != nil {
				return err
			}
			d.out.Println("Exiting Program ...")
			return ErrExit
		},
	}
)

const menuWidth = 59

// printMenu prints the command table grouped by function.
func (d *Dispatcher) printMenu() {
	rule := strings.Repeat("#", menuWidth)
	dashes := strings.Repeat("-", menuWidth)

	d.out.Println(rule)
	d.out.Printf("%*s", (menuWidth+4)/2, "MENU")
	d.out.Println(rule)

	n := 0
	group := ""
	for _, c := range d.commands {
		if c.Group != group {
			group = c.Group
			d.out.Printf("   %-*s%s", menuWidth-3-len("CLI Commands"), group, "CLI Commands")
			d.out.Println(dashes)
		}
		n++
		prefix := fmt.Sprintf("   %2d) %s", n, c.Description)
		d.out.Printf("%s%*s", prefix, menuWidth-len(prefix), c.Usage)
	}
	d.out.Println(rule)
}
