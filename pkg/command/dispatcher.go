// Package command implements the colorimeter text shell: it matches the first
// field of a line against the command table, validates the arguments and runs
// the command against the engine.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/itohio/gocolorimeter/pkg/engine"
	"github.com/itohio/gocolorimeter/pkg/shell"
)

var (
	// ErrExit is returned by Dispatch when the operator asked to leave.
	ErrExit = errors.New("exit requested")
	// ErrNotRecognized is returned by Dispatch for unknown commands.
	ErrNotRecognized = errors.New("command not recognized")
)

// ArgError is a malformed or out of range command argument.
type ArgError struct {
	Command string
	Field   int
	Reason  string
	// Message is what the operator is shown.
	Message string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("%s: field %d: %s", e.Command, e.Field, e.Reason)
}

// Result classifies how a command ended.
type Result string

const (
	ResultOK       Result = "ok"
	ResultInvalid  Result = "invalid"
	ResultRejected Result = "rejected"
	ResultError    Result = "error"
	ResultUnknown  Result = "unknown"
)

// Observer is notified after every dispatched line.
type Observer interface {
	CommandHandled(name string, result Result)
}

type nopObserver struct{}

func (nopObserver) CommandHandled(string, Result) {}

// Suspender is the part of the periodic sampler the shell controls.
type Suspender interface {
	Suspend()
	Resume()
}

// Dispatcher runs command lines against an engine.
type Dispatcher struct {
	engine *engine.Engine
	out    engine.Reporter
	obs    Observer

	commands []*Command
	byName   map[string]*Command

	// Prompt enables the "Enter Command" prompt before each line.
	Prompt bool
}

// NewDispatcher creates a Dispatcher with the standard command table.
func NewDispatcher(e *engine.Engine, out engine.Reporter, obs Observer) *Dispatcher {
	if obs == nil {
		obs = nopObserver{}
	}

	d := &Dispatcher{
		engine:   e,
		out:      out,
		obs:      obs,
		commands: Commands(),
		byName:   make(map[string]*Command),
	}
	for _, c := range d.commands {
		d.byName[c.Name] = c
	}

	return d
}

// Dispatch runs one line. Operator errors are reported on the output and
// returned; none of them is fatal.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) error {
	line := shell.Tokenize(strings.ToLower(text))
	if line.Len() == 0 {
		return nil
	}

	cmd, ok := d.byName[line.String(0)]
	if !ok {
		d.out.Println("Command not recognized.")
		d.obs.CommandHandled("unknown", ResultUnknown)
		return ErrNotRecognized
	}

	err := d.engine.Do(ctx, func(s *engine.Session) error {
		return cmd.Run(d, s, line)
	})
	d.obs.CommandHandled(cmd.Name, d.report(err))

	return err
}

// report prints the operator message for err and classifies it.
func (d *Dispatcher) report(err error) Result {
	var argErr *ArgError

	switch {
	case err == nil, errors.Is(err, ErrExit):
		return ResultOK
	case errors.As(err, &argErr):
		d.out.Println(argErr.Message)
		return ResultInvalid
	case errors.Is(err, engine.ErrNotCalibrated):
		d.out.Println("No valid calibration performed. Please perform calibration.")
		return ResultRejected
	default:
		log.Printf("Command failed: %v", err)
		d.out.Printf("hardware error: %v", err)
		return ResultError
	}
}

// Banner prints the menu.
func (d *Dispatcher) Banner() {
	d.printMenu()
}

// Serve reads and dispatches lines until the input ends, exit is entered or
// ctx is done. The sampler is suspended while a line is being typed and
// resumed after dispatch if periodic mode is still enabled.
func (d *Dispatcher) Serve(ctx context.Context, lr *shell.LineReader, sampler Suspender) error {
	lr.OnLineStart(sampler.Suspend)

	for ctx.Err() == nil {
		if d.Prompt {
			d.out.Println("Enter Command")
			d.out.Println("-------------")
		}

		text, err := lr.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}

		err = d.Dispatch(ctx, text)
		if d.engine.Mode().Periodic {
			sampler.Resume()
		}
		if errors.Is(err, ErrExit) {
			return nil
		}
	}

	return nil
}
