//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"log"
	"machine"
	"time"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/command"
	"github.com/itohio/gocolorimeter/pkg/config"
	"github.com/itohio/gocolorimeter/pkg/engine"
	"github.com/itohio/gocolorimeter/pkg/shell"
)

var uart = machine.UART0

// uartReader blocks until the UART has data; machine.UART.Read returns
// immediately when its buffer is empty.
type uartReader struct {
	uart *machine.UART
}

func (r uartReader) Read(p []byte) (int, error) {
	for r.uart.Buffered() == 0 {
		time.Sleep(time.Millisecond)
	}
	return r.uart.Read(p)
}

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	cfg := config.Default()
	ctx := context.Background()

	dev := newBoard()
	if err := dev.Connect(); err != nil {
		log.Printf("Failed to initialize board: %v", err)
		halt()
	}

	out := shell.NewOutput(uart)
	e := engine.New(dev, colorstore.NewMemory(), out, engine.Options{Timing: cfg.Timing})
	if err := e.Load(ctx); err != nil {
		log.Printf("Failed to load colors: %v", err)
	}

	dispatcher := command.NewDispatcher(e, out, nil)
	dispatcher.Prompt = true
	sampler := engine.NewSampler(e, cfg.Timing.PeriodUnit)

	if err := e.Do(ctx, (*engine.Session).SelfTest); err != nil {
		log.Printf("Self test failed: %v", err)
	}
	dispatcher.Banner()

	go sampler.Run(ctx)

	lr := shell.NewLineReader(uartReader{uart}, cfg.Shell.MaxLine, uart)
	if err := dispatcher.Serve(ctx, lr, sampler); err != nil {
		log.Printf("Shell stopped: %v", err)
	}

	if err := e.Do(ctx, (*engine.Session).AllOff); err != nil {
		log.Printf("Failed to switch LEDs off: %v", err)
	}
	dev.Close()
	halt()
}

// halt parks the main goroutine once the program has exited.
func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
