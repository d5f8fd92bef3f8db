//go:build !tinygo

package device

import (
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudRate is the standard baud rate of the colorimeter shell.
const DefaultBaudRate = 115200

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(details))
	for _, d := range details {
		desc := d.Name
		if d.IsUSB {
			desc = fmt.Sprintf("%s (USB %s:%s %s)", d.Name, d.VID, d.PID, d.Product)
		}
		result = append(result, Port{
			Name:        d.Name,
			Description: desc,
		})
	}

	return result, nil
}

// OpenPort opens a serial port for the command shell.
func OpenPort(name string, baudRate int) (serial.Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	return port, nil
}
