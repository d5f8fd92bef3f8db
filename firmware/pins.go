//go:build tinygo

package main

import "machine"

const (
	// LED drive pins
	PIN_LED_RED   = machine.D9
	PIN_LED_GREEN = machine.D8
	PIN_LED_BLUE  = machine.D10

	// Photodiode amplifier output
	PIN_SENSOR = machine.A1

	// Status indicator and push button (active low)
	PIN_INDICATOR = machine.LED
	PIN_BUTTON    = machine.D6

	// PWM period in nanoseconds (~20 kHz keeps the LEDs flicker free for the sensor)
	PWM_PERIOD_NS = 50_000

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)
	ADC_SHIFT        = 4    // machine.ADC.Get scales readings to 16 bits

	UART_BAUD_RATE = 115200
)

// pwmGroup is the subset of a TinyGo PWM peripheral used to drive one LED.
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

var (
	PWM_RED   pwmGroup = machine.TCC0
	PWM_GREEN pwmGroup = machine.TCC1
	PWM_BLUE  pwmGroup = machine.TCC1
)
