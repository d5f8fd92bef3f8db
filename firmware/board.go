//go:build tinygo

package main

import (
	"errors"
	"fmt"
	"machine"
	"time"

	"github.com/itohio/gocolorimeter/pkg/device"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

var _ device.Device = (*board)(nil)

type led struct {
	pwm     pwmGroup
	pin     machine.Pin
	channel uint8
}

// board drives the colorimeter head wired to the XIAO pins.
type board struct {
	leds      [3]led
	sensor    machine.ADC
	debounce  time.Duration
	connected bool
}

func newBoard() *board {
	return &board{
		leds: [3]led{
			sample.Red:   {pwm: PWM_RED, pin: PIN_LED_RED},
			sample.Green: {pwm: PWM_GREEN, pin: PIN_LED_GREEN},
			sample.Blue:  {pwm: PWM_BLUE, pin: PIN_LED_BLUE},
		},
		sensor:   machine.ADC{Pin: PIN_SENSOR},
		debounce: 20 * time.Millisecond,
	}
}

func (b *board) Connect() error {
	configured := map[pwmGroup]bool{}
	for i := range b.leds {
		l := &b.leds[i]
		if !configured[l.pwm] {
			if err := l.pwm.Configure(machine.PWMConfig{Period: PWM_PERIOD_NS}); err != nil {
				return fmt.Errorf("failed to configure PWM for %s: %w", sample.Channel(i), err)
			}
			configured[l.pwm] = true
		}
		ch, err := l.pwm.Channel(l.pin)
		if err != nil {
			return fmt.Errorf("failed to attach %s LED: %w", sample.Channel(i), err)
		}
		l.channel = ch
		l.pwm.Set(ch, 0)
	}

	machine.InitADC()
	PIN_SENSOR.Configure(machine.PinConfig{Mode: machine.PinInput})
	b.sensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	PIN_INDICATOR.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_INDICATOR.Low()
	PIN_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	b.connected = true
	return nil
}

func (b *board) Close() error {
	for _, l := range b.leds {
		l.pwm.Set(l.channel, 0)
	}
	PIN_INDICATOR.Low()
	b.connected = false
	return nil
}

func (b *board) IsConnected() bool {
	return b.connected
}

func (b *board) Drive(ch sample.Channel, level uint16) error {
	if !ch.Valid() {
		return fmt.Errorf("invalid channel %d", ch)
	}
	if level > sample.MaxDrive {
		level = sample.MaxDrive
	}

	l := b.leds[ch]
	l.pwm.Set(l.channel, uint32(uint64(l.pwm.Top())*uint64(level)/sample.MaxDrive))
	return nil
}

func (b *board) Sample() (uint16, error) {
	if !b.connected {
		return 0, errors.New("board not connected")
	}
	return b.sensor.Get() >> ADC_SHIFT, nil
}

func (b *board) Wait(d time.Duration) {
	time.Sleep(d)
}

func (b *board) SetIndicator(on bool) error {
	PIN_INDICATOR.Set(on)
	return nil
}

// WaitButton polls the active low button until it is pressed and released.
func (b *board) WaitButton() error {
	for PIN_BUTTON.Get() {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(b.debounce)
	for !PIN_BUTTON.Get() {
		time.Sleep(time.Millisecond)
	}
	return nil
}
