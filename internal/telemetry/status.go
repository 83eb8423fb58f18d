package telemetry

import (
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is the status indicator output. gpio.PinIO satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// Pattern is a repeated blink shape on the status indicator.
type Pattern struct {
	Count int
	On    time.Duration
	Off   time.Duration
}

var (
	startupPattern = Pattern{Count: 2, On: 300 * time.Millisecond, Off: 300 * time.Millisecond}

	// Disjoint failure categories get visually distinct patterns; counting
	// quick blinks is the only diagnostic available without other access
	// to the device.
	failurePatterns = map[FailureKind]Pattern{
		FailureLink:       {Count: 3, On: 200 * time.Millisecond, Off: 200 * time.Millisecond},
		FailureBus:        {Count: 4, On: 200 * time.Millisecond, Off: 200 * time.Millisecond},
		FailureSensor:     {Count: 5, On: 200 * time.Millisecond, Off: 200 * time.Millisecond},
		FailureUnexpected: {Count: 2, On: 1 * time.Second, Off: 500 * time.Millisecond},
	}
)

// Signaler drives the status LED. It is one-way and fire-and-forget: pin
// errors are dropped and nothing here affects control flow.
type Signaler struct {
	pin   Pin
	sleep func(time.Duration)
}

// NewSignaler looks up the status LED by gpio pin name.
func NewSignaler(pinName string) (*Signaler, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize gpio host")
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, errors.Errorf("failed to find gpio pin %q", pinName)
	}

	return &Signaler{
		pin:   pin,
		sleep: time.Sleep,
	}, nil
}

// NewNopSignaler returns a signaler without an indicator, for hosts with
// no wired LED.
func NewNopSignaler() *Signaler {
	return &Signaler{
		pin:   nopPin{},
		sleep: time.Sleep,
	}
}

type nopPin struct{}

func (nopPin) Out(gpio.Level) error { return nil }

// Startup blinks twice to indicate the process came up.
func (s *Signaler) Startup() {
	s.blink(startupPattern)
}

// Running turns the indicator steady on while the sampling loop runs.
func (s *Signaler) Running() {
	_ = s.pin.Out(gpio.High)
}

// Off turns the indicator off.
func (s *Signaler) Off() {
	_ = s.pin.Out(gpio.Low)
}

// Failure blinks the pattern for the kind and leaves the indicator off.
func (s *Signaler) Failure(kind FailureKind) {
	_ = s.pin.Out(gpio.Low)
	s.sleep(500 * time.Millisecond)

	pattern, ok := failurePatterns[kind]
	if !ok {
		pattern = failurePatterns[FailureUnexpected]
	}
	s.blink(pattern)
}

func (s *Signaler) blink(p Pattern) {
	for i := 0; i < p.Count; i++ {
		_ = s.pin.Out(gpio.High)
		s.sleep(p.On)
		_ = s.pin.Out(gpio.Low)
		s.sleep(p.Off)
	}
}
