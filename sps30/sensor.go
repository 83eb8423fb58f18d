package sps30

import (
	"context"
	"time"

	"github.com/d2r2/go-i2c"
	"github.com/d2r2/go-logger"
	"github.com/pkg/errors"
	"github.com/syncromatics/go-kit/v2/log"
)

// DefaultAddr is the SPS30 I2C address.
const DefaultAddr uint8 = 0x69

const (
	DefaultReadyTimeout      time.Duration = 10 * time.Second
	DefaultReadyPollInterval time.Duration = 500 * time.Millisecond

	// The sensor needs a moment to leave measurement mode after a stop.
	resetSettle time.Duration = 1 * time.Second
)

func init() {
	logger.ChangePackageLogLevel("i2c", logger.InfoLevel)
}

// Sensor is a handle to one SPS30 on a bus. The sensor itself holds the
// protocol state (idle vs. measuring); the handle is stateless between
// calls and transport failures are propagated, not retried.
type Sensor struct {
	bus               Bus
	closer            func() error
	readyTimeout      time.Duration
	readyPollInterval time.Duration
}

// Option configures a Sensor
type Option func(*Sensor)

// WithReadyTimeout specifies how long WaitReady polls before giving up
func WithReadyTimeout(timeout time.Duration) Option {
	return func(s *Sensor) {
		s.readyTimeout = timeout
	}
}

// WithReadyPollInterval specifies the delay between ready-flag polls
func WithReadyPollInterval(interval time.Duration) Option {
	return func(s *Sensor) {
		s.readyPollInterval = interval
	}
}

// NewSensor wraps an already-open bus.
func NewSensor(bus Bus, options ...Option) *Sensor {
	s := &Sensor{
		bus:               bus,
		readyTimeout:      DefaultReadyTimeout,
		readyPollInterval: DefaultReadyPollInterval,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Open connects to the sensor at the given address on an I2C bus.
func Open(addr uint8, busNo int, options ...Option) (*Sensor, error) {
	bus, err := i2c.NewI2C(addr, busNo)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open I2C address %v on bus %v", addr, busNo)
	}

	s := NewSensor(bus, options...)
	s.closer = bus.Close
	return s, nil
}

func (s *Sensor) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Probe checks that a device answers at the sensor's address.
func (s *Sensor) Probe() error {
	_, err := readDataReady(s.bus)
	if err != nil {
		return errors.Wrap(err, "failed to communicate with sensor")
	}
	return nil
}

// Reset defensively stops a measurement left running by a prior process.
// The sensor rejects a start while measuring, so the stop is attempted
// regardless of state and a failure on an idle sensor is ignored.
func (s *Sensor) Reset(ctx context.Context) {
	err := stopMeasurement(ctx, s.bus)
	if err != nil {
		log.Debug("ignoring stop during reset",
			"err", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(resetSettle):
	}
}

// Start puts the sensor in measurement mode with float output.
func (s *Sensor) Start(ctx context.Context) error {
	return errors.Wrap(startMeasurement(ctx, s.bus), "failed to start measurement")
}

// Stop returns the sensor to idle mode.
func (s *Sensor) Stop(ctx context.Context) error {
	return errors.Wrap(stopMeasurement(ctx, s.bus), "failed to stop measurement")
}

// Ready reports whether a new measurement is available.
func (s *Sensor) Ready() (bool, error) {
	return readDataReady(s.bus)
}

// WaitReady polls the ready flag until the sensor reports data or the
// configured timeout elapses. It returns false on timeout without error;
// the sensor may still produce a usable reading shortly after, so the
// caller decides whether to proceed.
func (s *Sensor) WaitReady(ctx context.Context) (bool, error) {
	deadline := time.Now().Add(s.readyTimeout)
	for {
		ready, err := s.Ready()
		if err != nil {
			log.Warn("failed to poll data ready",
				"err", err)
		}
		if ready {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(s.readyPollInterval):
		}
	}
}

// Read performs one atomic measured-values transfer and decodes it.
func (s *Sensor) Read() (*Measurement, error) {
	block, err := readMeasurementBlock(s.bus)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read measurement block")
	}

	return DecodeMeasurement(block)
}
