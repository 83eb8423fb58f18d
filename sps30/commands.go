// This package provides an implementation to read particulate matter
// measurements from a Sensiron SPS30 sensor over I2C.
package sps30

import (
	"context"
	"time"
)

// Command pointers from the SPS30 datasheet. Each transfer starts by
// writing a 16-bit pointer, big-endian, selecting the command.
const (
	ptrStartMeasurement uint16 = 0x0010
	ptrStopMeasurement  uint16 = 0x0104
	ptrDataReady        uint16 = 0x0202
	ptrReadValues       uint16 = 0x0300
)

const (
	// measurementModeFloat selects big-endian IEEE-754 float output.
	measurementModeFloat byte = 0x03
	reservedByte         byte = 0x00

	// dataReadySentinel is the value of the ready flag byte when a new
	// measurement can be read.
	dataReadySentinel byte = 0x01

	startSettle time.Duration = 20 * time.Millisecond
	stopSettle  time.Duration = 20 * time.Millisecond
)

// Bus is the two-wire transport the driver writes command pointers to and
// reads responses from. *i2c.I2C satisfies it.
type Bus interface {
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
}

func writePointer(bus Bus, ptr uint16) error {
	_, err := bus.WriteBytes([]byte{byte(ptr >> 8), byte(ptr)})
	return err
}

func startMeasurement(ctx context.Context, bus Bus) error {
	crc := WordChecksum(measurementModeFloat, reservedByte)
	_, err := bus.WriteBytes([]byte{
		byte(ptrStartMeasurement >> 8), byte(ptrStartMeasurement),
		measurementModeFloat, reservedByte, crc,
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(startSettle):
	}

	return nil
}

func stopMeasurement(ctx context.Context, bus Bus) error {
	err := writePointer(bus, ptrStopMeasurement)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(stopSettle):
	}

	return nil
}

// readDataReady reports whether a new measurement is available. A flag
// word that fails its checksum reads as not ready.
func readDataReady(bus Bus) (bool, error) {
	err := writePointer(bus, ptrDataReady)
	if err != nil {
		return false, err
	}

	buf := make([]byte, 3)
	_, err = bus.ReadBytes(buf)
	if err != nil {
		return false, err
	}

	if WordChecksum(buf[0], buf[1]) != buf[2] {
		return false, nil
	}

	return buf[1] == dataReadySentinel, nil
}

// readMeasurementBlock performs the measured-values transfer in one read.
func readMeasurementBlock(bus Bus) ([]byte, error) {
	err := writePointer(bus, ptrReadValues)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, MeasurementBlockLength)
	_, err = bus.ReadBytes(buf)
	if err != nil {
		return nil, err
	}

	return buf, nil
}
