package sps30_test

import (
	"context"
	"testing"
	"time"

	"particle-telemetry/sps30"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus records every write and serves scripted responses to reads.
type fakeBus struct {
	writes   [][]byte
	reads    [][]byte
	writeErr error
	readErr  error
}

func (b *fakeBus) WriteBytes(buf []byte) (int, error) {
	if b.writeErr != nil {
		return 0, b.writeErr
	}
	w := make([]byte, len(buf))
	copy(w, buf)
	b.writes = append(b.writes, w)
	return len(buf), nil
}

func (b *fakeBus) ReadBytes(buf []byte) (int, error) {
	if b.readErr != nil {
		return 0, b.readErr
	}
	if len(b.reads) == 0 {
		return 0, errors.New("no scripted read")
	}
	next := b.reads[0]
	b.reads = b.reads[1:]
	copy(buf, next)
	return len(next), nil
}

func readyResponse(flag byte) []byte {
	return []byte{0x00, flag, sps30.WordChecksum(0x00, flag)}
}

func Test_Start_writes_pointer_mode_and_checksum(t *testing.T) {
	// Arrange
	bus := &fakeBus{}
	sensor := sps30.NewSensor(bus)

	// Act
	err := sensor.Start(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, bus.writes, 1)
	expected := []byte{0x00, 0x10, 0x03, 0x00, sps30.WordChecksum(0x03, 0x00)}
	assert.Equal(t, expected, bus.writes[0])
}

func Test_Start_propagates_transport_failure(t *testing.T) {
	// Arrange
	bus := &fakeBus{writeErr: errors.New("device busy")}
	sensor := sps30.NewSensor(bus)

	// Act
	err := sensor.Start(context.Background())

	// Assert
	assert.Error(t, err)
}

func Test_Stop_writes_pointer_only(t *testing.T) {
	// Arrange
	bus := &fakeBus{}
	sensor := sps30.NewSensor(bus)

	// Act
	err := sensor.Stop(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, bus.writes, 1)
	assert.Equal(t, []byte{0x01, 0x04}, bus.writes[0])
}

func Test_Ready_reports_the_sentinel_flag(t *testing.T) {
	// Arrange
	bus := &fakeBus{reads: [][]byte{readyResponse(0x01), readyResponse(0x00)}}
	sensor := sps30.NewSensor(bus)

	// Act
	first, err1 := sensor.Ready()
	second, err2 := sensor.Ready()

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, first)
	assert.False(t, second)
	require.Len(t, bus.writes, 2)
	assert.Equal(t, []byte{0x02, 0x02}, bus.writes[0])
}

func Test_Ready_reads_as_not_ready_on_checksum_mismatch(t *testing.T) {
	// Arrange
	corrupted := readyResponse(0x01)
	corrupted[2] ^= 0xFF
	bus := &fakeBus{reads: [][]byte{corrupted}}
	sensor := sps30.NewSensor(bus)

	// Act
	ready, err := sensor.Ready()

	// Assert
	require.NoError(t, err)
	assert.False(t, ready)
}

func Test_Read_writes_pointer_and_decodes_block(t *testing.T) {
	// Arrange
	block := encodeBlock([10]float32{
		1.0, 2.0, 3.0, 4.0,
		10.0, 25.0, 25.0, 30.0, 30.0,
		0.5,
	})
	bus := &fakeBus{reads: [][]byte{block}}
	sensor := sps30.NewSensor(bus)

	// Act
	measurement, err := sensor.Read()

	// Assert
	require.NoError(t, err)
	require.Len(t, bus.writes, 1)
	assert.Equal(t, []byte{0x03, 0x00}, bus.writes[0])
	assert.InDelta(t, 10.0, float64(measurement.NumberPM05), 0.0001)
	assert.InDelta(t, 30.0, float64(measurement.NumberPM10), 0.0001)
}

func Test_Read_fails_on_corrupted_block(t *testing.T) {
	// Arrange
	block := encodeBlock([10]float32{})
	block[17] ^= 0xFF
	bus := &fakeBus{reads: [][]byte{block}}
	sensor := sps30.NewSensor(bus)

	// Act
	measurement, err := sensor.Read()

	// Assert
	assert.Nil(t, measurement)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sps30.ErrChecksum))
}

func Test_WaitReady_returns_true_once_the_flag_is_set(t *testing.T) {
	// Arrange
	bus := &fakeBus{reads: [][]byte{readyResponse(0x00), readyResponse(0x00), readyResponse(0x01)}}
	sensor := sps30.NewSensor(bus,
		sps30.WithReadyTimeout(1*time.Second),
		sps30.WithReadyPollInterval(1*time.Millisecond))

	// Act
	ready, err := sensor.WaitReady(context.Background())

	// Assert
	require.NoError(t, err)
	assert.True(t, ready)
}

func Test_WaitReady_reports_timeout_without_error(t *testing.T) {
	// Arrange
	bus := &fakeBus{readErr: errors.New("no device")}
	sensor := sps30.NewSensor(bus,
		sps30.WithReadyTimeout(5*time.Millisecond),
		sps30.WithReadyPollInterval(1*time.Millisecond))

	// Act
	ready, err := sensor.WaitReady(context.Background())

	// Assert
	require.NoError(t, err)
	assert.False(t, ready)
}
