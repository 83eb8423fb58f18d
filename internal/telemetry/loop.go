package telemetry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/syncromatics/go-kit/v2/log"

	"particle-telemetry/sps30"
)

const (
	startAttempts   = 3
	startRetryDelay = 2 * time.Second
)

// run is the sampling loop: one logical thread from bus read to delivery.
// Every failure is classified into a FailureKind, signaled on the status
// LED, appended to the local error log, and stops the loop; there is no
// automatic restart.
func run(ctx context.Context, settings *Settings) (err error) {
	signaler := NewNopSignaler()
	if settings.StatusPin != "" {
		s, serr := NewSignaler(settings.StatusPin)
		if serr != nil {
			log.Warn("failed to open status pin; continuing without signaling",
				"pin", settings.StatusPin,
				"err", serr)
		} else {
			signaler = s
		}
	}

	errlog := errorLog{path: settings.ErrorLogPath}

	defer func() {
		if r := recover(); r != nil {
			err = reportFailure(signaler, errlog, fail(FailureUnexpected, errors.Errorf("panic in sampling loop: %v", r)))
		}
	}()

	signaler.Startup()
	signaler.Running()
	defer signaler.Off()

	link := NewLinkManager(settings.LinkInterface, settings.LinkTimeout, settings.AssociateCommand, settings.ProbeURLs)
	if lerr := link.EnsureConnected(ctx); lerr != nil {
		if errors.Is(lerr, context.Canceled) {
			return nil
		}
		return reportFailure(signaler, errlog, fail(FailureLink, lerr))
	}
	if terr := link.SelfTest(ctx); terr != nil {
		log.Warn("connectivity self-test failed; transmission may be degraded",
			"err", terr)
	}

	sensor, serr := sps30.Open(settings.I2CAddr, settings.I2CBus,
		sps30.WithReadyTimeout(settings.ReadyTimeout),
		sps30.WithReadyPollInterval(settings.ReadyPollInterval))
	if serr != nil {
		return reportFailure(signaler, errlog, fail(FailureBus, serr))
	}
	defer sensor.Close()

	if perr := sensor.Probe(); perr != nil {
		return reportFailure(signaler, errlog, fail(FailureSensor, perr))
	}

	sensor.Reset(ctx)

	var startErr error
	for attempt := 1; attempt <= startAttempts; attempt++ {
		startErr = sensor.Start(ctx)
		if startErr == nil {
			break
		}

		log.Warn("failed to start measurement",
			"attempt", attempt,
			"err", startErr)
		if attempt < startAttempts {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(startRetryDelay):
			}
		}
	}
	if startErr != nil {
		return reportFailure(signaler, errlog, fail(FailureSensor, errors.Wrapf(startErr, "failed to start measurement after %d attempts", startAttempts)))
	}
	defer func() {
		serr := sensor.Stop(context.Background())
		if serr != nil {
			log.Warn("failed to stop measurement on shutdown",
				"err", serr)
		}
	}()

	ready, werr := sensor.WaitReady(ctx)
	if werr != nil {
		return nil
	}
	firstReadingSuspect := !ready
	if !ready {
		log.Warn("sensor not ready after warm-up; continuing anyway",
			"readyTimeout", settings.ReadyTimeout)
	}

	localNow := func() time.Time {
		return time.Now().UTC().Add(settings.UTCOffset)
	}

	var scheduler *Scheduler
	if settings.ScheduledSend {
		scheduler = NewScheduler(settings.SendInterval, localNow)
		log.Info("scheduled sending enabled",
			"interval", settings.SendInterval,
			"next", scheduler.Next())
	} else {
		log.Info("sending on every measurement",
			"period", settings.MeasurementPeriod)
	}

	transmitter := NewTransmitter(settings.Endpoints, settings.HTTPTimeout, settings.TLSVerify)

	ticker := time.NewTicker(settings.MeasurementPeriod)
	defer ticker.Stop()

	for {
		measurement, rerr := sensor.Read()
		if rerr != nil {
			if errors.Is(rerr, sps30.ErrChecksum) {
				return reportFailure(signaler, errlog, fail(FailureSensor, rerr))
			}
			return reportFailure(signaler, errlog, fail(FailureBus, rerr))
		}

		reading := Convert(measurement)
		reading.FirstReadingSuspect = firstReadingSuspect
		if firstReadingSuspect {
			log.Warn("first reading after a timed-out warm-up may be unstable")
			firstReadingSuspect = false
		}
		setReadingMetrics(measurement, reading)

		if scheduler == nil || scheduler.ShouldSend() {
			doc := NewDocument(settings.RoomName, settings.SensorNumber, localNow(), measurement, reading)
			serr := transmitter.Send(ctx, doc)
			countSend(serr == nil)
			if serr != nil {
				// the reading is dropped; the next boundary produces a
				// fresh one
				log.Warn("failed to deliver reading",
					"err", serr)
				errlog.append(serr)
			} else {
				log.Info("delivered reading",
					"room", settings.RoomName,
					"sensor", settings.SensorNumber,
					"totalParticlesFt3", float64(reading.Number.PM05),
					"massPM25", float64(reading.Mass.PM25))
			}
			if scheduler != nil {
				log.Info("next scheduled send",
					"next", scheduler.Next())
			}
		} else {
			log.Debug("sampled",
				"totalParticlesFt3", float64(reading.Number.PM05),
				"massPM25", float64(reading.Mass.PM25),
				"nextSend", scheduler.Next())
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func reportFailure(signaler *Signaler, errlog errorLog, failure *Failure) error {
	log.Error("sampling loop failed",
		"kind", failure.Kind.String(),
		"err", failure.Err)
	errlog.append(failure)
	signaler.Failure(failure.Kind)
	return failure
}
