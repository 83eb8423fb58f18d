package telemetry

import (
	"particle-telemetry/sps30"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	telemetry_readings_total = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telemetry_readings_total",
		},
	)
	telemetry_sends_total = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_sends_total",
			Help: "Send events by result",
		},
		[]string{"result"},
	)
	particle_number_concentration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "particle_number_concentration_ft3",
			Help: "Number of particles up to the given size cutoff per cubic foot of air",
		},
		[]string{"microns_cutoff"},
	)
	particle_differential_bins = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "particle_differential_bin_ft3",
			Help: "Number of particles within the given size band per cubic foot of air",
		},
		[]string{"microns_range"},
	)
	particle_mass_concentration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "particle_mass_concentration",
			Help: "Micrograms per cubic meter up to the given size cutoff",
		},
		[]string{"microns"},
	)
	typical_particle_size = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "typical_particle_size_microns",
			Help: "Typical particle size reported by the sensor",
		},
	)
)

func setReadingMetrics(m *sps30.Measurement, c *ConvertedReading) {
	telemetry_readings_total.Inc()
	particle_number_concentration.WithLabelValues("00.5").Set(float64(c.Number.PM05))
	particle_number_concentration.WithLabelValues("01.0").Set(float64(c.Number.PM1))
	particle_number_concentration.WithLabelValues("02.5").Set(float64(c.Number.PM25))
	particle_number_concentration.WithLabelValues("04.0").Set(float64(c.Number.PM4))
	particle_number_concentration.WithLabelValues("10.0").Set(float64(c.Number.PM10))
	particle_differential_bins.WithLabelValues("00.3-00.5").Set(float64(c.Bins.From03To05))
	particle_differential_bins.WithLabelValues("00.5-01.0").Set(float64(c.Bins.From05To1))
	particle_differential_bins.WithLabelValues("01.0-02.5").Set(float64(c.Bins.From1To25))
	particle_differential_bins.WithLabelValues("02.5-04.0").Set(float64(c.Bins.From25To4))
	particle_differential_bins.WithLabelValues("04.0-10.0").Set(float64(c.Bins.From4To10))
	particle_mass_concentration.WithLabelValues("01.0").Set(float64(m.MassPM1))
	particle_mass_concentration.WithLabelValues("02.5").Set(float64(m.MassPM25))
	particle_mass_concentration.WithLabelValues("04.0").Set(float64(m.MassPM4))
	particle_mass_concentration.WithLabelValues("10.0").Set(float64(m.MassPM10))
	typical_particle_size.Set(float64(m.TypicalParticleSize))
}

func countSend(success bool) {
	if success {
		telemetry_sends_total.WithLabelValues("success").Inc()
	} else {
		telemetry_sends_total.WithLabelValues("failure").Inc()
	}
}
