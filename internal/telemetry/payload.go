package telemetry

import (
	"math"
	"time"

	"particle-telemetry/sps30"
)

// Document is the JSON body POSTed to the collector. Field names and
// nesting are fixed by the collector's schema.
type Document struct {
	RoomName     string          `json:"room_name"`
	SensorNumber string          `json:"sensor_number"`
	Timestamp    int64           `json:"timestamp"`
	Raw          rawMeasurements `json:"raw_measurements"`
	Converted    convertedValues `json:"converted_values"`
}

type rawMeasurements struct {
	MassPM1               float64 `json:"mass_pm1"`
	MassPM25              float64 `json:"mass_pm2_5"`
	MassPM4               float64 `json:"mass_pm4"`
	MassPM10              float64 `json:"mass_pm10"`
	NumPM05               float64 `json:"num_pm0_5"`
	NumPM1                float64 `json:"num_pm1"`
	NumPM25               float64 `json:"num_pm2_5"`
	NumPM4                float64 `json:"num_pm4"`
	NumPM10               float64 `json:"num_pm10"`
	TypicalParticleSizeUm float64 `json:"typical_particle_size_um"`
}

type convertedValues struct {
	NumberConcentrationsFt3 numberConcentrationsFt3 `json:"number_concentrations_ft3"`
	DifferentialBinsFt3     differentialBinsFt3     `json:"differential_bins_ft3"`
	MassConcentrationsUgM3  massConcentrationsUgM3  `json:"mass_concentrations_ug_m3"`
}

type numberConcentrationsFt3 struct {
	PM05 float64 `json:"pm0_5"`
	PM1  float64 `json:"pm1"`
	PM25 float64 `json:"pm2_5"`
	PM4  float64 `json:"pm4"`
	PM10 float64 `json:"pm10"`
}

type differentialBinsFt3 struct {
	Bin03To05 float64 `json:"bin_0_3_to_0_5"`
	Bin05To10 float64 `json:"bin_0_5_to_1_0"`
	Bin10To25 float64 `json:"bin_1_0_to_2_5"`
	Bin25To40 float64 `json:"bin_2_5_to_4_0"`
	Bin40To10 float64 `json:"bin_4_0_to_10"`
}

type massConcentrationsUgM3 struct {
	PM1  float64 `json:"pm1"`
	PM25 float64 `json:"pm2_5"`
	PM4  float64 `json:"pm4"`
	PM10 float64 `json:"pm10"`
}

// NewDocument builds the wire document for one reading. Raw fields are
// rounded to 3 decimals and converted fields to 2, per the collector's
// expectations; the timestamp is local epoch seconds.
func NewDocument(room, sensorNumber string, timestamp time.Time, m *sps30.Measurement, c *ConvertedReading) *Document {
	return &Document{
		RoomName:     room,
		SensorNumber: sensorNumber,
		Timestamp:    timestamp.Unix(),
		Raw: rawMeasurements{
			MassPM1:               round(float64(m.MassPM1), 3),
			MassPM25:              round(float64(m.MassPM25), 3),
			MassPM4:               round(float64(m.MassPM4), 3),
			MassPM10:              round(float64(m.MassPM10), 3),
			NumPM05:               round(float64(m.NumberPM05), 3),
			NumPM1:                round(float64(m.NumberPM1), 3),
			NumPM25:               round(float64(m.NumberPM25), 3),
			NumPM4:                round(float64(m.NumberPM4), 3),
			NumPM10:               round(float64(m.NumberPM10), 3),
			TypicalParticleSizeUm: round(float64(m.TypicalParticleSize), 3),
		},
		Converted: convertedValues{
			NumberConcentrationsFt3: numberConcentrationsFt3{
				PM05: round(float64(c.Number.PM05), 2),
				PM1:  round(float64(c.Number.PM1), 2),
				PM25: round(float64(c.Number.PM25), 2),
				PM4:  round(float64(c.Number.PM4), 2),
				PM10: round(float64(c.Number.PM10), 2),
			},
			DifferentialBinsFt3: differentialBinsFt3{
				Bin03To05: round(float64(c.Bins.From03To05), 2),
				Bin05To10: round(float64(c.Bins.From05To1), 2),
				Bin10To25: round(float64(c.Bins.From1To25), 2),
				Bin25To40: round(float64(c.Bins.From25To4), 2),
				Bin40To10: round(float64(c.Bins.From4To10), 2),
			},
			MassConcentrationsUgM3: massConcentrationsUgM3{
				PM1:  round(float64(c.Mass.PM1), 2),
				PM25: round(float64(c.Mass.PM25), 2),
				PM4:  round(float64(c.Mass.PM4), 2),
				PM10: round(float64(c.Mass.PM10), 2),
			},
		},
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
