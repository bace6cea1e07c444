package types

import (
	"math"
	"time"
)

// Asset is one node in the fixed-depth plant hierarchy
// (Site → Plant → Train → Unit → Signal Container → Signal).
type Asset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parentId"`
}

// Asset type labels as they appear in the catalog. The store does not
// enforce them as an enum; they exist for seeding and display.
const (
	AssetTypeSite            = "Site"
	AssetTypePlant           = "Plant"
	AssetTypeTrain           = "Train"
	AssetTypeUnit            = "Unit"
	AssetTypeSignalContainer = "Signal Container"
	AssetTypeSignal          = "Signal"
)

// IsRoot reports whether the asset is a top-level (Site) node.
func (a *Asset) IsRoot() bool {
	return a.ParentID == nil
}

// Snapshot is a named, persisted view configuration: which signals are
// selected or hidden, the viewed date range, and optional color overrides.
// DateRange and CustomColors are caller-defined encodings and are stored
// opaquely.
type Snapshot struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"createdAt"`
	ActiveSignalIDs []string  `json:"activeSignalIds"`
	HiddenSignalIDs []string  `json:"hiddenSignalIds"`
	DateRange       string    `json:"dateRange"`
	CustomColors    string    `json:"customColors,omitempty"`
}

// MeasurementStatus classifies a reading against fixed absolute thresholds.
type MeasurementStatus string

const (
	StatusNormal   MeasurementStatus = "normal"
	StatusHigh     MeasurementStatus = "high"
	StatusCritical MeasurementStatus = "critical"
)

// Classification thresholds. Absolute, not per-signal.
const (
	ThresholdHigh     = 105.0
	ThresholdCritical = 110.0
)

// StatusFor returns the severity classification for a reading.
func StatusFor(value float64) MeasurementStatus {
	if value > ThresholdCritical {
		return StatusCritical
	}
	if value > ThresholdHigh {
		return StatusHigh
	}
	return StatusNormal
}

// Measurement is one timestamped reading for a Signal asset.
type Measurement struct {
	SignalID  string            `json:"signalId"`
	Timestamp time.Time         `json:"timestamp"`
	Value     float64           `json:"value"`
	Status    MeasurementStatus `json:"status"`
}

// SimulatedSignal describes one synthetic signal the ingester produces:
// readings are drawn uniformly from [Base-Variance, Base+Variance].
type SimulatedSignal struct {
	ID       string  `yaml:"id"`
	Base     float64 `yaml:"base"`
	Variance float64 `yaml:"variance"`
}

// Reading produces a measurement value for the signal from a uniform sample
// in [0,1), rounded to two decimal places.
func (s SimulatedSignal) Reading(uniform float64) float64 {
	val := s.Base + (uniform*s.Variance*2 - s.Variance)
	return math.Round(val*100) / 100
}
