package model

import "time"

// Scores is one timestamped snapshot of computed driving-behaviour metrics
// for a user. Snapshots are append-only: there is no update operation, and
// at most one snapshot exists per (user, calculatedAt).
//
// Every metric except the timestamp is a pointer:
//   - the nine sub-metrics are genuinely optional on write, and
//   - on read, a type-filtered query projects only ONE metric column, so even
//     EcoDriving (required on write) can legitimately be absent in a result.
//
// With `omitempty`, a nil metric never serializes — absent stays absent
// through the whole lifecycle, while a stored 0 is preserved.
type Scores struct {
	CalculatedAt      time.Time `json:"calculatedAt"`
	EcoDriving        *int64    `json:"ecoDriving,omitempty"`
	DrivAccSmoothness *int64    `json:"drivAccSmoothness,omitempty"`
	StartAccSmoothness *int64   `json:"startAccSmoothness,omitempty"`
	DecSmoothness     *int64    `json:"decSmoothness,omitempty"`
	GsiAdh            *int64    `json:"gsiAdh,omitempty"`
	SpeedLimitAdh     *int64    `json:"speedLimitAdh,omitempty"`
	MotorwaySpeed     *int64    `json:"motorwaySpeed,omitempty"`
	IdleDuration      *int64    `json:"idleDuration,omitempty"`
	JourneyIdlePct    *int64    `json:"journeyIdlePct,omitempty"`
	JourneyDistance   *int64    `json:"journeyDistance,omitempty"`
}

// ScoreMetricTypes is the closed set of metric type tokens, in wire order.
//
// SINGLE SOURCE OF TRUTH:
// Both query-parameter validation (is this `type` token allowed?) and the
// storage projection (which column does it select?) derive from this slice.
// Keeping one registry means the enum cannot drift between the two — a token
// accepted by validation is guaranteed to have a column mapping, which is why
// the projection builder needs no error path of its own.
var ScoreMetricTypes = []string{
	"ecoDriving",
	"drivAccSmoothness",
	"startAccSmoothness",
	"decSmoothness",
	"gsiAdh",
	"speedLimitAdh",
	"motorwaySpeed",
	"idleDuration",
	"journeyIdlePct",
	"journeyDistance",
}

// ValidScoreMetricType reports whether t is a member of the metric enum.
func ValidScoreMetricType(t string) bool {
	for _, m := range ScoreMetricTypes {
		if m == t {
			return true
		}
	}
	return false
}
