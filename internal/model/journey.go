package model

import "time"

// Journey represents one recorded trip's telemetry.
//
// OPTIONAL FIELDS AS POINTERS:
// GsiAdh (gear-shift-indicator adherence) is optional — older recordings
// don't have it. A nil pointer means "never supplied" and, combined with
// `omitempty`, the key is omitted from JSON entirely. This matters because
// the storage layer materialises the column as an explicit NULL, and that
// placeholder must not leak to API consumers: a journey created without
// gsiAdh reads back without a gsiAdh key, not with gsiAdh: null or 0.
// A real value of 0 is meaningful and always survives serialization.
type Journey struct {
	ID       int64     `json:"journeyID"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`      // always after Start
	Distance float64   `json:"distance"` // kilometres, non-negative
	IdleSecs int64     `json:"idleSecs"` // non-negative
	GsiAdh   *float64  `json:"gsiAdh,omitempty"` // percentage 0–100
}
