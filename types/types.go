// Package types holds the payload and config structs shared across the
// colorpot services and published on the bus.
package types

// ---- Colour loop state (retained on color/state) ----

// ColorState is the per-frame snapshot the colorloop publishes: the HSV
// state, the RGB duty derived from it, the writable parameter and a frame
// counter for liveness checks.
type ColorState struct {
	H float32 `json:"h"`
	S float32 `json:"s"`
	V float32 `json:"v"`

	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`

	Param string `json:"param"`
	Frame uint32 `json:"frame"`
	TSms  int64  `json:"ts_ms"`
}

// ParamSelect is retained on color/param whenever the writable HSV
// component changes; the indicator display renders from it.
type ParamSelect struct {
	Param string `json:"param"`
	TSms  int64  `json:"ts_ms"`
}

// ---- Buttons ----

// ButtonEvent is published on io/button/<name>/pressed for each debounced
// press edge.
type ButtonEvent struct {
	Name string `json:"name"`
	TSms int64  `json:"ts_ms"`
}

// ---- Control replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ---- Control payloads ----

// ColorSet is the payload of color/control/set: replace the whole HSV
// state. Fields outside [0,1] are clamped, never rejected.
type ColorSet struct {
	H float32 `json:"h"`
	S float32 `json:"s"`
	V float32 `json:"v"`
}
