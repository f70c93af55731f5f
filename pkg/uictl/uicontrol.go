// Package uictl defines the small control surface UI components use to
// read values out of the audio engines without depending on them.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp pins v to the inclusive range [lo, hi].
func Clamp[N Number](v, lo, hi N) N {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// Feed is a control that reads a batch of values, e.g. audio samples
// for a visualization component.
type Feed[T any] interface {
	Read() []T
}
