package games

import (
	"math"

	"casino401k-backend/internal/rng"
)

type RouletteColor string

const (
	RouletteRed   RouletteColor = "red"
	RouletteBlack RouletteColor = "black"
)

// RouletteSections partitions the wheel into equal slices alternating
// red/black, red at section 0.
const RouletteSections = 8

const sectionDegrees = 360.0 / RouletteSections

// SpinWheel produces the final wheel rotation in degrees: between three
// and six full turns of travel, with the resting angle uniform over the
// wheel.
func SpinWheel(src *rng.Source) float64 {
	fullSpins := 3 + src.Float64()*2
	return fullSpins*360 + src.Float64()*360
}

// SectionForAngle maps a wheel rotation to the section under the top
// pointer. The mapping is a pure function of the angle, so the settled
// outcome always agrees with the rendered wheel position.
func SectionForAngle(rotation float64) int {
	normalized := math.Mod(rotation, 360)
	if normalized < 0 {
		normalized += 360
	}
	return int(math.Mod(360-normalized, 360) / sectionDegrees)
}

// ColorForSection reports the color painted on a wheel section.
func ColorForSection(section int) RouletteColor {
	if section%2 == 0 {
		return RouletteRed
	}
	return RouletteBlack
}

// ResolveRoulette reports whether the selected color matches the section
// the wheel stopped on.
func ResolveRoulette(selected RouletteColor, section int) bool {
	return ColorForSection(section) == selected
}

// RoulettePayout pays double the stake on a matching color.
func RoulettePayout(won bool, stake int64) int64 {
	if won {
		return stake * 2
	}
	return 0
}
