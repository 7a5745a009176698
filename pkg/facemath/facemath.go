// Package facemath holds the pure coordinate conversions used to turn
// tracker-space face data into receiver-space rotations and weights.
package facemath

import "math"

// Gaze window geometry: eye offsets arrive as pixel positions inside a
// 32px analysis window, centered at 16.
const (
	gazeWindowCenter    = 16.0
	gazeWindowHalfWidth = 16.0

	// MaxGazeHorizontalDeg and MaxGazeVerticalDeg bound the eye bone
	// rotation derived from a fully deflected gaze offset.
	MaxGazeHorizontalDeg = 15.0
	MaxGazeVerticalDeg   = 10.0
)

// Quaternion is a rotation in x,y,z,w component order.
type Quaternion struct {
	X, Y, Z, W float64
}

// Identity returns the no-rotation quaternion.
func Identity() Quaternion { return Quaternion{X: 0, Y: 0, Z: 0, W: 1} }

// Norm returns the Euclidean length of q.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// EulerToQuaternion converts pitch, yaw, roll in degrees to a unit
// quaternion using the roll-pitch-yaw half-angle composition. The full
// composition covers every angle range including ±180°; no gimbal-lock
// special case exists. The formula already yields unit length, but the
// result is renormalized to absorb floating-point drift.
func EulerToQuaternion(pitchDeg, yawDeg, rollDeg float64) Quaternion {
	pitch := pitchDeg * math.Pi / 180
	yaw := yawDeg * math.Pi / 180
	roll := rollDeg * math.Pi / 180

	cr := math.Cos(roll * 0.5)
	sr := math.Sin(roll * 0.5)
	cp := math.Cos(pitch * 0.5)
	sp := math.Sin(pitch * 0.5)
	cy := math.Cos(yaw * 0.5)
	sy := math.Sin(yaw * 0.5)

	q := Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
	if n := q.Norm(); n > 0 {
		q.X /= n
		q.Y /= n
		q.Z /= n
		q.W /= n
	}
	return q
}

// NormalizeGaze maps a pixel offset inside the gaze window to [-1, 1].
func NormalizeGaze(offsetPx float64) float64 {
	return Clamp((offsetPx-gazeWindowCenter)/gazeWindowHalfWidth, -1, 1)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to the blend-shape weight range [0, 1].
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Rectify returns v if positive, else 0. Used to split a signed gaze or
// expression value into its directional halves.
func Rectify(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
