// Package tracking defines the per-frame face tracking snapshot consumed by
// the VMC encoder, plus codecs for recording and replaying snapshot streams.
package tracking

// Feature keys the encoder understands. Trackers may emit more; unknown
// keys are ignored downstream.
const (
	FeatureMouthOpen        = "mouth_open"
	FeatureMouthWide        = "mouth_wide"
	FeatureMouthCornerLeft  = "mouth_corner_updown_l"
	FeatureMouthCornerRight = "mouth_corner_updown_r"
	FeatureEyebrowLeft      = "eyebrow_updown_l"
	FeatureEyebrowRight     = "eyebrow_updown_r"
)

// Eye indices into Snapshot.Eyes and Snapshot.Blink.
const (
	RightEye = 0
	LeftEye  = 1
)

// Euler is a head orientation in degrees: pitch, yaw, roll.
type Euler struct {
	Pitch float64 `json:"pitch" cbor:"1,keyasint"`
	Yaw   float64 `json:"yaw" cbor:"2,keyasint"`
	Roll  float64 `json:"roll" cbor:"3,keyasint"`
}

// Vec3 is a head position in tracker space, millimeters.
type Vec3 struct {
	X float64 `json:"x" cbor:"1,keyasint"`
	Y float64 `json:"y" cbor:"2,keyasint"`
	Z float64 `json:"z" cbor:"3,keyasint"`
}

// EyeState is one eye's openness plus gaze offset inside the tracker's eye
// analysis window. Offsets are pixel positions; 16 is window center.
type EyeState struct {
	Openness   float64 `json:"openness" cbor:"1,keyasint"`
	YOffsetPx  float64 `json:"y_offset_px" cbor:"2,keyasint"`
	XOffsetPx  float64 `json:"x_offset_px" cbor:"3,keyasint"`
	Confidence float64 `json:"confidence" cbor:"4,keyasint"`
}

// Snapshot is one frame of tracker output. Optional fields are pointers so
// absence is explicit and the encoder's presence guards are exhaustive.
// A snapshot is produced once, consumed once, and discarded; nothing in
// this module buffers history.
type Snapshot struct {
	// Success reports whether a face was located this frame. A failed
	// frame is still delivered downstream.
	Success bool `json:"success" cbor:"1,keyasint"`

	// Euler is the head orientation, if the tracker solved one.
	Euler *Euler `json:"euler,omitempty" cbor:"2,keyasint,omitempty"`

	// Translation is the head position in millimeters, if solved.
	Translation *Vec3 `json:"translation,omitempty" cbor:"3,keyasint,omitempty"`

	// Eyes holds gaze state, index RightEye then LeftEye.
	Eyes *[2]EyeState `json:"eyes,omitempty" cbor:"4,keyasint,omitempty"`

	// Blink holds eye openness in tracker convention (1 fully open,
	// 0 fully closed), index RightEye then LeftEye.
	Blink *[2]float64 `json:"blink,omitempty" cbor:"5,keyasint,omitempty"`

	// Features maps named expression scalars, e.g. mouth_open in [0,1]
	// or eyebrow_updown_l roughly in [-1,1]. Keys may be absent.
	Features map[string]float64 `json:"features,omitempty" cbor:"6,keyasint,omitempty"`
}
