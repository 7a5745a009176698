package vmc

import (
	"math"
	"time"

	"vmcbridge/pkg/facemath"
	"vmcbridge/pkg/osc"
	"vmcbridge/pkg/tracking"
)

// Availability constants sent with every frame. No calibration state
// machine exists here; the tracker is considered calibrated and tracking
// from the first frame.
const (
	calibrationReady = 3
	trackingActive   = 1
)

// Neck motion follows the head at reduced intensity.
const (
	neckRotationScale = 0.3
	neckPositionScale = 0.5
)

// Encoder turns one tracking snapshot into the ordered VMC message
// sequence. It is stateless across frames except for the session clock,
// which starts at construction.
type Encoder struct {
	start time.Time
	now   func() time.Time
}

// NewEncoder returns an encoder whose timestamp messages count seconds
// from now.
func NewEncoder() *Encoder {
	return &Encoder{start: time.Now(), now: time.Now}
}

// EncodeFrame produces the full message sequence for one snapshot. The
// sequence always starts with the availability message and ends with the
// blend apply signal; everything between is guarded by field presence.
// A non-finite value drops only the single message depending on it.
func (e *Encoder) EncodeFrame(snap tracking.Snapshot) []osc.Message {
	f := &frame{}

	// 1. Availability. Emitted even for frames with no face.
	loaded := int32(0)
	if snap.Success {
		loaded = 1
	}
	f.push(osc.NewMessage(AddrAvailable,
		osc.Int(loaded), osc.Int(calibrationReady), osc.Int(trackingActive)))

	// 2. Session time.
	f.push(osc.NewMessage(AddrTime,
		osc.Float(float32(e.now().Sub(e.start).Seconds()))))

	// 3. Root transform. Some receivers refuse bone updates without it;
	// the tracker has no root estimate, so it stays at identity.
	f.transform(AddrRootPos, BoneRoot, 0, 0, 0, facemath.Identity())

	// 4. Head and neck.
	if snap.Success && snap.Euler != nil {
		e.encodeHeadNeck(f, snap)
	}

	// 5. Eye bones.
	if snap.Eyes != nil {
		e.encodeEyeBones(f, snap.Eyes)
	}

	// 6. Blink blend shapes.
	if snap.Blink != nil {
		e.encodeBlink(f, snap.Blink)
	}

	// 7. Feature-derived blend shapes.
	if snap.Features != nil {
		e.encodeFeatures(f, snap.Features)
	}

	// 8. Gaze blend shapes, redundant with step 5 so receivers can use
	// either representation.
	if snap.Eyes != nil {
		e.encodeGazeShapes(f, snap.Eyes)
	}

	// 9. Commit signal, always last.
	f.push(osc.NewMessage(AddrBlendApply))

	return f.msgs
}

func (e *Encoder) encodeHeadNeck(f *frame, snap tracking.Snapshot) {
	// Sign flips align the tracker's camera space with the receiver's
	// rotation sense.
	eu := snap.Euler
	headQ := facemath.EulerToQuaternion(-eu.Pitch, -eu.Yaw, eu.Roll)

	var tx, ty, tz float64
	if snap.Translation != nil {
		tx = snap.Translation.X / 1000
		ty = -snap.Translation.Y / 1000
		tz = snap.Translation.Z / 1000
	}
	f.transform(AddrBonePos, BoneHead, tx, ty, tz, headQ)

	neckQ := facemath.EulerToQuaternion(
		-eu.Pitch*neckRotationScale, -eu.Yaw*neckRotationScale, eu.Roll*neckRotationScale)
	f.transform(AddrBonePos, BoneNeck,
		tx*neckPositionScale, ty*neckPositionScale, tz*neckPositionScale, neckQ)
}

func (e *Encoder) encodeEyeBones(f *frame, eyes *[2]tracking.EyeState) {
	for idx, bone := range [2]string{tracking.RightEye: BoneRightEye, tracking.LeftEye: BoneLeftEye} {
		eye := eyes[idx]
		h := facemath.NormalizeGaze(eye.XOffsetPx) * facemath.MaxGazeHorizontalDeg
		v := facemath.NormalizeGaze(eye.YOffsetPx) * facemath.MaxGazeVerticalDeg
		f.transform(AddrBonePos, bone, 0, 0, 0, facemath.EulerToQuaternion(v, h, 0))
	}
}

func (e *Encoder) encodeBlink(f *frame, blink *[2]float64) {
	// Tracker reports 1 = open; VMC expects 1 = closed.
	right := 1 - facemath.Clamp01(blink[tracking.RightEye])
	left := 1 - facemath.Clamp01(blink[tracking.LeftEye])

	f.blend(ShapeEyeBlinkRight, right)
	f.blend(ShapeEyeBlinkLeft, left)
	f.blend(ShapeBlinkR, right)
	f.blend(ShapeBlinkL, left)
	f.blend(ShapeBlink, (right+left)/2)
}

// encodeFeatures walks the known feature keys in fixed order. Emission
// order matters: mouth corner values overwrite the mouth_wide-derived
// smile/frown per side because receivers apply blend values last-write-wins.
func (e *Encoder) encodeFeatures(f *frame, features map[string]float64) {
	if v, ok := features[tracking.FeatureMouthOpen]; ok {
		f.blend(ShapeJawOpen, v)
		f.blend(ShapeA, v)
		f.blend(ShapeAa, v)
	}

	if v, ok := features[tracking.FeatureMouthWide]; ok {
		if v > 0 {
			f.blend(ShapeMouthSmileLeft, v)
			f.blend(ShapeMouthSmileRight, v)
		} else {
			f.blend(ShapeMouthFrownLeft, -v)
			f.blend(ShapeMouthFrownRight, -v)
		}
	}

	if v, ok := features[tracking.FeatureMouthCornerLeft]; ok {
		if v > 0 {
			f.blend(ShapeMouthSmileLeft, v)
		} else {
			f.blend(ShapeMouthFrownLeft, -v)
		}
	}
	if v, ok := features[tracking.FeatureMouthCornerRight]; ok {
		if v > 0 {
			f.blend(ShapeMouthSmileRight, v)
		} else {
			f.blend(ShapeMouthFrownRight, -v)
		}
	}

	// Both eyebrows raise the same shared browInnerUp shape; only the
	// lowered case is per-side.
	if v, ok := features[tracking.FeatureEyebrowLeft]; ok {
		if v > 0 {
			f.blend(ShapeBrowInnerUp, v)
		} else {
			f.blend(ShapeBrowDownLeft, -v)
		}
	}
	if v, ok := features[tracking.FeatureEyebrowRight]; ok {
		if v > 0 {
			f.blend(ShapeBrowInnerUp, v)
		} else {
			f.blend(ShapeBrowDownRight, -v)
		}
	}
}

func (e *Encoder) encodeGazeShapes(f *frame, eyes *[2]tracking.EyeState) {
	rx := facemath.NormalizeGaze(eyes[tracking.RightEye].XOffsetPx)
	ry := facemath.NormalizeGaze(eyes[tracking.RightEye].YOffsetPx)
	lx := facemath.NormalizeGaze(eyes[tracking.LeftEye].XOffsetPx)
	ly := facemath.NormalizeGaze(eyes[tracking.LeftEye].YOffsetPx)

	// Right eye, lower camel then the upper-camel aliases.
	rightShapes := []struct {
		name string
		v    float64
	}{
		{ShapeEyeLookOutRight, facemath.Rectify(rx)},
		{ShapeEyeLookInRight, facemath.Rectify(-rx)},
		{ShapeEyeLookUpRight, facemath.Rectify(-ry)},
		{ShapeEyeLookDownRight, facemath.Rectify(ry)},
	}
	for _, s := range rightShapes {
		f.blend(s.name, s.v)
	}
	for _, s := range rightShapes {
		f.blend(upperCamel(s.name), s.v)
	}

	// Left eye: horizontal in/out semantics mirror the right eye.
	leftShapes := []struct {
		name string
		v    float64
	}{
		{ShapeEyeLookInLeft, facemath.Rectify(lx)},
		{ShapeEyeLookOutLeft, facemath.Rectify(-lx)},
		{ShapeEyeLookUpLeft, facemath.Rectify(-ly)},
		{ShapeEyeLookDownLeft, facemath.Rectify(ly)},
	}
	for _, s := range leftShapes {
		f.blend(s.name, s.v)
	}
	for _, s := range leftShapes {
		f.blend(upperCamel(s.name), s.v)
	}
}

// frame accumulates one sendFrame's ordered messages.
type frame struct {
	msgs []osc.Message
}

func (f *frame) push(m osc.Message) { f.msgs = append(f.msgs, m) }

// transform appends a bone transform message, dropped whole if any
// component is non-finite.
func (f *frame) transform(addr, bone string, px, py, pz float64, q facemath.Quaternion) {
	if !finite(px, py, pz, q.X, q.Y, q.Z, q.W) {
		return
	}
	f.push(osc.NewMessage(addr,
		osc.String(bone),
		osc.Float(float32(px)), osc.Float(float32(py)), osc.Float(float32(pz)),
		osc.Float(float32(q.X)), osc.Float(float32(q.Y)), osc.Float(float32(q.Z)), osc.Float(float32(q.W)),
	))
}

// blend appends a blend shape message, clamping the weight to [0,1] and
// dropping the message on a non-finite input.
func (f *frame) blend(name string, v float64) {
	if !finite(v) {
		return
	}
	f.push(osc.NewMessage(AddrBlendVal,
		osc.String(name), osc.Float(float32(facemath.Clamp01(v)))))
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
