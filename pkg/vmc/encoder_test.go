package vmc

import (
	"bytes"
	"math"
	"testing"
	"time"

	"vmcbridge/pkg/osc"
	"vmcbridge/pkg/tracking"
)

func fixedClockEncoder(elapsed time.Duration) *Encoder {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Encoder{start: start, now: func() time.Time { return start.Add(elapsed) }}
}

func fullSnapshot() tracking.Snapshot {
	return tracking.Snapshot{
		Success:     true,
		Euler:       &tracking.Euler{Pitch: 5, Yaw: -10, Roll: 2},
		Translation: &tracking.Vec3{X: 10, Y: 20, Z: 500},
		Eyes: &[2]tracking.EyeState{
			{Openness: 1, YOffsetPx: 16, XOffsetPx: 24, Confidence: 0.9},
			{Openness: 1, YOffsetPx: 8, XOffsetPx: 16, Confidence: 0.9},
		},
		Blink: &[2]float64{0.9, 0.8},
		Features: map[string]float64{
			tracking.FeatureMouthOpen:       0.4,
			tracking.FeatureMouthWide:       0.5,
			tracking.FeatureMouthCornerLeft: -0.3,
			tracking.FeatureEyebrowRight:    -0.6,
		},
	}
}

// blendValues returns blend shape emissions in order as name/value pairs.
func blendValues(msgs []osc.Message) (names []string, values []float64) {
	for _, m := range msgs {
		if m.Address == AddrBlendVal {
			names = append(names, m.Args[0].Str())
			values = append(values, float64(m.Args[1].Float32()))
		}
	}
	return
}

// lastBlend returns the value a receiver ends up with for a shape, i.e.
// the final write in frame order.
func lastBlend(t *testing.T, msgs []osc.Message, name string) float64 {
	t.Helper()
	names, values := blendValues(msgs)
	found := -1
	for i, n := range names {
		if n == name {
			found = i
		}
	}
	if found < 0 {
		t.Fatalf("blend shape %q not emitted", name)
	}
	return values[found]
}

func boneMessage(t *testing.T, msgs []osc.Message, bone string) osc.Message {
	t.Helper()
	for _, m := range msgs {
		if m.Address == AddrBonePos && m.Args[0].Str() == bone {
			return m
		}
	}
	t.Fatalf("bone %q not emitted", bone)
	return osc.Message{}
}

func TestFrameOrdering(t *testing.T) {
	msgs := fixedClockEncoder(time.Second).EncodeFrame(fullSnapshot())

	if msgs[0].Address != AddrAvailable {
		t.Fatalf("first message = %s", msgs[0].Address)
	}
	if msgs[1].Address != AddrTime {
		t.Fatalf("second message = %s", msgs[1].Address)
	}
	if msgs[2].Address != AddrRootPos {
		t.Fatalf("third message = %s", msgs[2].Address)
	}
	if last := msgs[len(msgs)-1].Address; last != AddrBlendApply {
		t.Fatalf("last message = %s", last)
	}
	apply := -1
	lastVal := -1
	for i, m := range msgs {
		switch m.Address {
		case AddrBlendApply:
			apply = i
		case AddrBlendVal:
			lastVal = i
		}
	}
	if apply < lastVal {
		t.Fatalf("apply at %d precedes blend value at %d", apply, lastVal)
	}
}

func TestLostFaceEmitsStatusOnly(t *testing.T) {
	msgs := fixedClockEncoder(0).EncodeFrame(tracking.Snapshot{Success: false})

	if len(msgs) != 4 {
		t.Fatalf("message count = %d, want 4", len(msgs))
	}
	if msgs[0].Address != AddrAvailable || msgs[0].Args[0].Int32() != 0 ||
		msgs[0].Args[1].Int32() != 3 || msgs[0].Args[2].Int32() != 1 {
		t.Fatalf("availability = %v", msgs[0])
	}
	if msgs[1].Address != AddrTime || msgs[2].Address != AddrRootPos {
		t.Fatalf("unexpected sequence: %s, %s", msgs[1].Address, msgs[2].Address)
	}
	if msgs[3].Address != AddrBlendApply {
		t.Fatalf("last = %s", msgs[3].Address)
	}
}

func TestBlinkConversion(t *testing.T) {
	// Tracker fully open maps to VMC fully open (0 = not closed).
	snap := tracking.Snapshot{Success: true, Blink: &[2]float64{1, 1}}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)

	for _, name := range []string{ShapeEyeBlinkRight, ShapeEyeBlinkLeft, ShapeBlinkR, ShapeBlinkL, ShapeBlink} {
		if v := lastBlend(t, msgs, name); v != 0 {
			t.Fatalf("%s = %v, want 0", name, v)
		}
	}

	// Half closed right eye, complement is exact.
	snap.Blink = &[2]float64{0.25, 1}
	msgs = fixedClockEncoder(0).EncodeFrame(snap)
	if v := lastBlend(t, msgs, ShapeEyeBlinkRight); v != 0.75 {
		t.Fatalf("eyeBlinkRight = %v, want 0.75", v)
	}
	if v := lastBlend(t, msgs, ShapeBlink); v != 0.375 {
		t.Fatalf("Blink = %v, want 0.375", v)
	}
}

func TestHeadNeckTransforms(t *testing.T) {
	snap := tracking.Snapshot{
		Success:     true,
		Euler:       &tracking.Euler{},
		Translation: &tracking.Vec3{X: 0, Y: 0, Z: 1000},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)

	head := boneMessage(t, msgs, BoneHead)
	if x, y, z := head.Args[1].Float32(), head.Args[2].Float32(), head.Args[3].Float32(); x != 0 || y != 0 || z != 1.0 {
		t.Fatalf("head position = (%v,%v,%v)", x, y, z)
	}
	if qx, qy, qz, qw := head.Args[4].Float32(), head.Args[5].Float32(), head.Args[6].Float32(), head.Args[7].Float32(); qx != 0 || qy != 0 || qz != 0 || qw != 1 {
		t.Fatalf("head quaternion = (%v,%v,%v,%v)", qx, qy, qz, qw)
	}

	neck := boneMessage(t, msgs, BoneNeck)
	if z := neck.Args[3].Float32(); z != 0.5 {
		t.Fatalf("neck z = %v, want 0.5", z)
	}
}

func TestHeadYInversionAndUnitScale(t *testing.T) {
	snap := tracking.Snapshot{
		Success:     true,
		Euler:       &tracking.Euler{},
		Translation: &tracking.Vec3{X: 100, Y: 200, Z: -50},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	head := boneMessage(t, msgs, BoneHead)
	if x, y, z := head.Args[1].Float32(), head.Args[2].Float32(), head.Args[3].Float32(); x != 0.1 || y != -0.2 || z != -0.05 {
		t.Fatalf("head position = (%v,%v,%v)", x, y, z)
	}
}

func TestHeadWithoutTranslation(t *testing.T) {
	snap := tracking.Snapshot{Success: true, Euler: &tracking.Euler{Yaw: 30}}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	head := boneMessage(t, msgs, BoneHead)
	if x, y, z := head.Args[1].Float32(), head.Args[2].Float32(), head.Args[3].Float32(); x != 0 || y != 0 || z != 0 {
		t.Fatalf("head position = (%v,%v,%v), want origin", x, y, z)
	}
	// Rotation still computed from the euler angles.
	if qy := head.Args[6].Float32(); qy == 0 {
		t.Fatal("head rotation missing despite yaw")
	}
}

func TestMouthOpenClamped(t *testing.T) {
	snap := tracking.Snapshot{
		Success:  true,
		Features: map[string]float64{tracking.FeatureMouthOpen: 1.5},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	for _, name := range []string{ShapeJawOpen, ShapeA, ShapeAa} {
		if v := lastBlend(t, msgs, name); v != 1.0 {
			t.Fatalf("%s = %v, want 1.0", name, v)
		}
	}
}

func TestMouthCornerOverridesMouthWide(t *testing.T) {
	snap := tracking.Snapshot{
		Success: true,
		Features: map[string]float64{
			tracking.FeatureMouthWide:       0.5,
			tracking.FeatureMouthCornerLeft: -0.3,
		},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)

	names, _ := blendValues(msgs)
	smileAt, frownAt := -1, -1
	for i, n := range names {
		switch n {
		case ShapeMouthSmileLeft:
			smileAt = i
		case ShapeMouthFrownLeft:
			frownAt = i
		}
	}
	// mouth_wide smiles first, the per-corner frown lands after it so the
	// receiver's final state is the corner value.
	if smileAt < 0 || frownAt < 0 || frownAt < smileAt {
		t.Fatalf("smile at %d, frown at %d", smileAt, frownAt)
	}
	if v := lastBlend(t, msgs, ShapeMouthFrownLeft); math.Abs(v-0.3) > 1e-6 {
		t.Fatalf("mouthFrownLeft = %v, want 0.3", v)
	}
	// Right side only sees the mouth_wide smile.
	if v := lastBlend(t, msgs, ShapeMouthSmileRight); v != 0.5 {
		t.Fatalf("mouthSmileRight = %v, want 0.5", v)
	}
}

func TestEyebrowsShareInnerUp(t *testing.T) {
	snap := tracking.Snapshot{
		Success: true,
		Features: map[string]float64{
			tracking.FeatureEyebrowLeft:  0.7,
			tracking.FeatureEyebrowRight: -0.4,
		},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	if v := lastBlend(t, msgs, ShapeBrowInnerUp); v != 0.7 {
		t.Fatalf("browInnerUp = %v, want 0.7", v)
	}
	if v := lastBlend(t, msgs, ShapeBrowDownRight); math.Abs(v-0.4) > 1e-6 {
		t.Fatalf("browDownRight = %v, want 0.4", v)
	}
	names, _ := blendValues(msgs)
	for _, n := range names {
		if n == ShapeBrowDownLeft {
			t.Fatal("browDownLeft emitted for a raised left brow")
		}
	}
}

func TestGazeShapesBothSpellings(t *testing.T) {
	snap := tracking.Snapshot{
		Success: true,
		Eyes: &[2]tracking.EyeState{
			{XOffsetPx: 32, YOffsetPx: 16}, // right eye fully out
			{XOffsetPx: 8, YOffsetPx: 24},  // left eye out, looking down
		},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)

	if v := lastBlend(t, msgs, ShapeEyeLookOutRight); v != 1 {
		t.Fatalf("eyeLookOutRight = %v, want 1", v)
	}
	if v := lastBlend(t, msgs, "EyeLookOutRight"); v != 1 {
		t.Fatalf("EyeLookOutRight = %v, want 1", v)
	}
	if v := lastBlend(t, msgs, ShapeEyeLookInRight); v != 0 {
		t.Fatalf("eyeLookInRight = %v, want 0", v)
	}
	// Left eye horizontal semantics are mirrored: a negative normalized
	// offset means looking out.
	if v := lastBlend(t, msgs, ShapeEyeLookOutLeft); v != 0.5 {
		t.Fatalf("eyeLookOutLeft = %v, want 0.5", v)
	}
	if v := lastBlend(t, msgs, ShapeEyeLookDownLeft); v != 0.5 {
		t.Fatalf("eyeLookDownLeft = %v, want 0.5", v)
	}
}

func TestEyeBoneRotationBounded(t *testing.T) {
	// Extreme pixel offsets must still produce bounded eye rotations.
	snap := tracking.Snapshot{
		Success: true,
		Eyes: &[2]tracking.EyeState{
			{XOffsetPx: 500, YOffsetPx: -500},
			{XOffsetPx: -500, YOffsetPx: 500},
		},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	for _, bone := range []string{BoneRightEye, BoneLeftEye} {
		m := boneMessage(t, msgs, bone)
		// 15° horizontal and 10° vertical caps keep every quaternion
		// component well under sin(90°/2).
		for i := 4; i < 8; i++ {
			if v := math.Abs(float64(m.Args[i].Float32())); i < 7 && v > 0.2 {
				t.Fatalf("%s quaternion component %d = %v", bone, i, v)
			}
		}
	}
}

func TestNonFiniteDropsSingleMessage(t *testing.T) {
	snap := fullSnapshot()
	snap.Euler.Pitch = math.NaN()
	msgs := fixedClockEncoder(0).EncodeFrame(snap)

	for _, m := range msgs {
		if m.Address == AddrBonePos {
			name := m.Args[0].Str()
			if name == BoneHead || name == BoneNeck {
				t.Fatalf("%s emitted despite NaN pitch", name)
			}
		}
	}
	// Everything not touched by the euler angles still goes out.
	boneMessage(t, msgs, BoneRightEye)
	lastBlend(t, msgs, ShapeEyeBlinkRight)
	if msgs[len(msgs)-1].Address != AddrBlendApply {
		t.Fatal("apply missing after dropped messages")
	}
}

func TestNonFiniteFeatureDropped(t *testing.T) {
	snap := tracking.Snapshot{
		Success: true,
		Features: map[string]float64{
			tracking.FeatureMouthOpen: math.Inf(1),
			tracking.FeatureMouthWide: 0.5,
		},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	names, _ := blendValues(msgs)
	for _, n := range names {
		if n == ShapeJawOpen || n == ShapeA || n == ShapeAa {
			t.Fatalf("%s emitted despite non-finite mouth_open", n)
		}
	}
	if v := lastBlend(t, msgs, ShapeMouthSmileLeft); v != 0.5 {
		t.Fatalf("mouthSmileLeft = %v, want 0.5", v)
	}
}

func TestUnknownFeatureIgnored(t *testing.T) {
	snap := tracking.Snapshot{
		Success:  true,
		Features: map[string]float64{"nose_wiggle": 1},
	}
	msgs := fixedClockEncoder(0).EncodeFrame(snap)
	if names, _ := blendValues(msgs); len(names) != 0 {
		t.Fatalf("unexpected blend shapes %v", names)
	}
}

func TestRepeatFramesIdenticalExceptTime(t *testing.T) {
	snap := fullSnapshot()
	enc := fixedClockEncoder(time.Second)
	first := enc.EncodeFrame(snap)
	enc.now = func() time.Time { return enc.start.Add(2 * time.Second) }
	second := enc.EncodeFrame(snap)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, err := first[i].MarshalBinary()
		if err != nil {
			t.Fatalf("marshal first[%d]: %v", i, err)
		}
		b, err := second[i].MarshalBinary()
		if err != nil {
			t.Fatalf("marshal second[%d]: %v", i, err)
		}
		if first[i].Address == AddrTime {
			if bytes.Equal(a, b) {
				t.Fatal("timestamp did not advance")
			}
			continue
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("message %d (%s) differs between frames", i, first[i].Address)
		}
	}
}

func TestSessionClockStartsAtZero(t *testing.T) {
	msgs := fixedClockEncoder(0).EncodeFrame(tracking.Snapshot{})
	if v := msgs[1].Args[0].Float32(); v != 0 {
		t.Fatalf("elapsed = %v, want 0", v)
	}
	msgs = fixedClockEncoder(1500 * time.Millisecond).EncodeFrame(tracking.Snapshot{})
	if v := msgs[1].Args[0].Float32(); v != 1.5 {
		t.Fatalf("elapsed = %v, want 1.5", v)
	}
}
