// Package vmc encodes tracking snapshots into the ordered OSC message
// sequence that VMC (Virtual Motion Capture) receivers expect.
package vmc

// VMC extension addresses. This set is closed; the encoder emits nothing
// else.
const (
	AddrAvailable  = "/VMC/Ext/OK"
	AddrTime       = "/VMC/Ext/T"
	AddrRootPos    = "/VMC/Ext/Root/Pos"
	AddrBonePos    = "/VMC/Ext/Bone/Pos"
	AddrBlendVal   = "/VMC/Ext/Blend/Val"
	AddrBlendApply = "/VMC/Ext/Blend/Apply"
)

// Bone names used by the encoder.
const (
	BoneRoot     = "root"
	BoneHead     = "Head"
	BoneNeck     = "Neck"
	BoneRightEye = "RightEye"
	BoneLeftEye  = "LeftEye"
)

// Blend shape names. Receivers split across the ARKit and VRM naming
// conventions, and some match names case-sensitively, so blink and gaze
// shapes go out under every spelling their ecosystems use. The duplication
// is a compatibility shim; do not fold it.
const (
	ShapeEyeBlinkRight = "eyeBlinkRight"
	ShapeEyeBlinkLeft  = "eyeBlinkLeft"
	ShapeBlinkR        = "Blink_R"
	ShapeBlinkL        = "Blink_L"
	ShapeBlink         = "Blink"

	ShapeJawOpen = "jawOpen"
	ShapeA       = "A"
	ShapeAa      = "Aa"

	ShapeMouthSmileLeft  = "mouthSmileLeft"
	ShapeMouthSmileRight = "mouthSmileRight"
	ShapeMouthFrownLeft  = "mouthFrownLeft"
	ShapeMouthFrownRight = "mouthFrownRight"

	ShapeBrowInnerUp   = "browInnerUp"
	ShapeBrowDownLeft  = "browDownLeft"
	ShapeBrowDownRight = "browDownRight"
)

// Gaze blend shape spellings, lower camel (ARKit) and upper camel.
const (
	ShapeEyeLookOutRight  = "eyeLookOutRight"
	ShapeEyeLookInRight   = "eyeLookInRight"
	ShapeEyeLookUpRight   = "eyeLookUpRight"
	ShapeEyeLookDownRight = "eyeLookDownRight"
	ShapeEyeLookOutLeft   = "eyeLookOutLeft"
	ShapeEyeLookInLeft    = "eyeLookInLeft"
	ShapeEyeLookUpLeft    = "eyeLookUpLeft"
	ShapeEyeLookDownLeft  = "eyeLookDownLeft"
)

// upperCamel maps each lower-camel gaze shape to its upper-camel twin.
func upperCamel(name string) string {
	if name == "" {
		return name
	}
	return string(name[0]-'a'+'A') + name[1:]
}
