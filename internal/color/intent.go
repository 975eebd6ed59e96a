package color

// Rendering intents as numbered by ICC and by the PNG sRGB chunk.
const (
	IntentPerceptual           = 0
	IntentRelativeColorimetric = 1
	IntentSaturation           = 2
	IntentAbsoluteColorimetric = 3
)

// IntentName returns the label for an sRGB rendering intent byte.
func IntentName(code byte) string {
	switch code {
	case IntentPerceptual:
		return "Perceptual"
	case IntentRelativeColorimetric:
		return "Relative colorimetric"
	case IntentSaturation:
		return "Saturation"
	case IntentAbsoluteColorimetric:
		return "Absolute colorimetric"
	default:
		return "Unknown"
	}
}
