package valueobjects

import pkgerrors "planner-backend/pkg/errors"

// InputKind is the declared media kind of an inbound capture
type InputKind string

const (
	InputAudio InputKind = "audio"
	InputImage InputKind = "image"
	InputVideo InputKind = "video"
	InputText  InputKind = "text"
)

// ParseInputKind validates a declared input kind
func ParseInputKind(value string) (InputKind, error) {
	switch InputKind(value) {
	case InputAudio, InputImage, InputVideo, InputText:
		return InputKind(value), nil
	default:
		return "", pkgerrors.NewValidationError("input kind must be one of audio, image, video, text")
	}
}

// String returns the string representation of the input kind
func (k InputKind) String() string {
	return string(k)
}
