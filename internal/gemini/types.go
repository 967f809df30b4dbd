package gemini

// ImageInput is a decoded reference image sent alongside the prompt.
type ImageInput struct {
	Data     []byte
	MimeType string
}
