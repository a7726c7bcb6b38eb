package driven

import "context"

// ImageDescriber produces a short natural-language description of an
// image, suitable for building a filename from. A failure describing one
// image is localized: the pipeline logs it, substitutes a generic label
// and continues.
type ImageDescriber interface {
	// Describe returns a 5-10 word description of the image. ext is
	// the image format extension without dot ("png", "jpeg").
	Describe(ctx context.Context, data []byte, ext string) (string, error)

	// Close releases resources.
	Close() error
}
