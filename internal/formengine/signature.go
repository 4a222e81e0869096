package formengine

// SignaturePad is the capture widget bound to a signature field. Stroke handling
// is the pad's business; the engine only clears it, asks whether anything was
// drawn and reads the encoded image.
type SignaturePad interface {
	Clear()
	IsEmpty() bool
	ExportAsImage() (string, error)
}
