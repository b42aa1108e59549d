package tabs

import "github.com/atotto/clipboard"

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Unsupported reports whether the OS clipboard is unavailable, for
// example on a headless Linux box without xclip or xsel.
func (SystemClipboard) Unsupported() bool {
	return clipboard.Unsupported
}
