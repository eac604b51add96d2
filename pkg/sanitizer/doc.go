// Package sanitizer cleans user input before it is stored, compared or
// pushed to sockets.
//
// Transformations are plain func(string) string values that chain with Apply
// or Compose:
//
//	clean := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim)
//	msg := clean(req.Message)
package sanitizer
