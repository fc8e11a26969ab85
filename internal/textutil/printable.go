// Package textutil classifies decoded barcode text.
package textutil

import "unicode/utf8"

// HasNonPrintable reports whether s contains bytes that cannot be shown as
// text: invalid UTF-8, or a C0 control character other than the
// whitespace range TAB..CR.
func HasNonPrintable(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if r <= 0x08 || (r >= 0x0e && r <= 0x1f) {
			return true
		}
	}
	return false
}
