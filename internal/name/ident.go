package name

import "strings"

// baseNameInvalid lists the characters reserved as tokens in scene files.
const baseNameInvalid = "\"'+.\\{}"

// IsIdentStartChar reports whether c may start an identifier.
func IsIdentStartChar(c byte) bool {
	if c >= '0' && c <= '9' {
		return false
	}
	return IsIdentChar(c)
}

// IsIdentChar reports whether c may appear in an identifier. Only ASCII
// letters, digits and underscore qualify, regardless of locale.
func IsIdentChar(c byte) bool {
	return isASCIIAlpha(c) || (c >= '0' && c <= '9') || c == '_'
}

// IsBaseNameStartChar reports whether c may start the instance name of a
// scene object.
func IsBaseNameStartChar(c byte) bool {
	return c == '_' || isASCIIAlpha(c)
}

// IsBaseNameChar reports whether c may appear in the instance name of a
// scene object.
func IsBaseNameChar(c byte) bool {
	if c <= 0x20 || c >= 0x7f {
		return false
	}
	return strings.IndexByte(baseNameInvalid, c) < 0
}

// ValidIdent reports whether s is a non-empty identifier.
func ValidIdent(s string) bool {
	if s == "" || !IsIdentStartChar(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// ValidBaseName reports whether s is a usable instance name.
func ValidBaseName(s string) bool {
	if s == "" || !IsBaseNameStartChar(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsBaseNameChar(s[i]) {
			return false
		}
	}
	return true
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
