package cardfs

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const separator = "/"

// IsValidName validates a single path segment supplied by a client, such as an
// uploaded file name or the name of a new directory. It checks that the name:
//   - is not empty, "." or ".."
//   - does not contain a separator ("/" or "\")
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//   - is not made up of whitespace only
//
// Spaces inside a name are allowed; files coming from a browser often have them.
func IsValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if strings.ContainsAny(name, `/\`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	blank := true
	for _, r := range name {
		if r == 0 || r < 0x20 || r == 0x7f {
			return false
		}
		if !unicode.IsSpace(r) {
			blank = false
		}
	}

	return !blank
}

// hasDotSegment reports whether any segment of p is "." or "..".
func hasDotSegment(p string) bool {
	for seg := range strings.SplitSeq(p, separator) {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

func joinPath(base, name string) string {
	if strings.HasSuffix(base, separator) {
		return base + name
	}
	return base + separator + name
}

func baseName(p string) string {
	return p[strings.LastIndex(p, separator)+1:]
}
