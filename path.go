package cardfs

import (
	"fmt"
	"strings"
)

const (
	// DefaultMountRoot is the public prefix under which the volume is exposed.
	DefaultMountRoot VirtualPath = "/sdcard"
	// DefaultVolumeRoot is the drive token of the volume's native namespace.
	DefaultVolumeRoot VolumePath = "0:"
)

// PathTranslator converts between the public virtual-mount namespace and the
// volume's native namespace. The zero value is not usable; build one with
// NewPathTranslator.
//
// The mapping is a plain prefix substitution:
//
//	/sdcard          <-> 0:/
//	/sdcard/foo/bar  <-> 0:/foo/bar
type PathTranslator struct {
	mountRoot  VirtualPath
	volumeRoot VolumePath
}

// NewPathTranslator validates both root tokens and returns a translator.
// mountRoot must be absolute and must not end with a separator; volumeRoot is
// the bare drive token (e.g. "0:") without a separator.
func NewPathTranslator(mountRoot VirtualPath, volumeRoot VolumePath) (PathTranslator, error) {
	m := string(mountRoot)
	if len(m) < 2 || !strings.HasPrefix(m, separator) || strings.HasSuffix(m, separator) {
		return PathTranslator{}, fmt.Errorf("new path translator: %w: mount root %q must be absolute without a trailing separator", ErrInvalidInput, m)
	}
	if hasDotSegment(m) {
		return PathTranslator{}, fmt.Errorf("new path translator: %w: mount root %q contains dot segments", ErrInvalidInput, m)
	}

	v := string(volumeRoot)
	if v == "" || strings.Contains(v, separator) {
		return PathTranslator{}, fmt.Errorf("new path translator: %w: volume root %q must be a bare drive token", ErrInvalidInput, v)
	}

	return PathTranslator{mountRoot: mountRoot, volumeRoot: volumeRoot}, nil
}

// MountRoot returns the virtual mount root, e.g. "/sdcard".
func (t PathTranslator) MountRoot() VirtualPath { return t.mountRoot }

// VolumeRoot returns the volume's root directory, e.g. "0:/".
func (t PathTranslator) VolumeRoot() VolumePath { return t.volumeRoot + separator }

// ToVolume maps a virtual path to its volume path. Paths outside the mount
// root fall back to the volume root.
func (t PathTranslator) ToVolume(p VirtualPath) VolumePath {
	rest, ok := t.underMount(p)
	if !ok {
		return t.VolumeRoot()
	}
	if rest == "" {
		rest = separator
	}
	return t.volumeRoot + VolumePath(rest)
}

// ToVirtual maps a volume path to its virtual path. Paths that do not carry
// the volume root prefix fall back to the mount root.
func (t PathTranslator) ToVirtual(p VolumePath) VirtualPath {
	rest, ok := strings.CutPrefix(string(p), string(t.volumeRoot))
	if !ok || !strings.HasPrefix(rest, separator) {
		return t.mountRoot
	}
	if rest == separator {
		return t.mountRoot
	}
	return t.mountRoot + VirtualPath(rest)
}

// Normalize turns a client-supplied path into a virtual path. Input already
// rooted at the mount root is kept as-is; anything else is placed beneath the
// mount root. Empty input and "/" both collapse to the mount root.
func (t PathTranslator) Normalize(s string) VirtualPath {
	if s == "" || s == separator {
		return t.mountRoot
	}
	if _, ok := t.underMount(VirtualPath(s)); ok {
		return VirtualPath(s)
	}
	if !strings.HasPrefix(s, separator) {
		return t.mountRoot + separator + VirtualPath(s)
	}
	return t.mountRoot + VirtualPath(s)
}

// IsMountRoot reports whether p is the mount root, with or without a
// trailing separator.
func (t PathTranslator) IsMountRoot(p VirtualPath) bool {
	return p == t.mountRoot || p == t.mountRoot+separator
}

// Contains reports whether p is the mount root or lies beneath it.
func (t PathTranslator) Contains(p VirtualPath) bool {
	_, ok := t.underMount(p)
	return ok
}

// Valid reports whether p lies under the mount root and has no "." or ".."
// segments that would let it step outside the subtree it names. Empty
// segments are rejected too: "/sdcard//" would otherwise name the volume
// root without matching IsMountRoot. A single trailing separator is allowed.
func (t PathTranslator) Valid(p VirtualPath) bool {
	rest, ok := t.underMount(p)
	return ok && !hasDotSegment(rest) && !strings.Contains(rest, separator+separator)
}

// underMount returns the part of p after the mount root. The match is
// segment-aware so "/sdcardx" is not considered to be under "/sdcard".
func (t PathTranslator) underMount(p VirtualPath) (string, bool) {
	rest, ok := strings.CutPrefix(string(p), string(t.mountRoot))
	if !ok {
		return "", false
	}
	if rest != "" && !strings.HasPrefix(rest, separator) {
		return "", false
	}
	return rest, true
}
