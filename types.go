package cardfs

// VolumePath is a path in the volume's native namespace, e.g. "0:/photos/a.jpg".
// It is only ever handed to a Volume and never exposed to clients.
type VolumePath string

func (p VolumePath) String() string { return string(p) }

// Join appends name to p with exactly one separator between them.
func (p VolumePath) Join(name string) VolumePath {
	return VolumePath(joinPath(string(p), name))
}

// VirtualPath is a path in the public namespace rooted at the mount root,
// e.g. "/sdcard/photos/a.jpg". It is the only path form clients see.
type VirtualPath string

func (p VirtualPath) String() string { return string(p) }

// Join appends name to p with exactly one separator between them.
func (p VirtualPath) Join(name string) VirtualPath {
	return VirtualPath(joinPath(string(p), name))
}

// Base returns the last segment of the path, after the final separator.
func (p VirtualPath) Base() string {
	return baseName(string(p))
}

type NodeKind string

const (
	KindFile NodeKind = "file"
	KindDir  NodeKind = "dir"
)

// TreeNode is one entry of a directory listing.
//
// Size is set for files only. Children is nil for files and for directories
// that were not expanded because the depth budget ran out; an expanded empty
// directory carries a non-nil empty slice so it still serializes as [].
type TreeNode struct {
	Name     string      `json:"name"`
	Path     VirtualPath `json:"path"`
	Kind     NodeKind    `json:"type"`
	Size     *uint64     `json:"size,omitempty"`
	Children []TreeNode  `json:"children,omitzero"`
}

// IsDir reports whether the node is a directory.
func (n TreeNode) IsDir() bool { return n.Kind == KindDir }

// Expanded reports whether the directory's children were enumerated.
func (n TreeNode) Expanded() bool { return n.Children != nil }

// DeleteOutcome tallies a batch or recursive delete.
type DeleteOutcome struct {
	Attempted uint `json:"attempted"`
	Succeeded uint `json:"succeeded"`
}

// Chunk is one bounded piece of a streamed upload.
type Chunk struct {
	Offset uint64
	Data   []byte
	Final  bool
}

// ListQuery selects the subtree to enumerate. A negative Depth asks for the
// service's configured default depth.
type ListQuery struct {
	Dir   VirtualPath
	Depth int
}
