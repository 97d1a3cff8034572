package cardfs

import (
	"context"
	"log/slog"
)

// Eraser removes files and whole directory subtrees from a volume.
//
// It has no notion of a mount root and deletes whatever it is given; callers
// guard the root.
type Eraser struct {
	vol Volume
}

func NewEraser(vol Volume) *Eraser {
	return &Eraser{vol: vol}
}

// eraseFrame is one directory on the erase stack whose children are being
// removed before the directory itself.
type eraseFrame struct {
	path     VolumePath
	children []eraseChild
	next     int
}

type eraseChild struct {
	path VolumePath
	dir  bool
}

// Erase removes p depth-first, post-order, and reports whether p is gone.
//
// The first failure stops the walk: the directory containing the failing
// entry, and every ancestor up to p, are left in place. Whatever was removed
// before the failure stays removed. Directories are tracked on an explicit
// stack, so tree depth does not grow the goroutine stack.
func (e *Eraser) Erase(ctx context.Context, p VolumePath) bool {
	info, err := e.vol.Stat(ctx, p)
	if err != nil {
		slog.Debug("erase: stat failed", "path", p, "err", err)
		return false
	}

	if !info.IsDir() {
		return e.remove(ctx, p)
	}

	top, ok := e.expand(ctx, p)
	if !ok {
		return false
	}

	stack := []*eraseFrame{top}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]

		if frame.next == len(frame.children) {
			if !e.remove(ctx, frame.path) {
				return false
			}
			stack = stack[:len(stack)-1]
			continue
		}

		child := frame.children[frame.next]
		frame.next++

		if child.dir {
			sub, ok := e.expand(ctx, child.path)
			if !ok {
				return false
			}
			stack = append(stack, sub)
			continue
		}

		if !e.remove(ctx, child.path) {
			return false
		}
	}

	return true
}

// EraseMany erases every path independently. A failure on one path never
// stops the others.
func (e *Eraser) EraseMany(ctx context.Context, paths []VolumePath) DeleteOutcome {
	var out DeleteOutcome
	for _, p := range paths {
		out.Attempted++
		if e.Erase(ctx, p) {
			out.Succeeded++
		}
	}
	return out
}

// expand lists the children of dir. The directory handle is closed before
// returning so only one is ever open during an erase.
func (e *Eraser) expand(ctx context.Context, dir VolumePath) (*eraseFrame, bool) {
	h, err := e.vol.OpenDir(ctx, dir)
	if err != nil {
		slog.Warn("erase: open dir failed", "path", dir, "err", err)
		return nil, false
	}
	entries := drainDir(h, dir)
	closeDir(h, dir)

	frame := &eraseFrame{path: dir, children: make([]eraseChild, 0, len(entries))}
	for _, entry := range entries {
		frame.children = append(frame.children, eraseChild{
			path: dir.Join(entry.Name()),
			dir:  entry.IsDir(),
		})
	}
	return frame, true
}

func (e *Eraser) remove(ctx context.Context, p VolumePath) bool {
	if err := e.vol.Remove(ctx, p); err != nil {
		slog.Warn("erase: remove failed", "path", p, "err", err)
		return false
	}
	return true
}
