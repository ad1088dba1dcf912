package vfs

import (
	"log/slog"
	"strings"
)

const PathSeparator = "/"

// Transition describes what a ChangeDirectory call did to the navigator.
type Transition int

const (
	Stayed Transition = iota
	Moved
	AlreadyAtRoot
)

func (t Transition) String() string {
	switch t {
	case Moved:
		return "moved"
	case AlreadyAtRoot:
		return "already at root"
	}
	return "stayed"
}

// Navigator is the current-directory cursor: a directory block plus the
// absolute path that leads to it.
type Navigator struct {
	block BlockPtr
	path  string
}

func NewNavigator(root BlockPtr) Navigator {
	return Navigator{block: root, path: PathSeparator}
}

func (n Navigator) Block() BlockPtr {
	return n.block
}

func (n Navigator) Path() string {
	return n.path
}

func (n Navigator) AtRoot(root BlockPtr) bool {
	return n.block == root
}

func (n *Navigator) enter(name string, block BlockPtr) {
	if n.path == PathSeparator {
		n.path = PathSeparator + name
	} else {
		n.path = n.path + PathSeparator + name
	}
	n.block = block
}

func (n *Navigator) leave(parent BlockPtr) {
	i := strings.LastIndex(n.path, PathSeparator)
	if i <= 0 {
		n.path = PathSeparator
	} else {
		n.path = n.path[:i]
	}
	n.block = parent
}

// ChangeDirectory moves the navigator along path. An empty path or "/" goes
// to the root. A path starting with "/" is resolved from the root, anything
// else from the current directory, one segment at a time. When any segment
// fails the navigator and the current directory are left exactly as they were.
func (fs *Filesystem) ChangeDirectory(path string) (Transition, error) {
	if err := fs.ready(); err != nil {
		return Stayed, err
	}

	savedNavigator := fs.navigator
	savedDirectory := fs.current

	transition, err := fs.navigate(path)
	if err != nil {
		fs.navigator = savedNavigator
		fs.current = savedDirectory
		return Stayed, err
	}

	slog.Debug("Changed directory", "path", fs.navigator.Path(), "block", fs.navigator.Block(), "transition", transition)

	return transition, nil
}

func (fs *Filesystem) navigate(path string) (Transition, error) {
	transition := Stayed

	if path == "" || strings.HasPrefix(path, PathSeparator) {
		if err := fs.navigateRoot(); err != nil {
			return Stayed, err
		}
		transition = Moved
	}

	for _, segment := range strings.Split(path, PathSeparator) {
		if segment == "" {
			continue
		}

		step, err := fs.step(segment)
		if err != nil {
			return Stayed, err
		}

		switch {
		case step == Moved:
			transition = Moved
		case step == AlreadyAtRoot && transition == Stayed:
			transition = AlreadyAtRoot
		}
	}

	return transition, nil
}

func (fs *Filesystem) navigateRoot() error {
	root := BlockPtr(fs.superblock.RootBlock)

	dir, err := fs.ReadDirectory(root)
	if err != nil {
		return err
	}

	fs.current = dir
	fs.navigator = NewNavigator(root)

	return nil
}

func (fs *Filesystem) step(segment string) (Transition, error) {
	switch segment {
	case ".":
		return Stayed, nil
	case "..":
		if fs.navigator.AtRoot(BlockPtr(fs.superblock.RootBlock)) {
			return AlreadyAtRoot, nil
		}

		parent, err := fs.current.Parent()
		if err != nil {
			return Stayed, err
		}

		dir, err := fs.ReadDirectory(parent)
		if err != nil {
			return Stayed, err
		}

		fs.current = dir
		fs.navigator.leave(parent)

		return Moved, nil
	}

	_, entry, err := fs.current.Find(segment)
	if err != nil {
		return Stayed, err
	}
	if !entry.IsDir() {
		return Stayed, NotADirectory{segment}
	}

	dir, err := fs.ReadDirectory(entry.StartBlock())
	if err != nil {
		return Stayed, err
	}

	fs.current = dir
	fs.navigator.enter(segment, entry.StartBlock())

	return Moved, nil
}
