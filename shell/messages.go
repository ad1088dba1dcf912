package shell

import "github.com/PapiCZ/foxfs/vfs"

// StatusMessage maps a status code to the line shown to the user.
func StatusMessage(status vfs.Status) string {
	switch status {
	case vfs.StatusOK:
		return "OK"
	case vfs.StatusNotFound:
		return "FILE NOT FOUND"
	case vfs.StatusExists:
		return "EXIST (already exists)"
	case vfs.StatusFull:
		return "NOT ENOUGH AVAILABLE SPACE"
	case vfs.StatusIOError:
		return "DISK I/O ERROR"
	case vfs.StatusInvalidName:
		return "INVALID NAME"
	case vfs.StatusNoDisk:
		return "NO DISK DETECTED"
	case vfs.StatusUnformatted:
		return "NO FILESYSTEM (use format)"
	}
	return "OPERATION FAILED"
}

// TransitionMessage describes the outcome of a successful cd.
func TransitionMessage(transition vfs.Transition, path string) string {
	switch transition {
	case vfs.AlreadyAtRoot:
		return "Already at root directory"
	case vfs.Stayed:
		return "Remaining in " + path
	}
	return "Changed to " + path
}
