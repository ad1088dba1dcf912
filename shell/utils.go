package shell

import (
	"strconv"

	"github.com/PapiCZ/foxfs/vfs"
)

func BlockPtrsToStrings(ptrs []vfs.BlockPtr) []string {
	strs := make([]string, 0, len(ptrs))
	for _, ptr := range ptrs {
		strs = append(strs, strconv.Itoa(int(ptr)))
	}

	return strs
}

// Prompt renders the shell prompt for the current directory.
func Prompt(fs *vfs.Filesystem) string {
	if !fs.Mounted() {
		return "? > "
	}
	return fs.Path() + " > "
}
