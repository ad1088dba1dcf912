package shell

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/PapiCZ/foxfs/vfs"
	"github.com/PapiCZ/foxfs/vfsapi"
	"github.com/abiosoft/ishell"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

func filesystem(c *ishell.Context) *vfs.Filesystem {
	return c.Get("fs").(*vfs.Filesystem)
}

func ok(c *ishell.Context, message string) {
	c.Println(color.GreenString(message))
}

func fail(c *ishell.Context, err error) {
	status := vfs.StatusOf(err)
	slog.Debug("Command failed", "status", status, "err", err)
	c.Println(color.RedString("%s (%v)", StatusMessage(status), err))
}

func expectArgs(c *ishell.Context, n int) bool {
	if len(c.Args) != n {
		if n == 1 {
			c.Println("expected 1 argument")
		} else {
			c.Printf("expected %d arguments\n", n)
		}
		return false
	}
	return true
}

func Format(c *ishell.Context) {
	if !expectArgs(c, 0) {
		return
	}

	fs := filesystem(c)

	err := fs.Format()
	if err != nil {
		fail(c, err)
		return
	}

	c.SetPrompt(Prompt(fs))
	ok(c, "Filesystem formatted successfully")
}

func Mkfile(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	err := filesystem(c).Create(c.Args[0], vfs.KindFile)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "File created")
}

func Mkdir(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	err := filesystem(c).Create(c.Args[0], vfs.KindDirectory)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Directory created")
}

func Write(c *ishell.Context) {
	if len(c.Args) < 2 {
		c.Println("usage: write <name> <text>")
		return
	}

	text := strings.Join(c.Args[1:], " ")

	err := filesystem(c).Write(c.Args[0], []byte(text))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Write successful")
}

func Read(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	data, err := vfsapi.ReadFile(filesystem(c), c.Args[0])
	if err != nil {
		fail(c, err)
		return
	}

	c.Printf("%s\n", data)
}

func Ls(c *ishell.Context) {
	if !expectArgs(c, 0) {
		return
	}

	entries, err := filesystem(c).List()
	if err != nil {
		fail(c, err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			c.Printf("+ %s\n", entry.Name)
		} else {
			c.Printf("- %s (%s)\n", entry.Name, humanize.Bytes(uint64(entry.Size)))
		}
	}
}

func Rm(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	err := filesystem(c).Delete(c.Args[0])
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "OK")
}

func Cd(c *ishell.Context) {
	if len(c.Args) > 1 {
		c.Println("usage: cd [path]")
		return
	}

	path := ""
	if len(c.Args) == 1 {
		path = c.Args[0]
	}

	fs := filesystem(c)

	transition, err := fs.ChangeDirectory(path)
	if err != nil {
		fail(c, err)
		return
	}

	c.SetPrompt(Prompt(fs))
	c.Println(TransitionMessage(transition, fs.Path()))
}

func Pwd(c *ishell.Context) {
	fs := filesystem(c)
	if !fs.Mounted() {
		fail(c, vfs.Unformatted{})
		return
	}
	c.Println(fs.Path())
}

func Df(c *ishell.Context) {
	fs := filesystem(c)
	if !fs.Mounted() {
		fail(c, vfs.Unformatted{})
		return
	}

	sb := fs.Superblock()
	c.Printf("label:    %s\n", sb.LabelString())
	c.Printf("id:       %s\n", sb.ID())
	c.Printf("capacity: %s (%d blocks of %d bytes)\n",
		humanize.IBytes(uint64(sb.BlockCount)*vfs.BlockSize), sb.BlockCount, vfs.BlockSize)
	c.Printf("free:     %s (%d blocks)\n",
		humanize.IBytes(uint64(sb.FreeBlocks)*vfs.BlockSize), sb.FreeBlocks)
}

func Info(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	info, err := vfsapi.Stat(filesystem(c), c.Args[0])
	if err != nil {
		fail(c, err)
		return
	}

	kind := vfs.KindFile
	if info.IsDir() {
		kind = vfs.KindDirectory
	}

	c.Printf("%s - %s - %s\n", info.Name(), kind, humanize.Bytes(uint64(info.Size())))
	c.Println("Blocks")
	c.Println(strings.Join(BlockPtrsToStrings(info.Blocks()), " "))
}

func Sum(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	sum, err := vfsapi.Digest(filesystem(c), c.Args[0])
	if err != nil {
		fail(c, err)
		return
	}

	c.Printf("%s  %s\n", hex.EncodeToString(sum[:]), c.Args[0])
}

func Check(c *ishell.Context) {
	report, err := vfsapi.FsCheck(filesystem(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.Printf("%d directories, %d files, %d used blocks, %d free blocks\n",
		report.Directories, report.Files, report.UsedBlocks, report.FreeBlocks)
	if report.CounterDrift != 0 {
		c.Println(color.YellowString("free block counter is off by %d", report.CounterDrift))
		return
	}
	ok(c, "OK")
}

func Incp(c *ishell.Context) {
	if !expectArgs(c, 2) {
		return
	}

	err := vfsapi.Import(filesystem(c), c.Args[0], c.Args[1])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.Println("FILE NOT FOUND (no source)")
			return
		}
		fail(c, err)
		return
	}
	ok(c, "OK")
}

func Outcp(c *ishell.Context) {
	if !expectArgs(c, 2) {
		return
	}

	err := vfsapi.Export(filesystem(c), c.Args[0], c.Args[1])
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "OK")
}

func Load(c *ishell.Context) {
	if !expectArgs(c, 1) {
		return
	}

	shell := c.Get("shell").(*ishell.Shell)

	path := c.Args[0]

	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Println("FILE NOT FOUND (no source)")
		} else {
			c.Err(err)
		}
		return
	}

	for _, cmd := range strings.Split(string(bytes), "\n") {
		cmd = strings.TrimSpace(cmd)
		if len(cmd) == 0 || strings.HasPrefix(cmd, "#") {
			continue
		}
		fmt.Println(cmd)

		err = shell.Process(strings.Fields(cmd)...)
		if err != nil {
			c.Err(err)
			return
		}
	}
}
