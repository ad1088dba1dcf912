package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/PapiCZ/foxfs/internal/configuration"
	"github.com/PapiCZ/foxfs/shell"
	"github.com/PapiCZ/foxfs/vfs"
	"github.com/abiosoft/ishell"
	"github.com/lmittmann/tint"
	"github.com/timtadh/getopt"
)

var ErrorCodes = map[string]int{
	"usage":  0,
	"opts":   3,
	"config": 4,
	"device": 5,
}

var UsageMessage = "foxfs [options] [image]"
var ExtendedMessage = `
foxfs -- shell over a FOX block filesystem stored in an image file

Options
  -h, --help                view this message
  -c, --config=<path>       read configuration from an env-style file
  -i, --image=<path>        image file backing the disk (default foxfs.img)
  -v, --verbose             log debug messages
  --memory                  use a RAM disk, nothing is persisted
  --format                  format the disk before starting the shell

Configuration keys (file or environment)
  FOXFS_IMAGE, FOXFS_CREATE, FOXFS_LABEL, FOXFS_LOG_LEVEL, FOXFS_AUTOFORMAT
`

func Usage(code int) {
	fmt.Fprintln(os.Stderr, UsageMessage)
	if code == 0 {
		fmt.Fprintln(os.Stdout, ExtendedMessage)
		code = ErrorCodes["usage"]
	} else {
		fmt.Fprintln(os.Stderr, "Try -h or --help for help")
	}
	os.Exit(code)
}

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func openDevice(cfg *configuration.AppConfiguration, memory bool) (vfs.BlockDevice, io.Closer, error) {
	if memory {
		return vfs.NewMemoryDevice(), io.NopCloser(nil), nil
	}

	_, err := os.Stat(cfg.ImagePath)
	if os.IsNotExist(err) && cfg.Create {
		slog.Info("Creating disk image", "path", cfg.ImagePath, "size", vfs.DeviceSize)
		err = vfs.PrepareDeviceFile(cfg.ImagePath)
	}
	if err != nil {
		return nil, nil, err
	}

	device, err := vfs.NewFileDevice(cfg.ImagePath)
	if err != nil {
		return nil, nil, err
	}

	return device, device, nil
}

// mount brings fs up before the shell starts. force formats unconditionally,
// autoFormat only when no filesystem is found.
func mount(fs *vfs.Filesystem, force, autoFormat bool) {
	if !force {
		err := fs.Init()
		switch vfs.StatusOf(err) {
		case vfs.StatusOK:
			slog.Info("Filesystem mounted", "label", fs.Superblock().LabelString(), "free", fs.Superblock().FreeBlocks)
			return
		case vfs.StatusUnformatted:
			if !autoFormat {
				slog.Warn("No filesystem detected, use format")
				return
			}
		default:
			slog.Error("Mount failed", "status", vfs.StatusOf(err), "err", err.Error())
			return
		}
	}

	if err := fs.Format(); err != nil {
		slog.Error("Format failed", "status", vfs.StatusOf(err), "err", err.Error())
	}
}

func main() {
	args, optargs, err := getopt.GetOpt(
		os.Args[1:],
		"hc:i:v",
		[]string{
			"help", "config=", "image=", "verbose", "memory", "format",
		},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}

	configPath := ""
	imagePath := ""
	verbose := false
	memory := false
	format := false
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-h", "--help":
			Usage(0)
		case "-c", "--config":
			configPath = oa.Arg()
		case "-i", "--image":
			imagePath = oa.Arg()
		case "-v", "--verbose":
			verbose = true
		case "--memory":
			memory = true
		case "--format":
			format = true
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag '%v'\n", oa.Opt())
			Usage(ErrorCodes["opts"])
		}
	}
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "At most one image path may be given")
		Usage(ErrorCodes["opts"])
	}
	if len(args) == 1 {
		imagePath = args[0]
	}

	cfg := configuration.NewAppConfiguration()
	var configFiles []string
	if configPath != "" {
		configFiles = append(configFiles, configPath)
	}
	err = configuration.NewConfigProvider().Load(cfg, os.LookupEnv, configFiles...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ErrorCodes["config"])
	}
	if imagePath != "" {
		cfg.ImagePath = imagePath
	}
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	setupLogging(cfg.LogLevel)

	device, closer, err := openDevice(cfg, memory)
	if err != nil {
		slog.Error("Cannot open disk", "path", cfg.ImagePath, "err", err.Error())
		os.Exit(ErrorCodes["device"])
	}
	defer func() {
		_ = closer.Close()
	}()

	fs := vfs.NewFilesystem(device, cfg.Label)
	mount(fs, format, cfg.AutoFormat)

	sh := ishell.New()
	sh.SetPrompt(shell.Prompt(fs))
	sh.Set("fs", fs)
	sh.Set("shell", sh)

	for _, cmd := range commands() {
		sh.AddCmd(cmd)
	}

	sh.Run()
}

func commands() []*ishell.Cmd {
	return []*ishell.Cmd{
		{Name: "format", Help: "format the disk", Func: shell.Format},
		{Name: "mkfile", Help: "mkfile <name>", Func: shell.Mkfile},
		{Name: "mkdir", Help: "mkdir <name>", Func: shell.Mkdir},
		{Name: "write", Help: "write <name> <text>", Func: shell.Write},
		{Name: "read", Help: "read <name>", Func: shell.Read},
		{Name: "ls", Help: "list the current directory", Func: shell.Ls},
		{Name: "rm", Help: "rm <name>", Func: shell.Rm},
		{Name: "cd", Help: "cd [path]", Func: shell.Cd},
		{Name: "pwd", Help: "print the current directory", Func: shell.Pwd},
		{Name: "df", Help: "show capacity and free space", Func: shell.Df},
		{Name: "info", Help: "info <name>", Func: shell.Info},
		{Name: "sum", Help: "sum <name>", Func: shell.Sum},
		{Name: "check", Help: "check filesystem consistency", Func: shell.Check},
		{Name: "incp", Help: "incp <host file> <name>", Func: shell.Incp},
		{Name: "outcp", Help: "outcp <name> <host file>", Func: shell.Outcp},
		{Name: "load", Help: "load <script>", Func: shell.Load},
	}
}
