package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

type globalFlags struct {
	fs *flag.FlagSet

	workDir    string
	configPath string
	capacity   int
	mode       string
	noChecks   bool
	exec       string
	verbose    bool
	help       bool
}

func newGlobalFlags() *globalFlags {
	g := &globalFlags{fs: flag.NewFlagSet("slotsctl", flag.ContinueOnError)}

	g.fs.SetInterspersed(false)
	g.fs.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	g.fs.StringVarP(&g.configPath, "config", "c", "", "Use specified config `file`")
	g.fs.IntVarP(&g.capacity, "capacity", "n", 0, "Number of slots")
	g.fs.StringVarP(&g.mode, "mode", "m", "", "Key discipline: strict, relaxed or unrestricted")
	g.fs.BoolVar(&g.noChecks, "no-checks", false, "Disable owner checks on strict keys")
	g.fs.StringVarP(&g.exec, "exec", "e", "", "Run `commands` separated by ';' and exit")
	g.fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log allocator events to stderr")
	g.fs.BoolVarP(&g.help, "help", "h", false, "Show help")

	return g
}

// overrides converts explicitly given flags into config overrides.
func (g *globalFlags) overrides(input *LoadConfigInput) {
	if g.fs.Changed("capacity") {
		capacity := g.capacity
		input.Capacity = &capacity
	}

	if g.fs.Changed("mode") {
		mode := g.mode
		input.Mode = &mode
	}

	if g.noChecks {
		checks := false
		input.RuntimeChecks = &checks
	}
}

// Run is the main entry point. Returns exit code.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(out, errOut)
	g := newGlobalFlags()
	g.fs.SetOutput(&strings.Builder{}) // discard pflag output

	if len(args) > 0 {
		args = args[1:]
	}

	err := g.fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(o, g)
			return exitOK
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		printUsage(NewIO(errOut, errOut), g)

		return exitError
	}

	if g.help {
		printUsage(o, g)
		return exitOK
	}

	input := LoadConfigInput{
		WorkDirOverride: g.workDir,
		ConfigPath:      g.configPath,
		Env:             env,
	}
	g.overrides(&input)

	cfg, err := LoadConfig(input)
	if err != nil {
		o.ErrPrintln("error:", err)
		return exitError
	}

	rest := g.fs.Args()
	if len(rest) > 0 {
		switch rest[0] {
		case "print-config":
			return cmdPrintConfig(o, cfg)
		default:
			o.ErrPrintln("error:", ErrUnknownCommand.Error()+":", rest[0])
			printUsage(NewIO(errOut, errOut), g)

			return exitError
		}
	}

	log := newLogger(errOut, g.verbose)
	defer func() { _ = log.Sync() }()

	sh := newShell(o, cfg, log)

	switch {
	case g.fs.Changed("exec"):
		err = runScript(sh, strings.Split(g.exec, ";"), sigCh)
	case stdin == nil:
		return exitOK
	case isTerminal(stdin):
		err = runInteractive(sh, o, cfg.HistoryFile, sigCh)
	default:
		err = runLines(sh, stdin, sigCh)
	}

	if err != nil {
		o.ErrPrintln("error:", err)

		if errors.Is(err, errInterrupted) {
			return exitInterrupted
		}

		return exitError
	}

	return exitOK
}

func cmdPrintConfig(o *IO, cfg Config) int {
	formatted, err := FormatConfig(cfg)
	if err != nil {
		o.ErrPrintln("error:", err)
		return exitError
	}

	o.Println(formatted)

	// Print sources
	o.Println("")
	o.Println("# Sources:")

	if cfg.Sources.Global != "" {
		o.Println("#   global:", cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("#   project:", cfg.Sources.Project)
	}

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("#   (using defaults only)")
	}

	return exitOK
}

func printUsage(o *IO, g *globalFlags) {
	o.Println(`slotsctl - fixed-capacity slot allocator shell

Usage: slotsctl [flags] [print-config]

With no command, reads shell commands from stdin (interactive when stdin
is a terminal) or from --exec.

Global flags:`)
	o.Printf("%s", g.fs.FlagUsages())
}
