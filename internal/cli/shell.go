package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/calvinalkan/slots/pkg/slots"
)

// shellCommand describes one shell command for help and completion.
type shellCommand struct {
	Usage string
	Short string
	// MinArgs is checked before exec runs. Value-taking commands accept
	// any number of extra words and join them.
	MinArgs int
	MaxArgs int // -1 means unbounded
	exec    func(s *Shell, args []string) error
}

// Name returns the command name (first word of Usage).
func (c shellCommand) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the short help line for the help listing.
func (c shellCommand) HelpLine() string {
	return fmt.Sprintf("  %-22s %s", c.Usage, c.Short)
}

// shellCommands lists the commands in help order.
func shellCommands() []shellCommand {
	return []shellCommand{
		{Usage: "store <value>", Short: "Store a value, print its slot", MinArgs: 1, MaxArgs: -1, exec: (*Shell).cmdStore},
		{Usage: "get <ref>", Short: "Print the value behind a key", MinArgs: 1, MaxArgs: 1, exec: (*Shell).cmdGet},
		{Usage: "modify <ref> <value>", Short: "Replace the value behind a key", MinArgs: 2, MaxArgs: -1, exec: (*Shell).cmdModify},
		{Usage: "take <ref>", Short: "Remove and print the value behind a key", MinArgs: 1, MaxArgs: 1, exec: (*Shell).cmdTake},
		{Usage: "peek <slot>", Short: "Print a slot by raw index, if occupied", MinArgs: 1, MaxArgs: 1, exec: (*Shell).cmdPeek},
		{Usage: "dup <ref>", Short: "Copy a relaxed key, print the copy's ref", MinArgs: 1, MaxArgs: 1, exec: (*Shell).cmdDup},
		{Usage: "ls", Short: "List occupied slots in storage order", exec: (*Shell).cmdLs},
		{Usage: "count", Short: "Print occupied/capacity", exec: (*Shell).cmdCount},
		{Usage: "info", Short: "Show collection info", exec: (*Shell).cmdInfo},
		{Usage: "save <path>", Short: "Write a JSON snapshot of occupied slots", MinArgs: 1, MaxArgs: 1, exec: (*Shell).cmdSave},
		{Usage: "help", Short: "Show this help", exec: (*Shell).cmdHelp},
		{Usage: "exit", Short: "Leave the shell (also quit, q)"},
	}
}

var exitAliases = map[string]bool{"exit": true, "quit": true, "q": true}

// Shell executes slotsctl commands against one collection.
type Shell struct {
	io      *IO
	tbl     table
	log     *zap.Logger
	workDir string
}

func newShell(o *IO, cfg Config, log *zap.Logger) *Shell {
	tbl := newTable(cfg)

	log.Debug("collection created",
		zap.String("mode", tbl.mode()),
		zap.Int("capacity", tbl.capacity()),
		zap.String("detail", tbl.describe()))

	return &Shell{io: o, tbl: tbl, log: log, workDir: cfg.EffectiveCwd}
}

// Exec runs one command line. It reports quit=true for exit commands.
func (s *Shell) Exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	if exitAliases[name] {
		return true, nil
	}

	for _, c := range shellCommands() {
		if c.Name() != name || c.exec == nil {
			continue
		}

		if len(args) < c.MinArgs || (c.MaxArgs >= 0 && len(args) > c.MaxArgs) {
			return false, fmt.Errorf("%w: usage: %s", ErrUsage, c.Usage)
		}

		return false, c.exec(s, args)
	}

	return false, fmt.Errorf("%w: %s (type 'help' for commands)", ErrUnknownCommand, name)
}

func (s *Shell) cmdStore(args []string) error {
	value := strings.Join(args, " ")

	slot, err := s.tbl.store(value)
	if err != nil {
		if isCapacityError(err) {
			s.log.Warn("store rejected", zap.Int("capacity", s.tbl.capacity()), zap.Error(err))
		}

		return err
	}

	s.log.Debug("stored", zap.Int("slot", int(slot)), zap.Int("count", s.tbl.count()))
	s.io.Println(int(slot))

	return nil
}

func (s *Shell) cmdGet(args []string) error {
	v, err := s.tbl.get(args[0])
	if err != nil {
		return err
	}

	s.io.Println(v)

	return nil
}

func (s *Shell) cmdModify(args []string) error {
	err := s.tbl.modify(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	s.log.Debug("modified", zap.String("ref", args[0]))

	return nil
}

func (s *Shell) cmdTake(args []string) error {
	v, err := s.tbl.take(args[0])
	if err != nil {
		return err
	}

	s.log.Debug("taken", zap.String("ref", args[0]), zap.Int("count", s.tbl.count()))
	s.io.Println(v)

	return nil
}

func (s *Shell) cmdPeek(args []string) error {
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadSlot, args[0])
	}

	v, ok := s.tbl.peek(slots.Index(i))
	if !ok {
		s.io.Println("(empty)")
		return nil
	}

	s.io.Println(v)

	return nil
}

func (s *Shell) cmdDup(args []string) error {
	ref, err := s.tbl.dup(args[0])
	if err != nil {
		return err
	}

	s.io.Println(ref)

	return nil
}

func (s *Shell) cmdLs([]string) error {
	for i, v := range s.tbl.entries() {
		s.io.Printf("%d\t%s\n", int(i), v)
	}

	return nil
}

func (s *Shell) cmdCount([]string) error {
	s.io.Printf("%d/%d\n", s.tbl.count(), s.tbl.capacity())
	return nil
}

func (s *Shell) cmdInfo([]string) error {
	s.io.Printf("mode=%s capacity=%d count=%d full=%t %s\n",
		s.tbl.mode(), s.tbl.capacity(), s.tbl.count(), s.tbl.count() == s.tbl.capacity(), s.tbl.describe())

	return nil
}

func (s *Shell) cmdSave(args []string) error {
	path := args[0]
	if !filepath.IsAbs(path) && s.workDir != "" {
		path = filepath.Join(s.workDir, path)
	}

	snap := takeSnapshot(s.tbl)

	err := writeSnapshot(path, snap)
	if err != nil {
		return err
	}

	s.log.Info("snapshot saved", zap.String("path", path), zap.Int("slots", len(snap.Slots)))
	s.io.Printf("saved %d slots to %s\n", len(snap.Slots), path)

	return nil
}

func (s *Shell) cmdHelp([]string) error {
	s.io.Println("Commands:")

	for _, c := range shellCommands() {
		s.io.Println(c.HelpLine())
	}

	s.io.Println()
	s.io.Println("A <ref> is a slot number. In relaxed mode <slot>@<n> names the n-th")
	s.io.Println("key held for that slot (see dup); a bare slot uses the newest one.")

	return nil
}

// completions returns command names starting with prefix.
func completions(prefix string) []string {
	var out []string

	lower := strings.ToLower(prefix)
	for _, c := range shellCommands() {
		if strings.HasPrefix(c.Name(), lower) {
			out = append(out, c.Name())
		}
	}

	return out
}
