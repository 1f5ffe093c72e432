// Package cli содержит команды campushub поверх тех же сервисов, что и локальный сервер.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Guneet-syan/Neural-Breach/internal/delivery/httpd"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var ErrUsage = errors.New("usage error")

// Application: то, что командам нужно от собранного приложения
type Application interface {
	Services() httpd.Services
	Serve(ctx context.Context) error
	Close() error
}

type Factory func(ctx context.Context) (Application, error)

type command struct {
	usage string
	run   func(ctx context.Context, a Application, args []string) error
}

type CLI struct {
	newApp   Factory
	in       *bufio.Reader
	out      io.Writer
	logger   zerolog.Logger
	commands map[string]command

	// readPassword читает пароль без эха; подменяется в тестах
	readPassword func() (string, error)
}

func New(newApp Factory, in io.Reader, out io.Writer, logger zerolog.Logger) *CLI {
	c := &CLI{
		newApp: newApp,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
	c.readPassword = c.terminalPassword
	c.commands = c.register()
	return c
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		c.Usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	cmd, ok := c.commands[args[0]]
	if !ok {
		c.Usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	a, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close application")
		}
	}()

	return cmd.run(ctx, a, args[1:])
}

func (c *CLI) Usage() {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out, "Usage: campushub <command> [flags]")
	fmt.Fprintln(c.out)
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, c.commands[name].usage)
	}
	w.Flush()
}

func (c *CLI) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func (c *CLI) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func (c *CLI) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) terminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return c.prompt("Password: ")
	}

	fmt.Fprint(c.out, "Password: ")
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

func (c *CLI) table(header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func (c *CLI) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
