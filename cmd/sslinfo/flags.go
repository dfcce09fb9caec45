package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   string
	allowed []string
	name    string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnum(name, def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed, name: name}
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(s)
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
	}
	e.value = s
	return nil
}

func (e *enumValue) Type() string { return e.name }

// useColor resolves a --color mode against the output stream.
func useColor(mode string, out *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := out.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
