package domain

import (
	"io"
	"strings"
)

// Command describes a child process invocation.
type Command struct {
	// Name is the executable, resolved through PATH when not absolute.
	Name string

	// Args are passed to the executable verbatim.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds KEY=VALUE pairs appended to the inherited environment.
	// Later entries win over inherited ones.
	Env []string

	// Stdout and Stderr override the runner's default streams when set.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
