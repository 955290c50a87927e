package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/flarebyte/mainspring/cmd/mainspring/root"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command tree and returns the process status. `run`
// terminates the process itself once a scripted program has been started.
func run(args []string, stderr io.Writer) int {
	err := root.Execute(args)
	if err == nil {
		return 0
	}
	// Print a short, single-line error to stderr on failures.
	// Do not print usage or stack traces.
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if msg == "" {
		msg = "error"
	}
	_, _ = io.WriteString(stderr, msg+"\n")
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return 1
}
