package run

import "fmt"

// exitCodeConfig is EX_CONFIG from sysexits.h. It keeps a broken manifest
// apart from a rejected command line (1) and a failed routine (70).
const exitCodeConfig = 78

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

func configError(format string, args ...any) error {
	return runExitError{code: exitCodeConfig, msg: fmt.Sprintf(format, args...)}
}
