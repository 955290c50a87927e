package run

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/flarebyte/mainspring"
	"github.com/flarebyte/mainspring/flags"
	"github.com/flarebyte/mainspring/internal/gitinfo"
	"github.com/flarebyte/mainspring/internal/luaroutine"
	"github.com/flarebyte/mainspring/internal/manifest"
	"github.com/flarebyte/mainspring/logging"
	"github.com/spf13/cobra"
)

// exitFunc terminates the process once the scripted program has finished.
var exitFunc = os.Exit

// Program is a manifest turned into a ready engine.
type Program struct {
	Manifest *manifest.Manifest
	Version  string
	Flags    *flags.Set
	Script   *luaroutine.Script
	Engine   *mainspring.Engine
}

// Prepare loads the manifest at path, compiles its script and registers it
// on a new engine. Usage, help and version go to out; logs and the engine's
// error channel go to errOut. Failures carry exit code 78.
func Prepare(path string, out, errOut io.Writer) (*Program, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, configError("%v", err)
	}
	version, err := gitinfo.Version(m.Version, m.Dir)
	if err != nil {
		return nil, configError("failed to resolve version: %v", err)
	}
	lv := new(slog.LevelVar)
	logger := logging.New(lv, "text", errOut)
	set, err := m.FlagSet(version, lv, flags.WithOutput(out, errOut))
	if err != nil {
		return nil, configError("invalid flags: %v", err)
	}
	script, err := luaroutine.Compile(m.ScriptPath(), m.LuaSandbox())
	if err != nil {
		return nil, configError("%v", err)
	}
	engine := mainspring.New(
		mainspring.WithParser(m.Parser(set)),
		mainspring.WithLogger(logger),
		mainspring.WithExitFunc(func(code int) {
			script.Close()
			exitFunc(code)
		}),
	)
	if err := engine.Register(script.Routine()); err != nil {
		script.Close()
		return nil, configError("%v", err)
	}
	logger.Debug("program ready", "name", m.Name, "version", version, "arity", script.Arity, "variadic", script.Variadic)
	return &Program{Manifest: m, Version: version, Flags: set, Script: script, Engine: engine}, nil
}

// NewCmd builds the `mainspring run` command. Everything after the manifest
// belongs to the scripted program, so cobra does not parse flags here.
func NewCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "run MANIFEST [ARGS...]",
		Short:              "Run the Lua program described by a manifest",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return configError("missing required argument: MANIFEST")
			}
			if args[0] == "-h" || args[0] == "--help" {
				return cmd.Help()
			}
			p, err := Prepare(args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p.Engine.Go(ctx, args[1:])
			return nil
		},
	}
}
