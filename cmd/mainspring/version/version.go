package version

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/flarebyte/mainspring/internal/buildinfo"
	"github.com/flarebyte/mainspring/internal/manifest"
	"github.com/spf13/cobra"
	lua "github.com/yuin/gopher-lua"
)

var (
	flagShort bool
	flagJSON  bool
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagShort || !flagJSON {
			// Exactly one line.
			if _, err := fmt.Fprintf(os.Stdout, "mainspring %s\n", buildinfo.Summary()); err != nil {
				return err
			}
			return nil
		}

		// If JSON is requested explicitly, print a diagnostic object to stdout
		// and a human friendly line to stderr.
		_, _ = fmt.Fprintf(os.Stderr, "mainspring version: %s\n", buildinfo.Summary())
		info := buildinfo.Resolve()
		out := map[string]any{
			"version":           info.Version,
			"commit":            info.Commit,
			"date":              info.Date,
			"built_by":          buildinfo.BuiltBy,
			"lua":               lua.LuaVersion,
			"manifest_versions": manifest.SupportedManifestVersionsCSV(),
			"go":                runtime.Version(),
			"go_os":             runtime.GOOS,
			"go_arch":           runtime.GOARCH,
			"timestamp":         time.Now().UTC().Format(time.RFC3339Nano),
		}
		return encodeJSON(os.Stdout, out)
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
