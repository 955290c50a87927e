package check

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/flarebyte/mainspring/cmd/mainspring/run"
	"github.com/spf13/cobra"
)

type report struct {
	OK       bool     `json:"ok"`
	Name     string   `json:"name"`
	Version  string   `json:"version,omitempty"`
	Arity    int      `json:"arity"`
	Variadic bool     `json:"variadic"`
	Flags    []string `json:"flags"`
}

// NewCmd builds `mainspring check`, which validates a manifest and compiles
// its script without running it.
func NewCmd() *cobra.Command {
	var showUsage bool
	cmd := &cobra.Command{
		Use:           "check MANIFEST",
		Short:         "Validate a manifest and compile its script",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := run.Prepare(args[0], io.Discard, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Script.Close()

			if showUsage {
				_, err := fmt.Fprint(cmd.OutOrStdout(), p.Flags.Usage())
				return err
			}
			names := make([]string, 0, len(p.Manifest.Flags))
			for _, f := range p.Manifest.Flags {
				names = append(names, f.Name)
			}
			sort.Strings(names)
			// Success output must be a single JSON line.
			return encodeJSON(cmd.OutOrStdout(), report{
				OK:       true,
				Name:     p.Manifest.Name,
				Version:  p.Version,
				Arity:    p.Script.Arity,
				Variadic: p.Script.Variadic,
				Flags:    names,
			})
		},
	}
	cmd.Flags().BoolVar(&showUsage, "usage", false, "Print the program's usage text instead of the JSON report")
	return cmd
}

func encodeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
