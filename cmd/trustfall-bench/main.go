// Command trustfall-bench drives the interpreter against the in-memory numbers schema
// (numbersadapter) for one of the built-in scenarios, printing every result row as JSON
// followed by a timing summary. It exists to exercise InterpretQuery end to end from the
// command line, as a runnable entrypoint on top of the library packages rather than leaving
// them test-only.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trustfall-go/trustfall/interpreter"
	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/jsonwriter"
	"github.com/trustfall-go/trustfall/numbersadapter"
	"github.com/trustfall-go/trustfall/value"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trustfall-bench",
		Short: "Run a built-in numbersadapter scenario through the interpreter",
	}
	root.AddCommand(newListCmd())
	root.AddCommand(newRunCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in scenario names",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range numbersadapter.ScenarioNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var varsFile string
	var trace bool

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Execute one built-in scenario and print its rows as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := numbersadapter.LookupScenario(args[0])
			if err != nil {
				return err
			}

			queryArgs := scenario.Args
			if varsFile != "" {
				overrides, err := loadVarsFile(varsFile)
				if err != nil {
					return err
				}
				queryArgs = mergeArgs(queryArgs, overrides)
			}

			var opts []interpreter.Option
			if trace {
				opts = append(opts, interpreter.WithTrace())
			}

			start := time.Now()
			result, err := interpreter.InterpretQuery(cmd.Context(), numbersadapter.New(), scenario.Query, queryArgs, opts...)
			if err != nil {
				return err
			}

			rows, err := iterator.Collect(result.Rows)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stream := jsonwriter.NewStream(cmd.OutOrStdout())
			for _, row := range rows {
				stream.WriteValue(row)
				stream.WriteRawString("\n")
			}
			if err := stream.Flush(); err != nil {
				return err
			}
			if err := stream.Error(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# %d row(s) in %s\n", len(rows), elapsed)
			if trace {
				fmt.Fprintf(cmd.OutOrStdout(), "# %d trace event(s), trace id %s\n", len(result.Trace.Events), result.Trace.TraceID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&varsFile, "vars-file", "", "YAML file of scalar variable overrides")
	cmd.Flags().BoolVar(&trace, "trace", false, "record and summarize a trace alongside the run")
	return cmd
}

// loadVarsFile parses a flat YAML mapping of variable name to scalar value (string, int, float,
// or bool) into the interpreter's argument-binding shape.
func loadVarsFile(path string) (map[string]value.Value, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trustfall-bench: reading vars file: %w", err)
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("trustfall-bench: parsing vars file: %w", err)
	}

	out := make(map[string]value.Value, len(parsed))
	for name, v := range parsed {
		switch t := v.(type) {
		case string:
			out[name] = value.NewString(t)
		case int:
			out[name] = value.NewInt64(int64(t))
		case int64:
			out[name] = value.NewInt64(t)
		case float64:
			out[name] = value.NewFloat64(t)
		case bool:
			out[name] = value.NewBool(t)
		default:
			return nil, fmt.Errorf("trustfall-bench: variable %q has unsupported YAML type %T", name, v)
		}
	}
	return out, nil
}

func mergeArgs(base, overrides map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
