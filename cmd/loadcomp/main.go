// Command loadcomp loads a WebAssembly Component Model binary and prints a
// census of its decoded index spaces, exercising the full Load/Unload path.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrelwasm/component/component"
	"github.com/kestrelwasm/component/internal/coreloader"
)

var (
	compileCore  bool
	copyBorrowed bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "loadcomp <component.wasm>",
	Short:         "Load a WebAssembly Component Model binary and print its index-space census",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&compileCore, "compile-core", false, "compile each embedded core module through wazero")
	rootCmd.Flags().BoolVar(&copyBorrowed, "copy-borrowed", false, "deep-copy core-module and nested-component byte views instead of borrowing")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log section boundaries and type-decode recursion depth")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer l.Sync() //nolint:errcheck
		component.SetLogger(l)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	if !component.IsComponent(data) {
		return fmt.Errorf("%s is not a WebAssembly component (bad magic or layer)", args[0])
	}

	opts := component.DecodeOptions{
		ParseTypes:        true,
		CopyBorrowedBytes: copyBorrowed,
	}

	var loader *coreloader.WazeroLoader
	if compileCore {
		loader = coreloader.New(cmd.Context())
		defer loader.Close() //nolint:errcheck
		opts.CoreLoader = loader
	}

	comp, err := component.DecodeWithOptions(data, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	defer comp.Unload() //nolint:errcheck

	printCensus(cmd, args[0], comp)
	return nil
}

func printCensus(cmd *cobra.Command, path string, comp *component.Component) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Component: %s\n", path)
	fmt.Fprintf(out, "  core modules:       %d\n", len(comp.CoreModules))
	fmt.Fprintf(out, "  core instances:     %d\n", len(comp.CoreInstances))
	fmt.Fprintf(out, "  core types:         %d\n", len(comp.CoreTypes))
	fmt.Fprintf(out, "  nested components:  %d\n", len(comp.Components))
	fmt.Fprintf(out, "  instances:          %d\n", len(comp.Instances))
	fmt.Fprintf(out, "  aliases:            %d\n", len(comp.Aliases))
	fmt.Fprintf(out, "  types:              %d\n", len(comp.Types))
	fmt.Fprintf(out, "  canonicals:         %d\n", len(comp.Canons))
	fmt.Fprintf(out, "  imports:            %d\n", len(comp.Imports))
	fmt.Fprintf(out, "  exports:            %d\n", len(comp.Exports))
	fmt.Fprintf(out, "  custom sections:    %d\n", len(comp.CustomSections))
	fmt.Fprintf(out, "  type index space:   %d\n", len(comp.TypeIndexSpace))
	if comp.Start != nil {
		fmt.Fprintf(out, "  start func:         #%d (%d args)\n", comp.Start.FuncIndex, len(comp.Start.Args))
	} else {
		fmt.Fprintf(out, "  start func:         none\n")
	}
}
