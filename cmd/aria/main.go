// Command aria is the whole-program AOT compiler frontend's CLI
// entrypoint: `aria <input-files...> [-o <output>]` (§6).
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shkhuz/aria/internal/driver"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.SetFlags(0)
	log.SetPrefix("")

	var output string
	exitCode := 0

	root := &cobra.Command{
		Use:           "aria <input-files...>",
		Short:         "compile a set of .aria source files into an executable",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  false,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = driver.Run(driver.Options{
				Inputs: args,
				Output: output,
			})
			return nil
		},
	}
	root.Flags().StringVarP(&output, "output", "o", "a.out", "path of the produced executable")

	// Unknown flags and a wrong argument count fall through cobra's
	// own usage-and-error path (§6: "unknown flags produce a usage
	// message and exit with status 1").
	if err := root.Execute(); err != nil {
		return 1
	}
	return exitCode
}
