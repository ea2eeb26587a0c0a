package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/a68go/a68go/a68"
	"github.com/a68go/a68go/syntax"
	"github.com/a68go/a68go/transput"
)

var (
	runExpression  bool
	runUnoptimised bool
	runTimeLimit   time.Duration
	runStackLimit  int
	runFrameLimit  int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run programs",
	Long:  `Run programs supplied via the command line or files.`,
	Run: func(cmd *cobra.Command, args []string) {
		sources, err := runReadSources(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for i := range sources {
			if err := runSource(sources[i].name, sources[i].text); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	},
}

type source struct {
	name string
	text string
}

func runReadSources(args []string) ([]source, error) {
	sources := make([]source, len(args))
	if runExpression {
		for i := range args {
			sources[i] = source{name: "argument", text: args[i]}
		}
		return sources, nil
	}
	for i, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources[i] = source{name: path, text: string(b)}
	}
	return sources, nil
}

func runSource(name, text string) error {
	prog, err := syntax.Compile(name, text, transput.Builtins())
	if err != nil {
		return err
	}
	g := a68.New(prog)
	g.Unoptimised = runUnoptimised
	g.StackLimit = runStackLimit
	g.FrameLimit = runFrameLimit
	if runTimeLimit > 0 {
		g.Deadline = time.Now().Add(runTimeLimit)
	}
	return g.Run()
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as program text")
	runCmd.Flags().BoolVar(&runUnoptimised, "unoptimised", false,
		"Bypass the self-optimizing dispatch cache")
	runCmd.Flags().DurationVar(&runTimeLimit, "time-limit", 0,
		"Abort execution after the given duration")
	runCmd.Flags().IntVar(&runStackLimit, "stack-limit", 0,
		"Value stack byte limit (0 for the default)")
	runCmd.Flags().IntVar(&runFrameLimit, "frame-limit", 0,
		"Frame stack depth limit (0 for the default)")
}
