package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophblog/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:           "server",
		Short:         "GophBlog server: articles, users and JWT tokens over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          serve.RunE,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		serve,
		newMigrateCommand(),
		newPruneTokensCommand(),
		newRoutesCommand(),
		newVersionCommand(),
	)

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd)
		},
	}
}

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "GophBlog Server\n")
	fmt.Fprintf(out, "Version:    %s\n", Version)
	fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
}
