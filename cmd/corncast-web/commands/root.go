// Package commands holds the corncast-web command line.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	envFile string
	addr    string
)

// Version is stamped at build time with -ldflags "-X ...commands.Version=...".
var Version = "dev"

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:          "corncast-web",
		Short:        "Server-rendered front end for the maize yield prediction API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with local overrides")
	root.Flags().StringVar(&addr, "addr", "", "listen address (overrides CORNCAST_HTTP_ADDR)")

	root.AddCommand(serveCmd(), versionCmd())
	return root.Execute()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides CORNCAST_HTTP_ADDR)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}
