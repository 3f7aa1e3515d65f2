package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanternlabs/lantern/internal/cli"
	"github.com/lanternlabs/lantern/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lanternd",
		Short: "Lantern daemon and CLI",
		Long:  "Lantern daemon for running the journaling API server and managing stored notes",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.NotesCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
