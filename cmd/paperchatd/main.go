package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/paperchat/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperchatd",
		Short: "Paperchat daemon and CLI",
		Long:  "Paperchat daemon for serving the document Q&A API and rebuilding the vector index",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.ReindexCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
