package cmd

import (
	"github.com/spf13/cobra"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Produce and inspect indices",
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
