/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "profiler-bridge",
	Short: "Typed request/response calls over the WebChannel broadcast pair",
	Long: `profiler-bridge layers typed request/response calls on top of the
fire-and-forget WebChannel event pair the Firefox profiler uses, with a
simulated privileged host to answer them.

Run "profiler-bridge demo" for a scripted exchange or "profiler-bridge
monitor" for a live traffic view.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
