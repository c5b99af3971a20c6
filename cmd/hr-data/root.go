package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/nicolasimarinw/hr-ontology/pkg/configuration"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hr-data",
		Short:         "HR ontology toolkit: synthetic data, lake, graph and assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newLakeCmd())
	cmd.AddCommand(newGraphCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	err := newRootCmd().Execute()
	configuration.Use().Unload()
	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
