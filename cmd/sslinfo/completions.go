package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type completeFunc func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)

// flagCompletion pairs a flag with the suggestions offered for its value.
type flagCompletion struct {
	flag     string
	complete completeFunc
}

// registerCompletions attaches value suggestions to flags of cmd. A flag
// missing from cmd is a wiring bug and panics at init.
func registerCompletions(cmd *cobra.Command, fcs ...flagCompletion) {
	for _, fc := range fcs {
		if err := cmd.RegisterFlagCompletionFunc(fc.flag, fc.complete); err != nil {
			panic(fmt.Sprintf("%s --%s: %v", cmd.Name(), fc.flag, err))
		}
	}
}

// enumCompletion offers the values an enumValue accepts.
func enumCompletion(v *enumValue) completeFunc {
	return fixedCompletion(v.allowed...)
}

// fixedCompletion offers values and never falls back to file names.
func fixedCompletion(values ...string) completeFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// certFileCompletion offers files with the extensions sslinfo reads, or any
// file when none match.
func certFileCompletion(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"pem", "crt", "cer", "der", "crl", "p7b", "p7c", "p12", "pfx", "jks", "key"}, cobra.ShellCompDirectiveFilterFileExt
}
