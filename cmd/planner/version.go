package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the build version",
		Annotations: map[string]string{skipContainer: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "planner", app.BuildVersion())
		},
	}
}
