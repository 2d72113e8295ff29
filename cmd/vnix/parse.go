package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/architector1324/vnix/pkg/unit"
)

var parseCmd = &cobra.Command{
	Use:   "parse <unit>",
	Short: "Parse a unit source text and print its canonical rendering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := unit.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Println(u)
		return nil
	},
}
