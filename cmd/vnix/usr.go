package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/usr"
)

var usrCmd = &cobra.Command{
	Use:   "usr",
	Short: "Manage user identities",
}

var usrNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Generate a user key pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, out, err := usr.New(args[0], drv.HostRnd{})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	usrCmd.AddCommand(usrNewCmd)
}
