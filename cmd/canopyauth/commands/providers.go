package commands

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/canopyhq/canopy/pkg/auth"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered authentication providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := setup()
		if err != nil {
			return err
		}
		defer ctx.Fini()

		active, _ := ctx.Loaded()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Active"})
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetBorder(false)

		for _, name := range auth.Providers() {
			mark := ""
			if name == active {
				mark = "*"
			}
			table.Append([]string{name, mark})
		}
		table.Render()
		return nil
	},
}
