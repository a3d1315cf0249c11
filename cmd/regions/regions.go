package regions

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ashStableLogic/security-group-mapper/pkg/core"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/awsclients"
)

var Cmd = &cobra.Command{
	Use:   "regions",
	Short: "List the enabled regions of the account",
	Long:  "",
	RunE:  runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	keysCsv, _ := cmd.Flags().GetString("keys-csv")
	profile, _ := cmd.Flags().GetString("profile")
	regionSource, _ := cmd.Flags().GetString("region-source")

	cfg, err := core.LoadAwsConfig(ctx, keysCsv, profile)
	if err != nil {
		return err
	}

	lister, err := awsclients.NewRegionLister(cfg, regionSource)
	if err != nil {
		return err
	}

	enabledRegions, err := lister.ListEnabledRegions(ctx)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printf("Enabled regions (%s source)", regionSource)
	items := make([]pterm.BulletListItem, 0, len(enabledRegions))
	for _, region := range enabledRegions {
		items = append(items, pterm.BulletListItem{Level: 0, Text: region})
	}
	return pterm.DefaultBulletList.WithItems(items).Render()
}
