package mapsg

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ashStableLogic/security-group-mapper/pkg/core"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/awsclients"
	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
	"github.com/ashStableLogic/security-group-mapper/pkg/report"
)

var (
	Cmd = &cobra.Command{
		Use:   "map",
		Short: "Map Security Groups to attached services and write a report",
		Long:  "",
		RunE:  runMap,
	}

	regionArgs *[]string
	output     string
	format     string
)

func runMap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	keysCsv, _ := cmd.Flags().GetString("keys-csv")
	profile, _ := cmd.Flags().GetString("profile")
	regionSource, _ := cmd.Flags().GetString("region-source")

	cfg, err := core.LoadAwsConfig(ctx, keysCsv, profile)
	if err != nil {
		return err
	}

	targetRegions, err := resolveTargetRegions(ctx, cfg, regionSource, *regionArgs)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = report.DefaultFileName(accountLabel(ctx, cfg), format)
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mapping security groups in %d region(s)", len(targetRegions)))

	resultCh := make(chan utils.Result[[]coreTypes.AssociationRecord], 1)
	go func() {
		records, mapErr := core.MapSecurityGroups(ctx, cfg, targetRegions)
		resultCh <- utils.Result[[]coreTypes.AssociationRecord]{Data: records, Err: mapErr}
	}()
	result := <-resultCh

	if result.Err != nil {
		spinner.Fail()
		return result.Err
	}
	spinner.Success()

	if err := report.Write(result.Data, outputPath, format); err != nil {
		return err
	}

	pterm.Success.Printfln("written table with %d security group(s) to %s", len(result.Data), outputPath)
	return nil
}

// resolveTargetRegions turns the --regions argument into the region list to
// scan: every enabled region for 'all', otherwise the requested regions after
// validation against the enabled list.
func resolveTargetRegions(ctx context.Context, cfg aws.Config, regionSource string, requested []string) ([]string, error) {
	lister, err := awsclients.NewRegionLister(cfg, regionSource)
	if err != nil {
		return nil, err
	}

	enabledRegions, err := lister.ListEnabledRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled regions: %w", err)
	}

	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		return enabledRegions, nil
	}

	if err := core.ValidateRegions(requested, enabledRegions); err != nil {
		return nil, err
	}
	return requested, nil
}

// accountLabel resolves the label used in the default report name: the
// account's first IAM alias, falling back to the account ID for accounts
// without one.
func accountLabel(ctx context.Context, cfg aws.Config) string {
	alias, err := awsclients.NewAwsIamClient(cfg).GetAccountAlias(ctx)
	if err == nil && alias != "" {
		return alias
	}

	accountId, err := awsclients.NewAwsStsClient(cfg).GetAccountId(ctx)
	if err != nil || accountId == "" {
		return "aws-account"
	}
	return accountId
}

func init() {
	includeMapFlags(Cmd)
}

func includeMapFlags(cmd *cobra.Command) {
	regionArgs = cmd.Flags().StringSlice("regions", []string{"all"},
		"[Optional] Regions to scan. It can accept multiple values divided by comma. "+
			"Default: 'all' (every enabled region of the account).")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"[Optional] Report file path. Default: '<account alias> security groups and associated services.<format>'.")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatXlsx,
		"[Optional] Report format: 'xlsx' or 'csv'.")
}
