package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashStableLogic/security-group-mapper/cmd/mapsg"
	"github.com/ashStableLogic/security-group-mapper/cmd/regions"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/awsclients"
)

// Execute - parse CLI arguments and execute command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Println("There was an error while executing sg-mapper!", err)
		os.Exit(1)
	}
}

var (
	appVersion = "development"
	gitCommit  = "commit"
	rootCmd    = &cobra.Command{
		Use:              "sg-mapper",
		Short:            "Map AWS Security Groups to the services attached to them.",
		Long:             ``,
		Version:          fmt.Sprintf("%s (%s)", appVersion, gitCommit),
		TraverseChildren: true,
		SilenceUsage:     true,
	}
)

func init() {
	includeRootFlags(rootCmd)
	rootCmd.AddCommand(mapsg.Cmd)
	rootCmd.AddCommand(regions.Cmd)
}

func includeRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("keys-csv", "",
		"[Optional] Path to an access keys CSV file: a header row, then access key id, secret and optional session token. "+
			"When omitted the default credential chain is used.")
	cmd.PersistentFlags().String("profile", "",
		"[Optional] Profile.")
	cmd.PersistentFlags().String("region-source", awsclients.RegionSourceEc2,
		"[Optional] Source of the enabled region list: 'ec2' or 'account'.")
}
