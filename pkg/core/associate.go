package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/go-set"
	"github.com/pterm/pterm"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
)

// MapSecurityGroups maps every security group of each target region to the
// services attached to it, one record per group, in region order. Any region
// failing mid-scan aborts the whole run: no partial records are returned.
func MapSecurityGroups(ctx context.Context, cfg aws.Config, regions []string) ([]coreTypes.AssociationRecord, error) {
	records := make([]coreTypes.AssociationRecord, 0)
	for _, region := range regions {
		regionRecords, err := MapRegion(ctx, NewRegionContext(cfg, region))
		if err != nil {
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				return nil, fmt.Errorf("mapping security groups in %s: %s: %w", region, apiErr.ErrorCode(), err)
			}
			return nil, fmt.Errorf("mapping security groups in %s: %w", region, err)
		}
		records = append(records, regionRecords...)
		pterm.Success.Printfln("fetched services for %s", region)
	}
	return records, nil
}

// MapRegion maps the security groups of a single region: list the groups, list
// the network interfaces of each group, classify the interfaces, then ask each
// classified service type for the names of its resources in the group.
func MapRegion(ctx context.Context, regionCtx *RegionContext) ([]coreTypes.AssociationRecord, error) {
	securityGroups, err := regionCtx.Groups.DescribeSecurityGroups(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]coreTypes.AssociationRecord, 0, len(securityGroups))
	for _, sg := range securityGroups {
		record := coreTypes.AssociationRecord{
			GroupID:   aws.ToString(sg.GroupId),
			GroupName: aws.ToString(sg.GroupName),
			Region:    regionCtx.Region,
			Services:  make(map[coreTypes.ServiceKind]string),
		}

		networkInterfaces, err := regionCtx.Groups.DescribeNetworkInterfacesForGroup(ctx, record.GroupID)
		if err != nil {
			return nil, err
		}

		// Deduplicate across interfaces so each kind is queried at most once
		// per group, no matter how many interfaces triggered it.
		kinds := set.New[coreTypes.ServiceKind](len(networkInterfaces))
		for _, eni := range networkInterfaces {
			if kind, ok := ClassifyNetworkInterface(eni); ok {
				kinds.Insert(kind)
			}
		}

		for _, kind := range coreTypes.AllServiceKinds() {
			if !kinds.Contains(kind) {
				record.Services[kind] = ""
				continue
			}
			names, err := regionCtx.Services[kind].NamesForGroup(ctx, record.GroupID)
			if err != nil {
				return nil, err
			}
			record.Services[kind] = strings.Join(names, "\n")
		}

		records = append(records, record)
	}

	return records, nil
}
