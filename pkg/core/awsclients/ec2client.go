package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

const MaxResults = 1000

// Ec2Api is the subset of the EC2 client used by AwsEc2Client.
type Ec2Api interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

type AwsEc2Client struct {
	client Ec2Api
}

func NewAwsEc2Client(cfg aws.Config) *AwsEc2Client {
	return &AwsEc2Client{client: ec2.NewFromConfig(cfg)}
}

func (c *AwsEc2Client) Kind() coreTypes.ServiceKind { return coreTypes.Ec2 }

// Capability is DirectLookup: EC2 answers "instances in security group X" as a
// filtered listing call, so there is no index to build.
func (c *AwsEc2Client) Capability() coreTypes.Capability { return coreTypes.DirectLookup }

// DescribeSecurityGroups fetches all the Security Groups of the client's region.
func (c *AwsEc2Client) DescribeSecurityGroups(ctx context.Context) ([]ec2Types.SecurityGroup, error) {
	return utils.FetchAllPages(func(nextToken *string) ([]ec2Types.SecurityGroup, *string, error) {
		sgResponse, err := c.client.DescribeSecurityGroups(ctx,
			&ec2.DescribeSecurityGroupsInput{NextToken: nextToken, MaxResults: aws.Int32(int32(MaxResults))})
		if err != nil {
			return nil, nil, err
		}
		return sgResponse.SecurityGroups, sgResponse.NextToken, nil
	})
}

// DescribeNetworkInterfacesForGroup returns the Network Interfaces which are
// members of the Security Group.
func (c *AwsEc2Client) DescribeNetworkInterfacesForGroup(ctx context.Context, groupID string) ([]ec2Types.NetworkInterface, error) {
	return utils.FetchAllPages(func(nextToken *string) ([]ec2Types.NetworkInterface, *string, error) {
		ifcResponse, err := c.client.DescribeNetworkInterfaces(ctx,
			&ec2.DescribeNetworkInterfacesInput{
				NextToken: nextToken,
				Filters: []ec2Types.Filter{
					{Name: aws.String("group-id"), Values: []string{groupID}},
				},
			})
		if err != nil {
			return nil, nil, err
		}
		return ifcResponse.NetworkInterfaces, ifcResponse.NextToken, nil
	})
}

// ListForGroup returns the EC2 instances whose membership includes the Security Group.
func (c *AwsEc2Client) ListForGroup(ctx context.Context, groupID string) ([]ec2Types.Instance, error) {
	reservations, err := utils.FetchAllPages(func(nextToken *string) ([]ec2Types.Reservation, *string, error) {
		instanceResponse, err := c.client.DescribeInstances(ctx,
			&ec2.DescribeInstancesInput{
				NextToken: nextToken,
				Filters: []ec2Types.Filter{
					{Name: aws.String("instance.group-id"), Values: []string{groupID}},
				},
			})
		if err != nil {
			return nil, nil, err
		}
		return instanceResponse.Reservations, instanceResponse.NextToken, nil
	})
	if err != nil {
		return nil, err
	}

	instances := make([]ec2Types.Instance, 0)
	for _, reservation := range reservations {
		instances = append(instances, reservation.Instances...)
	}
	return instances, nil
}

// NamesForGroup maps the instances attached to the Security Group to the values
// of their Name tags.
func (c *AwsEc2Client) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	instances, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(instances))
	for _, instance := range instances {
		for _, tag := range instance.Tags {
			if aws.ToString(tag.Key) == "Name" {
				names = append(names, aws.ToString(tag.Value))
			}
		}
	}
	return names, nil
}

// ListEnabledRegions returns the regions enabled for the account according to
// EC2's own region listing. Use when the caller has no permission for the
// Account service's region list.
func (c *AwsEc2Client) ListEnabledRegions(ctx context.Context) ([]string, error) {
	regionResponse, err := c.client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{AllRegions: aws.Bool(false)})
	if err != nil {
		return nil, err
	}

	regions := make([]string, 0, len(regionResponse.Regions))
	for _, region := range regionResponse.Regions {
		if region.RegionName != nil {
			regions = append(regions, *region.RegionName)
		}
	}
	return regions, nil
}
