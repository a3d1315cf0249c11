package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// RdsApi is the subset of the RDS client used by AwsRdsClient.
type RdsApi interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

type AwsRdsClient struct {
	client RdsApi
	index  *groupIndex[rdsTypes.DBInstance]
}

func NewAwsRdsClient(cfg aws.Config) *AwsRdsClient {
	return &AwsRdsClient{
		client: rds.NewFromConfig(cfg),
		index:  newGroupIndex[rdsTypes.DBInstance](),
	}
}

func (c *AwsRdsClient) Kind() coreTypes.ServiceKind { return coreTypes.Rds }

func (c *AwsRdsClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the DB instances whose VPC security groups include the
// Security Group, building the region-wide index on first use.
func (c *AwsRdsClient) ListForGroup(ctx context.Context, groupID string) ([]rdsTypes.DBInstance, error) {
	return c.index.lookup(ctx, groupID, c.loadDbInstances)
}

// NamesForGroup maps the DB instances referencing the Security Group to their identifiers.
func (c *AwsRdsClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	dbInstances, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dbInstances))
	for _, dbInstance := range dbInstances {
		names = append(names, aws.ToString(dbInstance.DBInstanceIdentifier))
	}
	return names, nil
}

func (c *AwsRdsClient) loadDbInstances(ctx context.Context, add func(groupID string, dbInstance rdsTypes.DBInstance)) error {
	dbInstances, err := utils.FetchAllPages(func(marker *string) ([]rdsTypes.DBInstance, *string, error) {
		dbInstanceResponse, err := c.client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return dbInstanceResponse.DBInstances, dbInstanceResponse.Marker, nil
	})
	if err != nil {
		return err
	}

	for _, dbInstance := range dbInstances {
		for _, vpcSg := range dbInstance.VpcSecurityGroups {
			if vpcSg.VpcSecurityGroupId != nil {
				add(*vpcSg.VpcSecurityGroupId, dbInstance)
			}
		}
	}
	return nil
}
