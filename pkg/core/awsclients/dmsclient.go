package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	dms "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice"
	dmsTypes "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// DmsApi is the subset of the DMS client used by AwsDmsClient.
type DmsApi interface {
	DescribeReplicationInstances(ctx context.Context, params *dms.DescribeReplicationInstancesInput, optFns ...func(*dms.Options)) (*dms.DescribeReplicationInstancesOutput, error)
}

type AwsDmsClient struct {
	client DmsApi
	index  *groupIndex[dmsTypes.ReplicationInstance]
}

func NewAwsDmsClient(cfg aws.Config) *AwsDmsClient {
	return &AwsDmsClient{
		client: dms.NewFromConfig(cfg),
		index:  newGroupIndex[dmsTypes.ReplicationInstance](),
	}
}

func (c *AwsDmsClient) Kind() coreTypes.ServiceKind { return coreTypes.Dms }

func (c *AwsDmsClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the replication instances whose VPC security groups
// include the Security Group, building the region-wide index on first use.
func (c *AwsDmsClient) ListForGroup(ctx context.Context, groupID string) ([]dmsTypes.ReplicationInstance, error) {
	return c.index.lookup(ctx, groupID, c.loadReplicationInstances)
}

// NamesForGroup maps the replication instances referencing the Security Group
// to their identifiers.
func (c *AwsDmsClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	replicationInstances, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(replicationInstances))
	for _, replicationInstance := range replicationInstances {
		names = append(names, aws.ToString(replicationInstance.ReplicationInstanceIdentifier))
	}
	return names, nil
}

func (c *AwsDmsClient) loadReplicationInstances(ctx context.Context, add func(groupID string, replicationInstance dmsTypes.ReplicationInstance)) error {
	replicationInstances, err := utils.FetchAllPages(func(marker *string) ([]dmsTypes.ReplicationInstance, *string, error) {
		instanceResponse, err := c.client.DescribeReplicationInstances(ctx,
			&dms.DescribeReplicationInstancesInput{Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return instanceResponse.ReplicationInstances, instanceResponse.Marker, nil
	})
	if err != nil {
		return err
	}

	for _, replicationInstance := range replicationInstances {
		for _, vpcSg := range replicationInstance.VpcSecurityGroups {
			if vpcSg.VpcSecurityGroupId != nil {
				add(*vpcSg.VpcSecurityGroupId, replicationInstance)
			}
		}
	}
	return nil
}
