package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	redshiftTypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// RedshiftApi is the subset of the Redshift client used by AwsRedshiftClient.
type RedshiftApi interface {
	DescribeClusters(ctx context.Context, params *redshift.DescribeClustersInput, optFns ...func(*redshift.Options)) (*redshift.DescribeClustersOutput, error)
}

type AwsRedshiftClient struct {
	client RedshiftApi
	index  *groupIndex[redshiftTypes.Cluster]
}

func NewAwsRedshiftClient(cfg aws.Config) *AwsRedshiftClient {
	return &AwsRedshiftClient{
		client: redshift.NewFromConfig(cfg),
		index:  newGroupIndex[redshiftTypes.Cluster](),
	}
}

func (c *AwsRedshiftClient) Kind() coreTypes.ServiceKind { return coreTypes.Redshift }

func (c *AwsRedshiftClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the Redshift clusters whose VPC security groups include
// the Security Group, building the region-wide index on first use.
func (c *AwsRedshiftClient) ListForGroup(ctx context.Context, groupID string) ([]redshiftTypes.Cluster, error) {
	return c.index.lookup(ctx, groupID, c.loadClusters)
}

// NamesForGroup maps the clusters referencing the Security Group to their identifiers.
func (c *AwsRedshiftClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	clusters, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(clusters))
	for _, cluster := range clusters {
		names = append(names, aws.ToString(cluster.ClusterIdentifier))
	}
	return names, nil
}

func (c *AwsRedshiftClient) loadClusters(ctx context.Context, add func(groupID string, cluster redshiftTypes.Cluster)) error {
	clusters, err := utils.FetchAllPages(func(marker *string) ([]redshiftTypes.Cluster, *string, error) {
		clusterResponse, err := c.client.DescribeClusters(ctx, &redshift.DescribeClustersInput{Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return clusterResponse.Clusters, clusterResponse.Marker, nil
	})
	if err != nil {
		return err
	}

	for _, cluster := range clusters {
		for _, vpcSg := range cluster.VpcSecurityGroups {
			if vpcSg.VpcSecurityGroupId != nil {
				add(*vpcSg.VpcSecurityGroupId, cluster)
			}
		}
	}
	return nil
}
