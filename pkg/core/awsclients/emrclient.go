package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrTypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// Only clusters in these states still hold on to their security groups.
var emrClusterStates = []emrTypes.ClusterState{
	emrTypes.ClusterStateStarting,
	emrTypes.ClusterStateBootstrapping,
	emrTypes.ClusterStateRunning,
	emrTypes.ClusterStateWaiting,
}

// EmrApi is the subset of the EMR client used by AwsEmrClient.
type EmrApi interface {
	ListClusters(ctx context.Context, params *emr.ListClustersInput, optFns ...func(*emr.Options)) (*emr.ListClustersOutput, error)
	DescribeCluster(ctx context.Context, params *emr.DescribeClusterInput, optFns ...func(*emr.Options)) (*emr.DescribeClusterOutput, error)
}

type AwsEmrClient struct {
	client EmrApi
	index  *groupIndex[emrTypes.Cluster]
}

func NewAwsEmrClient(cfg aws.Config) *AwsEmrClient {
	return &AwsEmrClient{
		client: emr.NewFromConfig(cfg),
		index:  newGroupIndex[emrTypes.Cluster](),
	}
}

func (c *AwsEmrClient) Kind() coreTypes.ServiceKind { return coreTypes.Emr }

func (c *AwsEmrClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the EMR clusters attached to the Security Group,
// building the region-wide index on first use.
func (c *AwsEmrClient) ListForGroup(ctx context.Context, groupID string) ([]emrTypes.Cluster, error) {
	return c.index.lookup(ctx, groupID, c.loadClusters)
}

// NamesForGroup maps the clusters attached to the Security Group to their cluster names.
func (c *AwsEmrClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	clusters, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(clusters))
	for _, cluster := range clusters {
		names = append(names, aws.ToString(cluster.Name))
	}
	return names, nil
}

// loadClusters lists the cluster summaries of the region and describes each
// cluster in turn: unlike the other indexed services, the security groups only
// appear on the full cluster description.
func (c *AwsEmrClient) loadClusters(ctx context.Context, add func(groupID string, cluster emrTypes.Cluster)) error {
	summaries, err := utils.FetchAllPages(func(marker *string) ([]emrTypes.ClusterSummary, *string, error) {
		clusterResponse, err := c.client.ListClusters(ctx,
			&emr.ListClustersInput{ClusterStates: emrClusterStates, Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return clusterResponse.Clusters, clusterResponse.Marker, nil
	})
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		describeResponse, err := c.client.DescribeCluster(ctx, &emr.DescribeClusterInput{ClusterId: summary.Id})
		if err != nil {
			return err
		}

		cluster := describeResponse.Cluster
		if cluster == nil || cluster.Ec2InstanceAttributes == nil {
			continue
		}

		for _, groupID := range clusterSecurityGroupIds(cluster.Ec2InstanceAttributes) {
			add(groupID, *cluster)
		}
	}
	return nil
}

// clusterSecurityGroupIds assembles every security group attached to a cluster:
// the managed master and slave groups, the optional service access group used
// by clusters on private subnets, and the optional additional master/slave
// group lists.
func clusterSecurityGroupIds(attributes *emrTypes.Ec2InstanceAttributes) []string {
	groupIds := make([]string, 0)
	if attributes.EmrManagedMasterSecurityGroup != nil {
		groupIds = append(groupIds, *attributes.EmrManagedMasterSecurityGroup)
	}
	if attributes.EmrManagedSlaveSecurityGroup != nil {
		groupIds = append(groupIds, *attributes.EmrManagedSlaveSecurityGroup)
	}
	if attributes.ServiceAccessSecurityGroup != nil {
		groupIds = append(groupIds, *attributes.ServiceAccessSecurityGroup)
	}
	groupIds = append(groupIds, attributes.AdditionalMasterSecurityGroups...)
	groupIds = append(groupIds, attributes.AdditionalSlaveSecurityGroups...)
	return groupIds
}
