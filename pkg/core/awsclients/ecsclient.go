package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecsTypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// The ECS docs state DescribeServices can only take a max of 10 services at a time.
const describeServicesBatchSize = 10

// EcsApi is the subset of the ECS client used by AwsEcsClient.
type EcsApi interface {
	ListClusters(ctx context.Context, params *ecs.ListClustersInput, optFns ...func(*ecs.Options)) (*ecs.ListClustersOutput, error)
	ListServices(ctx context.Context, params *ecs.ListServicesInput, optFns ...func(*ecs.Options)) (*ecs.ListServicesOutput, error)
	DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
}

type AwsEcsClient struct {
	client EcsApi
	index  *groupIndex[ecsTypes.Service]
}

func NewAwsEcsClient(cfg aws.Config) *AwsEcsClient {
	return &AwsEcsClient{
		client: ecs.NewFromConfig(cfg),
		index:  newGroupIndex[ecsTypes.Service](),
	}
}

func (c *AwsEcsClient) Kind() coreTypes.ServiceKind { return coreTypes.Ecs }

func (c *AwsEcsClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the ECS services referencing the Security Group,
// building the region-wide service index on first use.
func (c *AwsEcsClient) ListForGroup(ctx context.Context, groupID string) ([]ecsTypes.Service, error) {
	return c.index.lookup(ctx, groupID, c.loadServices)
}

// NamesForGroup maps the ECS services referencing the Security Group to their service names.
func (c *AwsEcsClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	services, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(services))
	for _, service := range services {
		names = append(names, aws.ToString(service.ServiceName))
	}
	return names, nil
}

// loadServices enumerates every ECS service of the region and indexes it under
// the security groups of its awsvpc network configuration. The enumeration is
// two staged: clusters first, then the services of each cluster, described in
// batches.
func (c *AwsEcsClient) loadServices(ctx context.Context, add func(groupID string, service ecsTypes.Service)) error {
	clusterArns, err := utils.FetchAllPages(func(nextToken *string) ([]string, *string, error) {
		clusterResponse, err := c.client.ListClusters(ctx, &ecs.ListClustersInput{NextToken: nextToken})
		if err != nil {
			return nil, nil, err
		}
		return clusterResponse.ClusterArns, clusterResponse.NextToken, nil
	})
	if err != nil {
		return err
	}

	for _, clusterArn := range clusterArns {
		clusterArn := clusterArn

		serviceArns, err := utils.FetchAllPages(func(nextToken *string) ([]string, *string, error) {
			serviceResponse, err := c.client.ListServices(ctx,
				&ecs.ListServicesInput{Cluster: &clusterArn, NextToken: nextToken})
			if err != nil {
				return nil, nil, err
			}
			return serviceResponse.ServiceArns, serviceResponse.NextToken, nil
		})
		if err != nil {
			return err
		}

		for start := 0; start < len(serviceArns); start += describeServicesBatchSize {
			end := min(start+describeServicesBatchSize, len(serviceArns))

			describeResponse, err := c.client.DescribeServices(ctx,
				&ecs.DescribeServicesInput{Cluster: &clusterArn, Services: serviceArns[start:end]})
			if err != nil {
				return err
			}

			for _, service := range describeResponse.Services {
				if service.NetworkConfiguration == nil || service.NetworkConfiguration.AwsvpcConfiguration == nil {
					continue
				}
				for _, groupID := range service.NetworkConfiguration.AwsvpcConfiguration.SecurityGroups {
					add(groupID, service)
				}
			}
		}
	}

	return nil
}
