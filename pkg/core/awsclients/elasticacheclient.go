package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elasticacheTypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// ElastiCacheApi is the subset of the ElastiCache client used by AwsElastiCacheClient.
type ElastiCacheApi interface {
	DescribeCacheClusters(ctx context.Context, params *elasticache.DescribeCacheClustersInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeCacheClustersOutput, error)
}

type AwsElastiCacheClient struct {
	client ElastiCacheApi
	index  *groupIndex[elasticacheTypes.CacheCluster]
}

func NewAwsElastiCacheClient(cfg aws.Config) *AwsElastiCacheClient {
	return &AwsElastiCacheClient{
		client: elasticache.NewFromConfig(cfg),
		index:  newGroupIndex[elasticacheTypes.CacheCluster](),
	}
}

func (c *AwsElastiCacheClient) Kind() coreTypes.ServiceKind { return coreTypes.ElastiCache }

func (c *AwsElastiCacheClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the cache clusters whose security groups include the
// Security Group, building the region-wide index on first use.
func (c *AwsElastiCacheClient) ListForGroup(ctx context.Context, groupID string) ([]elasticacheTypes.CacheCluster, error) {
	return c.index.lookup(ctx, groupID, c.loadCacheClusters)
}

// NamesForGroup maps the cache clusters referencing the Security Group to their cluster IDs.
func (c *AwsElastiCacheClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	cacheClusters, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cacheClusters))
	for _, cacheCluster := range cacheClusters {
		names = append(names, aws.ToString(cacheCluster.CacheClusterId))
	}
	return names, nil
}

func (c *AwsElastiCacheClient) loadCacheClusters(ctx context.Context, add func(groupID string, cacheCluster elasticacheTypes.CacheCluster)) error {
	cacheClusters, err := utils.FetchAllPages(func(marker *string) ([]elasticacheTypes.CacheCluster, *string, error) {
		clusterResponse, err := c.client.DescribeCacheClusters(ctx, &elasticache.DescribeCacheClustersInput{Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return clusterResponse.CacheClusters, clusterResponse.Marker, nil
	})
	if err != nil {
		return err
	}

	for _, cacheCluster := range cacheClusters {
		for _, sg := range cacheCluster.SecurityGroups {
			if sg.SecurityGroupId != nil {
				add(*sg.SecurityGroupId, cacheCluster)
			}
		}
	}
	return nil
}
