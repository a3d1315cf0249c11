package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbTypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// ElbApi is the subset of the ELBv2 client used by AwsElbClient.
type ElbApi interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error)
}

type AwsElbClient struct {
	client ElbApi
	index  *groupIndex[elbTypes.LoadBalancer]
}

func NewAwsElbClient(cfg aws.Config) *AwsElbClient {
	return &AwsElbClient{
		client: elasticloadbalancingv2.NewFromConfig(cfg),
		index:  newGroupIndex[elbTypes.LoadBalancer](),
	}
}

func (c *AwsElbClient) Kind() coreTypes.ServiceKind { return coreTypes.Alb }

func (c *AwsElbClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the load balancers referencing the Security Group,
// building the region-wide index on first use.
func (c *AwsElbClient) ListForGroup(ctx context.Context, groupID string) ([]elbTypes.LoadBalancer, error) {
	return c.index.lookup(ctx, groupID, c.loadLoadBalancers)
}

// NamesForGroup maps the load balancers referencing the Security Group to their names.
func (c *AwsElbClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	loadBalancers, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(loadBalancers))
	for _, loadBalancer := range loadBalancers {
		names = append(names, aws.ToString(loadBalancer.LoadBalancerName))
	}
	return names, nil
}

func (c *AwsElbClient) loadLoadBalancers(ctx context.Context, add func(groupID string, loadBalancer elbTypes.LoadBalancer)) error {
	loadBalancers, err := utils.FetchAllPages(func(marker *string) ([]elbTypes.LoadBalancer, *string, error) {
		elbResponse, err := c.client.DescribeLoadBalancers(ctx,
			&elasticloadbalancingv2.DescribeLoadBalancersInput{Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return elbResponse.LoadBalancers, elbResponse.NextMarker, nil
	})
	if err != nil {
		return err
	}

	for _, loadBalancer := range loadBalancers {
		for _, groupID := range loadBalancer.SecurityGroups {
			add(groupID, loadBalancer)
		}
	}
	return nil
}
