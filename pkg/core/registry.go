package core

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/ashStableLogic/security-group-mapper/pkg/core/awsclients"
	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
)

// Service is implemented by every per-region service client that can answer
// which of its resources reference a given security group. DirectLookup
// services run a filtered listing call per group; IndexedLookup services list
// everything once and answer from their index.
type Service interface {
	Kind() coreTypes.ServiceKind
	Capability() coreTypes.Capability
	NamesForGroup(ctx context.Context, groupID string) ([]string, error)
}

// GroupLister lists the security groups of a region and the network interfaces
// attached to each group.
type GroupLister interface {
	DescribeSecurityGroups(ctx context.Context) ([]ec2Types.SecurityGroup, error)
	DescribeNetworkInterfacesForGroup(ctx context.Context, groupID string) ([]ec2Types.NetworkInterface, error)
}

// RegionContext owns the service clients, and with them the per-service
// indexes, of a single region. A fresh context is built for every region so no
// index can leak between regions.
type RegionContext struct {
	Region   string
	Groups   GroupLister
	Services map[coreTypes.ServiceKind]Service
}

func NewRegionContext(cfg aws.Config, region string) *RegionContext {
	regionCfg := cfg.Copy()
	regionCfg.Region = region

	ec2Client := awsclients.NewAwsEc2Client(regionCfg)

	return &RegionContext{
		Region: region,
		Groups: ec2Client,
		Services: map[coreTypes.ServiceKind]Service{
			coreTypes.Ec2:         ec2Client,
			coreTypes.Ecs:         awsclients.NewAwsEcsClient(regionCfg),
			coreTypes.Alb:         awsclients.NewAwsElbClient(regionCfg),
			coreTypes.Rds:         awsclients.NewAwsRdsClient(regionCfg),
			coreTypes.Redshift:    awsclients.NewAwsRedshiftClient(regionCfg),
			coreTypes.Lambda:      awsclients.NewAwsLambdaClient(regionCfg),
			coreTypes.ElastiCache: awsclients.NewAwsElastiCacheClient(regionCfg),
			coreTypes.Dms:         awsclients.NewAwsDmsClient(regionCfg),
			coreTypes.Emr:         awsclients.NewAwsEmrClient(regionCfg),
		},
	}
}
