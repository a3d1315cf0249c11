package core

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
)

// Markers stamped on network interfaces by the AWS managed services that create
// them. AWS exposes no "which service owns this interface" API, so these
// metadata conventions are the only signal available. Matching is literal
// substring containment: the conventions are not structured fields, and fuzzier
// matching would silently change classification results.
const (
	emrGroupNameMarker           = "ElasticMapReduce"
	ecsDescriptionMarker         = "arn:aws:ecs"
	albDescriptionMarker         = "ELB app"
	rdsDescriptionMarker         = "RDSNetworkInterface"
	dmsDescriptionMarker         = "DMSNetworkInterface"
	redshiftDescriptionMarker    = "RedshiftNetworkInterface"
	elastiCacheDescriptionMarker = "ElastiCache"
)

// ClassifyNetworkInterface decides which service type a network interface
// belongs to. Rule order is significant and first match wins: the EMR group
// name check precedes the instance attachment check because EMR nodes are plain
// EC2 instances underneath, and the attachment check precedes all the
// description markers. Interfaces matching no rule yield ok == false and
// contribute nothing.
func ClassifyNetworkInterface(eni ec2Types.NetworkInterface) (kind coreTypes.ServiceKind, ok bool) {
	if eni.InterfaceType == ec2Types.NetworkInterfaceTypeLambda {
		return coreTypes.Lambda, true
	}

	for _, group := range eni.Groups {
		if strings.Contains(aws.ToString(group.GroupName), emrGroupNameMarker) {
			return coreTypes.Emr, true
		}
	}

	if eni.Attachment != nil && eni.Attachment.InstanceId != nil {
		return coreTypes.Ec2, true
	}

	description := aws.ToString(eni.Description)
	switch {
	case strings.Contains(description, ecsDescriptionMarker):
		return coreTypes.Ecs, true
	case strings.Contains(description, albDescriptionMarker):
		return coreTypes.Alb, true
	case strings.Contains(description, rdsDescriptionMarker):
		return coreTypes.Rds, true
	case strings.Contains(description, dmsDescriptionMarker):
		return coreTypes.Dms, true
	case strings.Contains(description, redshiftDescriptionMarker):
		return coreTypes.Redshift, true
	case strings.Contains(description, elastiCacheDescriptionMarker):
		return coreTypes.ElastiCache, true
	}

	return 0, false
}
