package types

// ServiceKind enumerates the AWS service types that can sit behind a security group.
type ServiceKind int

const (
	Ec2 ServiceKind = iota
	Ecs
	Alb
	Rds
	Redshift
	Lambda
	ElastiCache
	Dms
	Emr
)

// AllServiceKinds returns every ServiceKind in report column order.
func AllServiceKinds() []ServiceKind {
	return []ServiceKind{Ec2, Ecs, Alb, Rds, Redshift, Lambda, ElastiCache, Dms, Emr}
}

// String returns the display name used as a report column header.
func (k ServiceKind) String() string {
	switch k {
	case Ec2:
		return "EC2"
	case Ecs:
		return "ECS"
	case Alb:
		return "ALB"
	case Rds:
		return "RDS"
	case Redshift:
		return "Redshift"
	case Lambda:
		return "Lambda"
	case ElastiCache:
		return "ElastiCache"
	case Dms:
		return "DMS"
	case Emr:
		return "EMR"
	}
	return "Unknown"
}

// Capability describes how a service type answers "which of your resources
// reference security group X".
type Capability int

const (
	// DirectLookup services support that question as a filtered listing call.
	DirectLookup Capability = iota
	// IndexedLookup services have to be listed in full once, with security group
	// membership extracted from each resource and indexed client side.
	IndexedLookup
)

// AssociationRecord is one report row: a security group and the names of the
// services attached to it, one cell per ServiceKind. Kinds with no attachment
// hold an empty string.
type AssociationRecord struct {
	GroupID   string
	GroupName string
	Region    string
	Services  map[ServiceKind]string
}
