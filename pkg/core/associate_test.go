package core

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
)

type fakeGroupLister struct {
	securityGroups []ec2Types.SecurityGroup
	enisByGroup    map[string][]ec2Types.NetworkInterface
}

func (f *fakeGroupLister) DescribeSecurityGroups(ctx context.Context) ([]ec2Types.SecurityGroup, error) {
	return f.securityGroups, nil
}

func (f *fakeGroupLister) DescribeNetworkInterfacesForGroup(ctx context.Context, groupID string) ([]ec2Types.NetworkInterface, error) {
	return f.enisByGroup[groupID], nil
}

type fakeService struct {
	kind         coreTypes.ServiceKind
	namesByGroup map[string][]string
	calls        int
}

func (f *fakeService) Kind() coreTypes.ServiceKind { return f.kind }

func (f *fakeService) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

func (f *fakeService) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	f.calls++
	return f.namesByGroup[groupID], nil
}

func newFakeRegionContext(region string, lister *fakeGroupLister) (*RegionContext, map[coreTypes.ServiceKind]*fakeService) {
	fakes := make(map[coreTypes.ServiceKind]*fakeService)
	services := make(map[coreTypes.ServiceKind]Service)
	for _, kind := range coreTypes.AllServiceKinds() {
		fake := &fakeService{kind: kind, namesByGroup: make(map[string][]string)}
		fakes[kind] = fake
		services[kind] = fake
	}
	return &RegionContext{Region: region, Groups: lister, Services: services}, fakes
}

func TestMapRegionClassifiesAndLooksUpEachKindOnce(t *testing.T) {
	lister := &fakeGroupLister{
		securityGroups: []ec2Types.SecurityGroup{
			{GroupId: aws.String("sg-abc"), GroupName: aws.String("app")},
		},
		enisByGroup: map[string][]ec2Types.NetworkInterface{
			"sg-abc": {
				{InterfaceType: ec2Types.NetworkInterfaceTypeLambda},
				{
					Attachment:  &ec2Types.NetworkInterfaceAttachment{InstanceId: aws.String("i-123")},
					Description: aws.String("RDSNetworkInterface"),
				},
			},
		},
	}

	regionCtx, fakes := newFakeRegionContext("eu-west-1", lister)
	fakes[coreTypes.Lambda].namesByGroup["sg-abc"] = []string{"fn-a", "fn-b"}
	fakes[coreTypes.Ec2].namesByGroup["sg-abc"] = []string{"web-1"}
	fakes[coreTypes.Rds].namesByGroup["sg-abc"] = []string{"db-should-not-appear"}

	records, err := MapRegion(context.Background(), regionCtx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "sg-abc", record.GroupID)
	assert.Equal(t, "app", record.GroupName)
	assert.Equal(t, "eu-west-1", record.Region)

	// The instance attachment wins over the RDS description marker, so the
	// classified set is {Lambda, EC2} and RDS is never asked.
	assert.Equal(t, "fn-a\nfn-b", record.Services[coreTypes.Lambda])
	assert.Equal(t, "web-1", record.Services[coreTypes.Ec2])
	assert.Equal(t, "", record.Services[coreTypes.Rds])
	assert.Equal(t, 0, fakes[coreTypes.Rds].calls)
	assert.Equal(t, 1, fakes[coreTypes.Lambda].calls)
	assert.Equal(t, 1, fakes[coreTypes.Ec2].calls)

	// Every kind is present in the record, queried or not.
	for _, kind := range coreTypes.AllServiceKinds() {
		_, present := record.Services[kind]
		assert.True(t, present, "missing cell for %s", kind)
	}
}

func TestMapRegionDeduplicatesKindsAcrossInterfaces(t *testing.T) {
	lister := &fakeGroupLister{
		securityGroups: []ec2Types.SecurityGroup{
			{GroupId: aws.String("sg-lambda"), GroupName: aws.String("functions")},
		},
		enisByGroup: map[string][]ec2Types.NetworkInterface{
			"sg-lambda": {
				{InterfaceType: ec2Types.NetworkInterfaceTypeLambda},
				{InterfaceType: ec2Types.NetworkInterfaceTypeLambda},
				{InterfaceType: ec2Types.NetworkInterfaceTypeLambda},
			},
		},
	}

	regionCtx, fakes := newFakeRegionContext("eu-west-1", lister)
	fakes[coreTypes.Lambda].namesByGroup["sg-lambda"] = []string{"fn"}

	_, err := MapRegion(context.Background(), regionCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, fakes[coreTypes.Lambda].calls)
}

func TestMapRegionEmitsRecordForGroupWithNoInterfaces(t *testing.T) {
	lister := &fakeGroupLister{
		securityGroups: []ec2Types.SecurityGroup{
			{GroupId: aws.String("sg-idle"), GroupName: aws.String("idle")},
		},
		enisByGroup: map[string][]ec2Types.NetworkInterface{},
	}

	regionCtx, fakes := newFakeRegionContext("us-east-1", lister)

	records, err := MapRegion(context.Background(), regionCtx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	for _, kind := range coreTypes.AllServiceKinds() {
		assert.Equal(t, "", records[0].Services[kind])
		assert.Equal(t, 0, fakes[kind].calls)
	}
}

func TestNewRegionContextScopesServicesPerRegion(t *testing.T) {
	first := NewRegionContext(aws.Config{}, "eu-west-1")
	second := NewRegionContext(aws.Config{}, "us-east-1")

	assert.Equal(t, "eu-west-1", first.Region)
	assert.Equal(t, "us-east-1", second.Region)

	// Each context owns its own clients, and with them its own indexes: a
	// lookup in one region can never serve stale entries from another.
	for _, kind := range coreTypes.AllServiceKinds() {
		require.Contains(t, first.Services, kind)
		require.Contains(t, second.Services, kind)
		assert.NotSame(t, first.Services[kind], second.Services[kind])
	}
}
