package awsclients

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrTypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmrApi serves a single cluster carrying every flavour of security group
// attachment and records the state filter it was listed with.
type fakeEmrApi struct {
	listedStates  []emrTypes.ClusterState
	describeCalls int
}

func (f *fakeEmrApi) ListClusters(ctx context.Context, params *emr.ListClustersInput, optFns ...func(*emr.Options)) (*emr.ListClustersOutput, error) {
	f.listedStates = params.ClusterStates
	return &emr.ListClustersOutput{Clusters: []emrTypes.ClusterSummary{
		{Id: aws.String("j-1"), Name: aws.String("spark-etl")},
	}}, nil
}

func (f *fakeEmrApi) DescribeCluster(ctx context.Context, params *emr.DescribeClusterInput, optFns ...func(*emr.Options)) (*emr.DescribeClusterOutput, error) {
	f.describeCalls++
	return &emr.DescribeClusterOutput{Cluster: &emrTypes.Cluster{
		Id:   params.ClusterId,
		Name: aws.String("spark-etl"),
		Ec2InstanceAttributes: &emrTypes.Ec2InstanceAttributes{
			EmrManagedMasterSecurityGroup:  aws.String("sg-master"),
			EmrManagedSlaveSecurityGroup:   aws.String("sg-slave"),
			ServiceAccessSecurityGroup:     aws.String("sg-service"),
			AdditionalMasterSecurityGroups: []string{"sg-extra-master"},
			AdditionalSlaveSecurityGroups:  []string{"sg-extra-slave"},
		},
	}}, nil
}

func TestEmrClientIndexesEveryClusterSecurityGroup(t *testing.T) {
	fake := &fakeEmrApi{}
	client := &AwsEmrClient{client: fake, index: newGroupIndex[emrTypes.Cluster]()}

	ctx := context.Background()

	for _, groupID := range []string{"sg-master", "sg-slave", "sg-service", "sg-extra-master", "sg-extra-slave"} {
		names, err := client.NamesForGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Equal(t, []string{"spark-etl"}, names, groupID)
	}

	unattached, err := client.NamesForGroup(ctx, "sg-unrelated")
	require.NoError(t, err)
	assert.Empty(t, unattached)

	assert.Equal(t, 1, fake.describeCalls)
}

func TestEmrClientOnlyListsActiveClusterStates(t *testing.T) {
	fake := &fakeEmrApi{}
	client := &AwsEmrClient{client: fake, index: newGroupIndex[emrTypes.Cluster]()}

	_, err := client.ListForGroup(context.Background(), "sg-master")
	require.NoError(t, err)

	assert.ElementsMatch(t, []emrTypes.ClusterState{
		emrTypes.ClusterStateStarting,
		emrTypes.ClusterStateBootstrapping,
		emrTypes.ClusterStateRunning,
		emrTypes.ClusterStateWaiting,
	}, fake.listedStates)
}

func TestEmrClientSkipsClustersWithoutInstanceAttributes(t *testing.T) {
	client := &AwsEmrClient{client: &bareEmrApi{}, index: newGroupIndex[emrTypes.Cluster]()}

	names, err := client.NamesForGroup(context.Background(), "sg-master")
	require.NoError(t, err)
	assert.Empty(t, names)
}

// bareEmrApi serves a cluster whose description carries no EC2 instance attributes.
type bareEmrApi struct{}

func (b *bareEmrApi) ListClusters(ctx context.Context, params *emr.ListClustersInput, optFns ...func(*emr.Options)) (*emr.ListClustersOutput, error) {
	return &emr.ListClustersOutput{Clusters: []emrTypes.ClusterSummary{{Id: aws.String("j-2")}}}, nil
}

func (b *bareEmrApi) DescribeCluster(ctx context.Context, params *emr.DescribeClusterInput, optFns ...func(*emr.Options)) (*emr.DescribeClusterOutput, error) {
	return &emr.DescribeClusterOutput{Cluster: &emrTypes.Cluster{Id: params.ClusterId}}, nil
}
