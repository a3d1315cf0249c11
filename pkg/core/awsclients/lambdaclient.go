package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// LambdaApi is the subset of the Lambda client used by AwsLambdaClient.
type LambdaApi interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

type AwsLambdaClient struct {
	client LambdaApi
	index  *groupIndex[lambdaTypes.FunctionConfiguration]
}

func NewAwsLambdaClient(cfg aws.Config) *AwsLambdaClient {
	return &AwsLambdaClient{
		client: lambda.NewFromConfig(cfg),
		index:  newGroupIndex[lambdaTypes.FunctionConfiguration](),
	}
}

func (c *AwsLambdaClient) Kind() coreTypes.ServiceKind { return coreTypes.Lambda }

func (c *AwsLambdaClient) Capability() coreTypes.Capability { return coreTypes.IndexedLookup }

// ListForGroup returns the functions whose VPC config includes the Security
// Group, building the region-wide index on first use.
func (c *AwsLambdaClient) ListForGroup(ctx context.Context, groupID string) ([]lambdaTypes.FunctionConfiguration, error) {
	return c.index.lookup(ctx, groupID, c.loadFunctions)
}

// NamesForGroup maps the functions referencing the Security Group to their function names.
func (c *AwsLambdaClient) NamesForGroup(ctx context.Context, groupID string) ([]string, error) {
	functions, err := c.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(functions))
	for _, function := range functions {
		names = append(names, aws.ToString(function.FunctionName))
	}
	return names, nil
}

func (c *AwsLambdaClient) loadFunctions(ctx context.Context, add func(groupID string, function lambdaTypes.FunctionConfiguration)) error {
	functions, err := utils.FetchAllPages(func(marker *string) ([]lambdaTypes.FunctionConfiguration, *string, error) {
		fnResponse, err := c.client.ListFunctions(ctx, &lambda.ListFunctionsInput{Marker: marker})
		if err != nil {
			return nil, nil, err
		}
		return fnResponse.Functions, fnResponse.NextMarker, nil
	})
	if err != nil {
		return err
	}

	for _, function := range functions {
		// Functions outside a VPC carry no security groups.
		if function.VpcConfig == nil {
			continue
		}
		for _, groupID := range function.VpcConfig.SecurityGroupIds {
			add(groupID, function)
		}
	}
	return nil
}
