package awsclients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/account"
	accountTypes "github.com/aws/aws-sdk-go-v2/service/account/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ashStableLogic/security-group-mapper/pkg/core/utils"
)

// The clients below are the account-global ones: they carry no per-region
// state and are only used for setup (identity, report naming, region listing).

// StsApi is the subset of the STS client used by AwsStsClient.
type StsApi interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type AwsStsClient struct {
	client StsApi
}

func NewAwsStsClient(cfg aws.Config) *AwsStsClient {
	return &AwsStsClient{client: sts.NewFromConfig(cfg)}
}

// GetAccountId returns the ID of the account owning the caller's credentials.
func (c *AwsStsClient) GetAccountId(ctx context.Context) (string, error) {
	identity, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return aws.ToString(identity.Account), nil
}

// IamApi is the subset of the IAM client used by AwsIamClient.
type IamApi interface {
	ListAccountAliases(ctx context.Context, params *iam.ListAccountAliasesInput, optFns ...func(*iam.Options)) (*iam.ListAccountAliasesOutput, error)
}

type AwsIamClient struct {
	client IamApi
}

func NewAwsIamClient(cfg aws.Config) *AwsIamClient {
	return &AwsIamClient{client: iam.NewFromConfig(cfg)}
}

// GetAccountAlias returns the first alias of the account, or an empty string
// when the account has none.
func (c *AwsIamClient) GetAccountAlias(ctx context.Context) (string, error) {
	aliasResponse, err := c.client.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil {
		return "", err
	}
	if len(aliasResponse.AccountAliases) == 0 {
		return "", nil
	}
	return aliasResponse.AccountAliases[0], nil
}

// RegionLister returns the regions enabled for the account. Two sources exist:
// the Account service's region listing and EC2's. Which one works depends on
// the caller's permissions, so both are exposed and configuration picks one.
type RegionLister interface {
	ListEnabledRegions(ctx context.Context) ([]string, error)
}

const (
	RegionSourceAccount = "account"
	RegionSourceEc2     = "ec2"
)

func NewRegionLister(cfg aws.Config, source string) (RegionLister, error) {
	switch source {
	case RegionSourceAccount:
		return NewAwsAccountClient(cfg), nil
	case RegionSourceEc2:
		return NewAwsEc2Client(cfg), nil
	}
	return nil, fmt.Errorf("unknown region source %q (expected %q or %q)",
		source, RegionSourceAccount, RegionSourceEc2)
}

// AccountApi is the subset of the Account client used by AwsAccountClient.
type AccountApi interface {
	ListRegions(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error)
}

type AwsAccountClient struct {
	client AccountApi
}

func NewAwsAccountClient(cfg aws.Config) *AwsAccountClient {
	return &AwsAccountClient{client: account.NewFromConfig(cfg)}
}

// ListEnabledRegions returns the enabled regions of the account according to
// the Account service.
func (c *AwsAccountClient) ListEnabledRegions(ctx context.Context) ([]string, error) {
	regions, err := utils.FetchAllPages(func(nextToken *string) ([]accountTypes.Region, *string, error) {
		regionResponse, err := c.client.ListRegions(ctx, &account.ListRegionsInput{
			NextToken: nextToken,
			RegionOptStatusContains: []accountTypes.RegionOptStatus{
				accountTypes.RegionOptStatusEnabled,
				accountTypes.RegionOptStatusEnabledByDefault,
			},
		})
		if err != nil {
			return nil, nil, err
		}
		return regionResponse.Regions, regionResponse.NextToken, nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(regions))
	for _, region := range regions {
		if region.RegionName != nil {
			names = append(names, *region.RegionName)
		}
	}
	return names, nil
}
