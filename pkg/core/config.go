package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/hashicorp/go-set"
)

// Listing a large account pages through a lot of calls, so throttling gets a
// raised retry budget on top of the SDK's standard exponential backoff.
const maxRetryAttempts = 8

// LoadAwsConfig builds the AWS configuration shared by every client. When
// keysCsvPath is set, credentials come from the access keys CSV file; otherwise
// the default chain is used, with an optional named profile.
func LoadAwsConfig(ctx context.Context, keysCsvPath string, profile string) (aws.Config, error) {
	loadOptions := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxRetryAttempts)
		}),
	}

	if keysCsvPath != "" {
		keys, err := ReadAccessKeysCsv(keysCsvPath)
		if err != nil {
			return aws.Config{}, err
		}
		loadOptions = append(loadOptions,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(keys.AccessKeyId, keys.SecretAccessKey, keys.SessionToken)))
	} else if profile != "" {
		loadOptions = append(loadOptions, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return aws.Config{}, err
	}

	// The global service calls (STS, IAM, region listing) still need a signing
	// region even though they are not region-scoped.
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	return cfg, nil
}

// AccessKeys holds a static AWS credential set read from a CSV file.
type AccessKeys struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
}

// ReadAccessKeysCsv reads an access keys file: a header row followed by one row
// holding the key ID, the secret, and optionally a session token.
func ReadAccessKeysCsv(path string) (AccessKeys, error) {
	file, err := os.Open(path)
	if err != nil {
		return AccessKeys{}, fmt.Errorf("opening access keys file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return AccessKeys{}, fmt.Errorf("reading access keys file %s: %w", path, err)
	}
	if len(rows) < 2 {
		return AccessKeys{}, fmt.Errorf("access keys file %s has no key row below the header", path)
	}

	keyRow := rows[1]
	switch len(keyRow) {
	case 2:
		return AccessKeys{AccessKeyId: keyRow[0], SecretAccessKey: keyRow[1]}, nil
	case 3:
		return AccessKeys{AccessKeyId: keyRow[0], SecretAccessKey: keyRow[1], SessionToken: keyRow[2]}, nil
	}
	return AccessKeys{}, fmt.Errorf("access keys file %s: expected 2 or 3 fields in the key row, got %d", path, len(keyRow))
}

// ValidateRegions checks every requested region against the account's enabled
// region list. Validation runs before any scan so a typo fails fast instead of
// mid-run.
func ValidateRegions(requested []string, enabled []string) error {
	enabledSet := set.From(enabled)
	for _, region := range requested {
		if !enabledSet.Contains(region) {
			return fmt.Errorf("region %s is not enabled for the account (enabled: %v)", region, enabled)
		}
	}
	return nil
}
