// Package awssdk holds the AWS client configuration shared by the DynamoDB
// store and the Bedrock generator.
package awssdk

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// DefaultMaxAttempts matches the standard-mode retry budget the service has
// always run with.
const DefaultMaxAttempts = 10

// Options tune LoadDefault. Zero values select the defaults.
type Options struct {
	Region      string
	MaxAttempts int
	// Profile selects a shared-config profile.
	Profile string
}

// LoadDefault loads the default AWS configuration using the standard
// environment/credentials chain and a standard-mode retryer.
func LoadDefault(ctx context.Context, opts Options) (awsv2.Config, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	loaders := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMode(awsv2.RetryModeStandard),
		awsconfig.WithRetryMaxAttempts(attempts),
	}
	if opts.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loaders = append(loaders, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	return awsconfig.LoadDefaultConfig(ctx, loaders...)
}

// PartitionForRegion derives the AWS partition from a region name.
func PartitionForRegion(region string) string {
	switch {
	case len(region) >= 3 && region[:3] == "cn-":
		return "aws-cn"
	case len(region) >= 7 && region[:7] == "us-gov-":
		return "aws-us-gov"
	default:
		return "aws"
	}
}
