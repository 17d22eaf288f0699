// Package bedrock drives the AWS Bedrock model families: request
// construction per family dialect, the shared runtime client, and response
// extraction across the families' inconsistent payload shapes.
package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"llmtestbench/internal/provider"
)

// NewClient builds the shared Bedrock runtime client from static
// credentials. One client instance is reused, read-only, across every
// AWS-family call of a benchmark run.
func NewClient(creds provider.Credentials) (*bedrockruntime.Client, error) {
	awsConfig, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(creds.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AWSAccessKeyID, creds.AWSSecretAccessKey, "")))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return bedrockruntime.NewFromConfig(awsConfig), nil
}
