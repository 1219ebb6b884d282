package aws

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"breachsim/internal/logging"
)

// Supported service names for GetAWSClient
const (
	ServiceS3  = "s3"
	ServiceSTS = "sts"
)

var (
	clientCache = make(map[string]interface{})
	cacheMutex  sync.RWMutex
)

// STSGetCallerIdentityAPI is the STS call used for the credential preflight
type STSGetCallerIdentityAPI interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// LoadConfig resolves credentials via the standard chain (env vars, IAM
// role, SSO profile) with adaptive retries.
func LoadConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRetryMaxAttempts(5),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewAdaptiveMode(func(o *retry.AdaptiveModeOptions) {
				o.StandardOptions = append(o.StandardOptions, func(so *retry.StandardOptions) {
					so.MaxBackoff = 30 * time.Second
				})
			})
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// GetAWSClient returns a cached AWS client for a service
func GetAWSClient(ctx context.Context, service string) (interface{}, error) {
	if service != ServiceS3 && service != ServiceSTS {
		return nil, fmt.Errorf("unknown service: %s", service)
	}

	cacheMutex.RLock()
	if client, ok := clientCache[service]; ok {
		cacheMutex.RUnlock()
		return client, nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if client, ok := clientCache[service]; ok {
		return client, nil
	}

	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logging.LogDebug(fmt.Sprintf("Using default credentials for %s client", service))

	var client interface{}
	switch service {
	case ServiceS3:
		client = s3.NewFromConfig(cfg)
	case ServiceSTS:
		client = sts.NewFromConfig(cfg)
	}

	clientCache[service] = client
	return client, nil
}

// S3Client returns the cached S3 client
func S3Client(ctx context.Context) (*s3.Client, error) {
	client, err := GetAWSClient(ctx, ServiceS3)
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 client: %w", err)
	}
	return client.(*s3.Client), nil
}

// GetAccountID returns the current AWS account ID. AWS_ACCOUNT_ID
// short-circuits the STS call.
func GetAccountID(ctx context.Context) (string, error) {
	if accountID := os.Getenv("AWS_ACCOUNT_ID"); accountID != "" {
		return accountID, nil
	}

	stsClient, err := GetAWSClient(ctx, ServiceSTS)
	if err != nil {
		return "", fmt.Errorf("failed to get STS client: %w", err)
	}

	return CallerAccount(ctx, stsClient.(*sts.Client))
}

// CallerAccount asks STS which account the credentials belong to
func CallerAccount(ctx context.Context, api STSGetCallerIdentityAPI) (string, error) {
	start := time.Now()
	result, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	logging.LogAPICall("sts:GetCallerIdentity", err == nil, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}

	if result == nil || result.Account == nil {
		return "", fmt.Errorf("empty account ID in response")
	}

	return aws.ToString(result.Account), nil
}
