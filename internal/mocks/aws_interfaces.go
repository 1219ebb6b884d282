// Package mocks provides mock implementations of AWS service clients for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// =============================================================================
// S3 Mock Client
// =============================================================================

// MockS3Client is a mock implementation of the S3 calls used by report sinks.
// Set the Func fields to customize behavior per test.
type MockS3Client struct {
	// PutObjectFunc is called when PutObject is invoked.
	PutObjectFunc func(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)

	// Call counts for verification
	PutObjectCallCount int

	// Inputs holds every PutObject input in call order
	Inputs []*s3.PutObjectInput

	mu sync.Mutex
}

// PutObject implements the S3 PutObject call
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	m.PutObjectCallCount++
	m.Inputs = append(m.Inputs, params)
	m.mu.Unlock()

	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	// Default: accepted upload
	return &s3.PutObjectOutput{ETag: aws.String(`"mock-etag"`)}, nil
}

// =============================================================================
// STS Mock Client
// =============================================================================

// MockSTSClient is a mock implementation of the STS caller identity call
type MockSTSClient struct {
	// GetCallerIdentityFunc is called when GetCallerIdentity is invoked.
	GetCallerIdentityFunc func(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)

	GetCallerIdentityCallCount int
}

// GetCallerIdentity implements the STS GetCallerIdentity call
func (m *MockSTSClient) GetCallerIdentity(
	ctx context.Context,
	params *sts.GetCallerIdentityInput,
	optFns ...func(*sts.Options),
) (*sts.GetCallerIdentityOutput, error) {
	m.GetCallerIdentityCallCount++
	if m.GetCallerIdentityFunc != nil {
		return m.GetCallerIdentityFunc(ctx, params, optFns...)
	}
	// Default: test account
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(TestAccountID),
		Arn:     aws.String("arn:aws:iam::" + TestAccountID + ":user/breachsim"),
	}, nil
}

// TestAccountID is the account returned by the default MockSTSClient
const TestAccountID = "123456789012"
