package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sts"

	"breachsim/internal/mocks"
)

func TestCallerAccount(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
		want    string
		wantErr bool
	}{
		{
			name: "default account",
			want: mocks.TestAccountID,
		},
		{
			name: "api error",
			fn: func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
				return nil, errors.New("expired token")
			},
			wantErr: true,
		},
		{
			name: "nil output",
			fn: func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
				return nil, nil
			},
			wantErr: true,
		},
		{
			name: "missing account",
			fn: func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
				return &sts.GetCallerIdentityOutput{}, nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mocks.MockSTSClient{GetCallerIdentityFunc: tt.fn}

			got, err := CallerAccount(context.Background(), client)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CallerAccount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CallerAccount() = %q, want %q", got, tt.want)
			}
			if client.GetCallerIdentityCallCount != 1 {
				t.Errorf("GetCallerIdentity called %d times, want 1", client.GetCallerIdentityCallCount)
			}
		})
	}
}

func TestGetAccountIDFromEnv(t *testing.T) {
	t.Setenv("AWS_ACCOUNT_ID", "999999999999")

	got, err := GetAccountID(context.Background())
	if err != nil {
		t.Fatalf("GetAccountID() error = %v", err)
	}
	if got != "999999999999" {
		t.Errorf("GetAccountID() = %q", got)
	}
}

func TestGetAWSClientUnknownService(t *testing.T) {
	if _, err := GetAWSClient(context.Background(), "ec2"); err == nil {
		t.Error("expected error for unsupported service")
	}
}
