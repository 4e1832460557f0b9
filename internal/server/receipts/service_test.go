package receipts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "github.com/mkuznecovs/billfold/internal/server/config"
)

func testService() *Service {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return NewService(cfg)
}

func stubPresign(t *testing.T, putURL, getURL string, presignErr error) {
	t.Helper()

	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() { presignPutObject, presignGetObject = origPut, origGet })

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		return &v4.PresignedHTTPRequest{URL: putURL}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		return &v4.PresignedHTTPRequest{URL: getURL}, nil
	}
}

func TestPresignPut(t *testing.T) {
	stubPresign(t, "http://s3/put", "", nil)
	svc := testService()

	url, key, err := svc.PresignPut(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/put", url)
	assert.True(t, strings.HasPrefix(key, "receipts/u1/"), key)
}

func TestPresignPut_UniqueKeys(t *testing.T) {
	stubPresign(t, "http://s3/put", "", nil)
	svc := testService()

	_, k1, err := svc.PresignPut(context.Background(), "u1")
	require.NoError(t, err)
	_, k2, err := svc.PresignPut(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestPresignGet(t *testing.T) {
	stubPresign(t, "", "http://s3/get", nil)
	svc := testService()

	url, err := svc.PresignGet(context.Background(), "receipts/u1/x")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/get", url)
}

func TestPresign_SignerError(t *testing.T) {
	stubPresign(t, "", "", errors.New("signing failed"))
	svc := testService()

	_, _, err := svc.PresignPut(context.Background(), "u1")
	require.Error(t, err)

	_, err = svc.PresignGet(context.Background(), "k")
	require.Error(t, err)
}

func TestPresign_ConfigLoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	svc := testService()
	_, _, err := svc.PresignPut(context.Background(), "u1")
	require.Error(t, err)
}
