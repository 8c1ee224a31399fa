package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAWSConfig_DefaultRegion(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Nil(t, cfg.BaseEndpoint)
}

func TestLoadAWSConfig_WithEndpointOverride(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), "eu-west-1", "http://localhost:4566")
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)
}

func TestClientsFromConfig(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), "eu-central-1", "http://localhost:4566")
	require.NoError(t, err)

	c := ClientsFromConfig(cfg)
	require.NotNil(t, c.DynamoDB)
	require.NotNil(t, c.SQS)
	require.NotNil(t, c.CloudWatch)

	ddb, ok := c.DynamoDB.(*dynamodb.Client)
	require.True(t, ok)
	assert.Equal(t, "eu-central-1", ddb.Options().Region)
	require.NotNil(t, ddb.Options().BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *ddb.Options().BaseEndpoint)
}
