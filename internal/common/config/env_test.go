package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "REGION", "AWS_REGION", "AWS_LAMBDA_FUNCTION_NAME",
		"STORAGE_DRIVER", "DYNAMODB_TABLE_NAME", "SQLITE_PATH", "DEFAULT_OWNER_ID",
		"ALLOW_OWNER_HEADER",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "ap-northeast-1", cfg.AWSRegion)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "./data/sqlite/ledger.db", cfg.SQLitePath)
	assert.False(t, cfg.IsLambda())
	assert.False(t, cfg.IsProd())
	assert.True(t, cfg.AllowOwnerHeader)
}

func TestLoadFromEnv_LambdaRequiresTable(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "ledger-api")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DYNAMODB_TABLE_NAME")

	t.Setenv("DYNAMODB_TABLE_NAME", "ledger")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorageDynamoDB, cfg.StorageDriver)
	assert.Equal(t, "ledger", cfg.DynamoDBTableName)
	assert.False(t, cfg.AllowOwnerHeader)
}

func TestLoadFromEnv_OwnerHeader(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		allow  bool
		hasErr bool
	}{
		{name: "local dev", env: map[string]string{}, allow: true},
		{name: "lambda dev stage", env: map[string]string{"AWS_LAMBDA_FUNCTION_NAME": "ledger-api"}, allow: false},
		{name: "lambda dev stage opted in", env: map[string]string{"AWS_LAMBDA_FUNCTION_NAME": "ledger-api", "ALLOW_OWNER_HEADER": "true"}, allow: true},
		{name: "local opted out", env: map[string]string{"ALLOW_OWNER_HEADER": "false"}, allow: false},
		{name: "prod ignores opt in", env: map[string]string{"ENVIRONMENT": "prod", "ALLOW_OWNER_HEADER": "true"}, allow: false},
		{name: "invalid flag", env: map[string]string{"ALLOW_OWNER_HEADER": "sometimes"}, hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv("STORAGE_DRIVER", StorageMemory)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()
			if tt.hasErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.allow, cfg.AllowOwnerHeader)
		})
	}
}

func TestLoadFromEnv_EnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORAGE_DRIVER=memory\nDEFAULT_OWNER_ID=user-1\nREGION=br\n"), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"STORAGE_DRIVER", "DEFAULT_OWNER_ID", "REGION"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := LoadFromEnv(envFile)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "user-1", cfg.DefaultOwnerID)
	assert.Equal(t, "sa-east-1", cfg.AWSRegion)
}

func TestLoadFromEnv_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}
