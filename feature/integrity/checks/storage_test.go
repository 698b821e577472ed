package checks

import (
	"context"
	"errors"
	"testing"

	"backoffice/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckStorage(t *testing.T) {
	t.Run("Bucket Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "imports").Return(true, nil)

		report, err := CheckStorage(context.Background(), mockClient, "imports")
		require.NoError(t, err)
		assert.Equal(t, &StorageReport{Bucket: "imports", Exists: true, Status: "ok"}, report)
	})

	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "imports").Return(false, nil)

		report, err := CheckStorage(context.Background(), mockClient, "imports")
		require.NoError(t, err)
		assert.False(t, report.Exists)
		assert.Equal(t, "missing", report.Status)
	})

	t.Run("Connection Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "imports").Return(false, errors.New("connection refused"))

		_, err := CheckStorage(context.Background(), mockClient, "imports")
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestFixStorage(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "imports").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "imports", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

	assert.NoError(t, FixStorage(context.Background(), mockClient, "imports", "eu-west-1", zap.NewNop()))
	mockClient.AssertExpectations(t)
}
