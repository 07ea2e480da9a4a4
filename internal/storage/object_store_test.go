package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/storage"
)

const (
	objectStoreBucketNameConstant = "ironclad-reports"
	storedReportFileNameConstant  = "acme-corp-soc2-20260829120000.pdf"
)

func TestNewObjectStoreRequiresBucket(testInstance *testing.T) {
	_, storeError := storage.NewObjectStore()
	require.Error(testInstance, storeError)
}

func TestNewObjectStoreWithBucket(testInstance *testing.T) {
	objectStore, storeError := storage.NewObjectStore(
		storage.WithBucket(objectStoreBucketNameConstant),
		storage.WithAccessKey("access"),
		storage.WithSecretKey("secret"),
	)
	require.NoError(testInstance, storeError)
	require.NotNil(testInstance, objectStore)
}

func TestUploadReportEmptyDirectory(testInstance *testing.T) {
	objectStore, storeError := storage.NewObjectStore(storage.WithBucket(objectStoreBucketNameConstant))
	require.NoError(testInstance, storeError)

	reportDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(reportDirectory, "notes.txt"), []byte("not a report"), 0o644))

	storageURL, uploadError := objectStore.UploadReport(context.Background(), reportDirectory, "acme-corp", "acme-corp-soc2-20260829120000")
	require.NoError(testInstance, uploadError)
	require.Empty(testInstance, storageURL)
}

func TestUploadReportMissingDirectory(testInstance *testing.T) {
	objectStore, storeError := storage.NewObjectStore(storage.WithBucket(objectStoreBucketNameConstant))
	require.NoError(testInstance, storeError)

	missingDirectory := filepath.Join(testInstance.TempDir(), "missing")
	_, uploadError := objectStore.UploadReport(context.Background(), missingDirectory, "acme-corp", "acme-corp-soc2-20260829120000")
	require.Error(testInstance, uploadError)
}

func TestUploadReportLocatesFirstPDF(testInstance *testing.T) {
	objectStore, storeError := storage.NewObjectStore(
		storage.WithBucket(objectStoreBucketNameConstant),
		storage.WithEndpoint("127.0.0.1:1"),
		storage.WithSSL(false),
	)
	require.NoError(testInstance, storeError)

	reportDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(reportDirectory, storedReportFileNameConstant), []byte("%PDF-1.4"), 0o644))

	cancelledContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	_, uploadError := objectStore.UploadReport(cancelledContext, reportDirectory, "acme-corp", "acme-corp-soc2-20260829120000")
	require.Error(testInstance, uploadError)
}
