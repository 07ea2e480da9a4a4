package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultObjectStoreEndpointConstant   = "storage.googleapis.com"
	reportObjectPathTemplateConstant     = "reports/%s/%s.pdf"
	storageURLTemplateConstant           = "gs://%s/%s"
	pdfFileExtensionConstant             = ".pdf"
	pdfContentTypeConstant               = "application/pdf"
	bucketMissingMessageConstant         = "storage bucket is not configured"
	objectStoreClientErrorTemplateConstant = "failed to build object store client: %w"
	reportDirectoryReadErrorTemplateConstant = "failed to read report directory: %w"
	reportUploadErrorTemplateConstant    = "failed to upload report %s: %w"
)

// ObjectStoreOption configures the object store client.
type ObjectStoreOption func(storeConfiguration *objectStoreConfiguration)

type objectStoreConfiguration struct {
	endpoint        string
	bucketName      string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

func newObjectStoreConfiguration(storeOptions ...ObjectStoreOption) *objectStoreConfiguration {
	storeConfiguration := &objectStoreConfiguration{
		endpoint: defaultObjectStoreEndpointConstant,
		useSSL:   true,
	}

	for _, storeOption := range storeOptions {
		storeOption(storeConfiguration)
	}
	return storeConfiguration
}

// WithEndpoint overrides the S3 interoperability endpoint.
func WithEndpoint(endpoint string) ObjectStoreOption {
	return func(storeConfiguration *objectStoreConfiguration) {
		storeConfiguration.endpoint = endpoint
	}
}

// WithBucket sets the destination bucket.
func WithBucket(bucketName string) ObjectStoreOption {
	return func(storeConfiguration *objectStoreConfiguration) {
		storeConfiguration.bucketName = bucketName
	}
}

// WithAccessKey sets the HMAC access key.
func WithAccessKey(accessKey string) ObjectStoreOption {
	return func(storeConfiguration *objectStoreConfiguration) {
		storeConfiguration.accessKey = accessKey
	}
}

// WithSecretKey sets the HMAC secret key.
func WithSecretKey(secretKey string) ObjectStoreOption {
	return func(storeConfiguration *objectStoreConfiguration) {
		storeConfiguration.secretAccessKey = secretKey
	}
}

// WithSSL toggles TLS on the endpoint connection.
func WithSSL(useSSL bool) ObjectStoreOption {
	return func(storeConfiguration *objectStoreConfiguration) {
		storeConfiguration.useSSL = useSSL
	}
}

// ObjectStore uploads report artifacts to a bucket.
type ObjectStore struct {
	storeConfiguration *objectStoreConfiguration
	storeClient        *minio.Client
}

// NewObjectStore builds an object store client for the configured bucket.
func NewObjectStore(storeOptions ...ObjectStoreOption) (*ObjectStore, error) {
	storeConfiguration := newObjectStoreConfiguration(storeOptions...)
	if len(strings.TrimSpace(storeConfiguration.bucketName)) == 0 {
		return nil, errors.New(bucketMissingMessageConstant)
	}

	storeClient, clientError := minio.New(storeConfiguration.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(storeConfiguration.accessKey, storeConfiguration.secretAccessKey, ""),
		Secure: storeConfiguration.useSSL,
	})
	if clientError != nil {
		return nil, fmt.Errorf(objectStoreClientErrorTemplateConstant, clientError)
	}

	return &ObjectStore{storeConfiguration: storeConfiguration, storeClient: storeClient}, nil
}

// UploadReport uploads the first PDF found in reportDirectory to
// reports/<client>/<assessment>.pdf and returns the gs:// URL. An empty
// URL with no error means the directory held no PDF.
func (objectStore *ObjectStore) UploadReport(executionContext context.Context, reportDirectory string, clientIdentifier string, assessmentIdentifier string) (string, error) {
	reportPath, locateError := locateFirstPDF(reportDirectory)
	if locateError != nil {
		return "", locateError
	}
	if len(reportPath) == 0 {
		return "", nil
	}

	objectPath := fmt.Sprintf(reportObjectPathTemplateConstant, clientIdentifier, assessmentIdentifier)
	_, uploadError := objectStore.storeClient.FPutObject(executionContext, objectStore.storeConfiguration.bucketName, objectPath, reportPath, minio.PutObjectOptions{
		ContentType: pdfContentTypeConstant,
	})
	if uploadError != nil {
		return "", fmt.Errorf(reportUploadErrorTemplateConstant, reportPath, uploadError)
	}

	return fmt.Sprintf(storageURLTemplateConstant, objectStore.storeConfiguration.bucketName, objectPath), nil
}

func locateFirstPDF(reportDirectory string) (string, error) {
	directoryEntries, readError := os.ReadDir(reportDirectory)
	if readError != nil {
		return "", fmt.Errorf(reportDirectoryReadErrorTemplateConstant, readError)
	}

	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(directoryEntry.Name()), pdfFileExtensionConstant) {
			return filepath.Join(reportDirectory, directoryEntry.Name()), nil
		}
	}
	return "", nil
}
