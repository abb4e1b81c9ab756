// Package publish uploads release artifacts to an object store.
package publish

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// BackendS3 publishes to Amazon S3 with the default AWS credential chain
	BackendS3 = "s3"
	// BackendMinIO publishes to an S3 compatible MinIO endpoint
	BackendMinIO = "minio"

	// DefaultBucket receives plugin downloads
	DefaultBucket = "download.elasticsearch.org"
	// DefaultNamespace prefixes every key
	DefaultNamespace = "elasticsearch"
)

// Publisher uploads a local file under key
type Publisher interface {
	Upload(ctx context.Context, localPath, key string) error
}

// Options selects and configures a backend
type Options struct {
	Backend  string
	Bucket   string
	Region   string
	Endpoint string
	Secure   bool

	AccessKey string
	SecretKey string
}

// New returns the publisher for opts.Backend
func New(ctx context.Context, opts Options) (Publisher, error) {
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	switch opts.Backend {
	case "", BackendS3:
		return NewS3Publisher(ctx, opts)
	case BackendMinIO:
		return NewMinIOPublisher(opts)
	default:
		return nil, fmt.Errorf("unknown publish backend %q", opts.Backend)
	}
}

// Key returns the object key of file, <namespace>/<artifactID>/<basename>
func Key(namespace, artifactID, file string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return path.Join(namespace, artifactID, filepath.Base(file))
}

// DetectContentType sniffs the content type of a local file
func DetectContentType(localPath string) string {
	mt, err := mimetype.DetectFile(localPath)
	if err != nil || mt == nil {
		return "application/octet-stream"
	}
	return mt.String()
}
