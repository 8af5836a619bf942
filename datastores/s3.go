package datastores

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/util"
)

type s3Store struct {
	client        *minio.Client
	bucket        string
	storageClass  string
	publicBaseUrl string
}

func newS3Store(opts map[string]string) (*s3Store, error) {
	endpoint := opts["endpoint"]
	bucket := opts["bucketName"]
	accessKeyId := opts["accessKeyId"]
	accessSecret := opts["accessSecret"]
	region := opts["region"]
	publicBaseUrl := opts["publicBaseUrl"]

	storageClass, hasStorageClass := opts["storageClass"]
	if !hasStorageClass {
		storageClass = "STANDARD"
	}

	useSsl := true
	if val, ok := opts["ssl"]; ok && val != "" {
		useSsl, _ = strconv.ParseBool(val)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Region: region,
		Secure: useSsl,
		Creds:  credentials.NewStaticV4(accessKeyId, accessSecret, ""),
	})
	if err != nil {
		return nil, err
	}

	return &s3Store{
		client:        client,
		bucket:        bucket,
		storageClass:  storageClass,
		publicBaseUrl: publicBaseUrl,
	}, nil
}

func (s *s3Store) baseUrl() string {
	if s.publicBaseUrl != "" {
		return strings.TrimSuffix(s.publicBaseUrl, "/")
	}
	return fmt.Sprintf("%s/%s", s.client.EndpointURL(), s.bucket)
}

func (s *s3Store) UrlFor(path string) string {
	return util.MakeUrl(s.baseUrl(), path)
}

func (s *s3Store) Put(ctx rcontext.RequestContext, path string, r io.Reader, size int64, contentType string) (string, error) {
	metrics.S3Operations.With(map[string]string{"operation": "PutObject"}).Inc()
	_, err := s.client.PutObject(ctx.Context, s.bucket, path, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		StorageClass: s.storageClass,
	})
	if err != nil {
		return "", err
	}
	return s.UrlFor(path), nil
}

func (s *s3Store) Get(ctx rcontext.RequestContext, url string) (io.ReadCloser, error) {
	location, err := s.locate(url)
	if err != nil {
		return nil, err
	}
	metrics.S3Operations.With(map[string]string{"operation": "GetObject"}).Inc()
	obj, err := s.client.GetObject(ctx.Context, s.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy - stat so missing objects fail here, not mid-copy
	if _, err = obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

func (s *s3Store) locate(url string) (string, error) {
	prefix := s.baseUrl() + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", errors.New("url does not belong to this blob store: " + url)
	}
	location := strings.TrimPrefix(url, prefix)
	if location == "" {
		return "", errors.New("invalid url")
	}
	return location, nil
}
