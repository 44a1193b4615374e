package gcs

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Uploader stores book covers, PDFs and profile images in a GCS bucket.
type Uploader struct {
	client *storage.Client
	bucket string
}

// NewUploader connects to GCS and checks the bucket is reachable. credsFile
// may be empty, in which case application default credentials apply.
func NewUploader(ctx context.Context, bucket, credsFile string) (*Uploader, error) {
	var opts []option.ClientOption
	if credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %s not accessible: %w", bucket, err)
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

// Upload writes the object under folder/ and returns its object name and
// public URL.
func (u *Uploader) Upload(ctx context.Context, folder, filename string, r io.Reader) (name, url string, err error) {
	name = fmt.Sprintf("%s/%d_%s", folder, time.Now().UnixNano(), filename)
	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", "", err
	}
	if err = w.Close(); err != nil {
		return "", "", err
	}
	url = fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, name)
	return name, url, nil
}

// Delete removes an object. Missing objects are ignored so replacing a file
// that was never uploaded is harmless.
func (u *Uploader) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	err := u.client.Bucket(u.bucket).Object(name).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (u *Uploader) Close() {
	if u.client != nil {
		u.client.Close()
	}
}
