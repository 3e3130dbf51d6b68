package source

import (
	"context"
	"io"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/tripstat/pkg/tripstaterrors"
)

// OpenerConfig configures remote access.
type OpenerConfig struct {
	// S3Region overrides the region from the AWS default chain
	S3Region string
	// S3Concurrency is the number of parallel ranged GETs per object
	S3Concurrency int
	// GCSCredentialsFile is a service account key file ("" = ADC)
	GCSCredentialsFile string
	// TempDir receives downloaded S3 objects ("" = os.TempDir)
	TempDir string
}

// s3Downloader is the part of manager.Downloader the opener uses.
type s3Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// gcsObjectReader opens one GCS object for reading.
type gcsObjectReader func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// Opener fetches remote objects. Clients are created on first use, so runs
// over local files never touch cloud credentials.
type Opener struct {
	config OpenerConfig
	logger *zap.Logger

	mu         sync.Mutex
	downloader s3Downloader
	gcsOpen    gcsObjectReader
	gcsClient  *storage.Client
}

// NewOpener creates an opener.
func NewOpener(config OpenerConfig, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{config: config, logger: logger}
}

// Open returns a reader over the object at loc. S3 objects are downloaded
// to a temporary file that is removed on Close; GCS objects are streamed.
func (o *Opener) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	switch loc.Scheme {
	case SchemeS3:
		return o.openS3(ctx, loc)
	case SchemeGCS:
		return o.openGCS(ctx, loc)
	case SchemeLocal:
		return os.Open(loc.Path) //nolint:gosec // G304: path is the caller's input file
	default:
		return nil, tripstaterrors.Newf(tripstaterrors.ErrorTypeValidation, "unsupported location scheme %q", loc.Scheme).
			WithDetail("input", loc.String())
	}
}

// Close releases cloud clients.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcsClient != nil {
		err := o.gcsClient.Close()
		o.gcsClient = nil
		return err
	}
	return nil
}

func (o *Opener) openS3(ctx context.Context, loc Location) (io.ReadCloser, error) {
	dl, err := o.s3()
	if err != nil {
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConnection, "failed to load AWS config").
			WithDetail("input", loc.String())
	}

	f, err := os.CreateTemp(o.config.TempDir, "tripstat-s3-*")
	if err != nil {
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeFile, "failed to create download file").
			WithDetail("temp_dir", o.config.TempDir)
	}
	tmp := &tempFile{File: f}

	n, err := dl.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		_ = tmp.Close()
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConnection, "failed to download object").
			WithDetail("input", loc.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = tmp.Close()
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeFile, "failed to rewind download file").
			WithDetail("temp_file", f.Name())
	}

	o.logger.Debug("downloaded S3 object",
		zap.String("location", loc.String()),
		zap.Int64("bytes", n),
		zap.String("temp_file", f.Name()))
	return tmp, nil
}

func (o *Opener) s3() (s3Downloader, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.downloader != nil {
		return o.downloader, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if o.config.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.config.S3Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	o.downloader = manager.NewDownloader(client, func(d *manager.Downloader) {
		if o.config.S3Concurrency > 0 {
			d.Concurrency = o.config.S3Concurrency
		}
	})
	return o.downloader, nil
}

func (o *Opener) openGCS(ctx context.Context, loc Location) (io.ReadCloser, error) {
	open, err := o.gcs(ctx)
	if err != nil {
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConnection, "failed to create GCS client").
			WithDetail("input", loc.String())
	}
	r, err := open(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConnection, "failed to open object").
			WithDetail("input", loc.String())
	}
	return r, nil
}

func (o *Opener) gcs(ctx context.Context) (gcsObjectReader, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcsOpen != nil {
		return o.gcsOpen, nil
	}

	var opts []option.ClientOption
	if o.config.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.config.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	o.gcsClient = client
	o.gcsOpen = func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
		return client.Bucket(bucket).Object(object).NewReader(ctx)
	}
	return o.gcsOpen, nil
}

// tempFile removes itself on Close.
type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	if rerr := os.Remove(t.Name()); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
