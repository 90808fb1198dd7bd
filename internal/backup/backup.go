// Package backup uploads ledger snapshots to an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/daybook-dev/daybook/internal/historyfile"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/log"
)

// Config describes the target bucket.
type Config struct {
	Bucket    string
	Region    string // default us-east-1
	Endpoint  string // optional, e.g. a MinIO URL
	Prefix    string
	PathStyle bool
}

// S3Backup writes history-file snapshots to S3.
type S3Backup struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
	logger *log.Logger
}

// New creates an S3Backup using the default AWS credential chain.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*S3Backup, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("backup.s3.bucket is not configured")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates an S3Backup around an existing client.
func NewWithClient(client *s3.Client, cfg Config, logger *log.Logger) *S3Backup {
	if logger == nil {
		logger = log.Discard()
	}
	return &S3Backup{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentBackup),
	}
}

// Key returns the object key for a backup of user's ledger taken at t:
// <prefix>/<user>/history-20060102T150405Z.txt.
func (b *S3Backup) Key(user string, t time.Time) string {
	name := "history-" + t.UTC().Format("20060102T150405Z") + ".txt"
	return path.Join(b.prefix, user, name)
}

// Upload stores the snapshot in history-file format and returns the object key.
func (b *S3Backup) Upload(ctx context.Context, user string, snap ledger.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := historyfile.WriteRecords(&buf, snap.Records); err != nil {
		return "", fmt.Errorf("render history: %w", err)
	}

	key := b.Key(user, b.now())
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata:    map[string]string{"user": user, "days": fmt.Sprint(len(snap.Records))},
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", b.bucket, key, err)
	}
	b.logger.InfoContext(ctx, "backup uploaded",
		log.FieldUser, user,
		log.FieldPath, "s3://"+b.bucket+"/"+key,
		log.FieldDays, len(snap.Records),
		log.FieldOperation, log.OpBackup)
	return key, nil
}
