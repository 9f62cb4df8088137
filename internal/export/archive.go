package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"invoizo/internal/core"
	"invoizo/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const snapshotVersion = 1

// Snapshot is every store key of one namespace, values kept verbatim.
type Snapshot struct {
	Version   int                        `json:"version"`
	CreatedAt string                     `json:"createdAt"`
	Data      map[string]json.RawMessage `json:"data"`
}

// ObjectPutter is the slice of the S3 client the archiver uploads through.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds a client for AWS or any S3-compatible endpoint (R2,
// MinIO). Static credentials are used when given, the default chain otherwise.
func NewS3Client(ctx context.Context, c S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure s3 client: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Archiver snapshots the store and optionally ships the snapshot to a bucket.
type Archiver struct {
	Store  store.Store
	Client ObjectPutter // nil disables upload
	Bucket string
	Prefix string
	Now    func() time.Time
}

func (a *Archiver) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Snapshot reads every known and stored key.
func (a *Archiver) Snapshot(ctx context.Context) (*Snapshot, error) {
	keys, err := a.Store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list store keys: %w", err)
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range store.AllKeys {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	sort.Strings(keys)

	snap := &Snapshot{
		Version:   snapshotVersion,
		CreatedAt: a.now().UTC().Format(time.RFC3339),
		Data:      make(map[string]json.RawMessage, len(keys)),
	}
	for _, k := range keys {
		raw, ok, err := a.Store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		if ok && json.Valid(raw) {
			snap.Data[k] = json.RawMessage(raw)
		}
	}
	return snap, nil
}

// WriteSnapshot encodes a fresh snapshot to w.
func (a *Archiver) WriteSnapshot(ctx context.Context, w io.Writer) error {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Backup uploads a snapshot and returns its object key.
func (a *Archiver) Backup(ctx context.Context) (string, error) {
	if a.Client == nil || a.Bucket == "" {
		return "", core.ValidationError("Backup storage is not configured")
	}
	var buf bytes.Buffer
	if err := a.WriteSnapshot(ctx, &buf); err != nil {
		return "", err
	}

	key := path.Join(a.Prefix, fmt.Sprintf("backup_%s.json", a.now().UTC().Format("20060102_150405")))
	_, err := a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}
	return key, nil
}

// Restore writes every key of the snapshot in r back into the store in one
// update. Keys absent from the snapshot are left alone.
func (a *Archiver) Restore(ctx context.Context, r io.Reader) (int, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return 0, core.ValidationError("Backup file is not a valid snapshot")
	}
	if snap.Version != snapshotVersion {
		return 0, core.ValidationError(fmt.Sprintf("Unsupported backup version %d", snap.Version))
	}

	keys := make([]string, 0, len(snap.Data))
	for k := range snap.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err := a.Store.Update(ctx, func(tx store.Tx) error {
		for _, k := range keys {
			if err := tx.Put(ctx, k, snap.Data[k]); err != nil {
				return fmt.Errorf("failed to restore %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
