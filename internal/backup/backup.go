// Package backup snapshots the SQLite database, encrypts it, and
// uploads it to S3-compatible storage. Backups run on demand only,
// triggered by an operator request; there is no scheduler.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is the slice of the S3 API the manager needs, split out
// for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration. The manager stays
// disabled unless the bucket, credentials, and passphrase are all set.
type Config struct {
	S3         S3Config
	DBPath     string
	Passphrase string
	Token      string
}

// Manager produces encrypted database snapshots. One backup runs at a
// time; concurrent triggers queue on the mutex.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager is fully configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.client != nil
}

// Token returns the operator token guarding the trigger endpoint.
func (m *Manager) Token() string {
	return m.cfg.Token
}

// Run checkpoints the WAL, copies the database file, encrypts the
// copy, and uploads it. Returns the object key written.
func (m *Manager) Run(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return "", fmt.Errorf("backup not configured")
	}

	snapshot := filepath.Join(os.TempDir(), fmt.Sprintf("kindwords-backup-%d.db", time.Now().UnixNano()))
	defer os.Remove(snapshot)

	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("wal checkpoint: %w", err)
	}
	if err := copyFile(m.cfg.DBPath, snapshot); err != nil {
		return "", fmt.Errorf("copy database: %w", err)
	}

	plaintext, err := os.ReadFile(snapshot)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("kindwords/backup-%s.db.enc", time.Now().UTC().Format("2006-01-02T150405Z"))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(sealed),
	})
	if err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return key, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
