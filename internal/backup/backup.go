package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/larderhq/larder/internal/config"
	"github.com/larderhq/larder/internal/store"
)

// State describes what the backup manager is currently doing.
type State string

const (
	StateDisabled State = "disabled"
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateError    State = "error"
)

// Status is a point-in-time snapshot of the manager, suitable for
// broadcasting to connected clients.
type Status struct {
	State      State      `json:"state"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastObject string     `json:"last_object,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusFunc receives status transitions as they happen.
type StatusFunc func(Status)

// s3Client is the slice of the AWS S3 API the manager uses. The concrete
// *s3.Client satisfies it; tests substitute a mock.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Manager takes periodic encrypted snapshots of the sqlite database and
// uploads them to S3-compatible storage. Each run records the object in
// the backups table and prunes objects past the retention window.
type Manager struct {
	cfg     config.BackupConfig
	dbPath  string
	db      *sql.DB
	backups *store.BackupStore
	client  s3Client
	logger  *slog.Logger

	onStatus StatusFunc

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg config.BackupConfig, dbPath string, db *sql.DB, backups *store.BackupStore, logger *slog.Logger, onStatus StatusFunc) *Manager {
	state := StateDisabled
	if cfg.Enabled() {
		state = StateIdle
	}
	return &Manager{
		cfg:      cfg,
		dbPath:   dbPath,
		db:       db,
		backups:  backups,
		logger:   logger.With("component", "backup"),
		onStatus: onStatus,
		status:   Status{State: state},
	}
}

// newS3Client builds a client from static credentials. Endpoint may point
// at any S3-compatible service (MinIO, R2, Backblaze); path-style
// addressing keeps those working.
func newS3Client(cfg config.BackupConfig) *s3.Client {
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

// Status returns the current manager status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	cb := m.onStatus
	m.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// Start launches the periodic backup loop. No-op when backups are not
// configured.
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled() {
		m.logger.Info("backups disabled, not starting")
		return nil
	}

	if m.client == nil {
		m.client = newS3Client(m.cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		m.logger.Info("backup loop started", "interval", m.cfg.Interval, "retention", m.cfg.Retention)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.Run(ctx); err != nil {
					m.logger.Error("backup failed", "error", err)
				}
			}
		}
	}()
	return nil
}

// Stop halts the loop and waits for any in-flight backup to finish.
// Safe to call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("backup loop stopped")
}

// Run performs a single backup: snapshot, encrypt, upload, record, prune.
func (m *Manager) Run(ctx context.Context) error {
	m.setStatus(Status{State: StateRunning, InProgress: true})

	key, size, err := m.run(ctx)
	now := time.Now().UTC()
	if err != nil {
		m.setStatus(Status{State: StateError, LastRun: &now, LastError: err.Error()})
		return err
	}

	m.setStatus(Status{State: StateIdle, LastRun: &now, LastObject: key})
	m.logger.Info("backup complete", "object_key", key, "size_bytes", size)

	if err := m.prune(ctx, now); err != nil {
		m.logger.Error("backup prune failed", "error", err)
	}
	return nil
}

func (m *Manager) run(ctx context.Context) (string, int64, error) {
	tmpDir, err := os.MkdirTemp("", "larder-backup")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// VACUUM INTO writes a consistent snapshot without blocking writers.
	snapPath := filepath.Join(tmpDir, "snapshot.db")
	if _, err := m.db.Exec("VACUUM INTO ?", snapPath); err != nil {
		return "", 0, fmt.Errorf("snapshot database: %w", err)
	}

	plaintext, err := os.ReadFile(snapPath)
	if err != nil {
		return "", 0, fmt.Errorf("read snapshot: %w", err)
	}

	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return "", 0, fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("larder/%s-%s.db.enc", time.Now().UTC().Format("20060102T150405Z"), uuid.NewString())

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(sealed),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("upload backup: %w", err)
	}

	size := int64(len(sealed))
	if _, err := m.backups.Insert(key, size); err != nil {
		return "", 0, fmt.Errorf("record backup: %w", err)
	}
	return key, size, nil
}

// prune deletes recorded backups older than the retention window, both
// the rows and the bucket objects.
func (m *Manager) prune(ctx context.Context, now time.Time) error {
	keys, err := m.backups.DeleteOlderThan(now.Add(-m.cfg.Retention))
	if err != nil {
		return fmt.Errorf("expire backup rows: %w", err)
	}

	for _, key := range keys {
		_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			m.logger.Error("delete expired backup object", "object_key", key, "error", err)
			continue
		}
		m.logger.Info("deleted expired backup", "object_key", key)
	}
	return nil
}

// Download fetches and decrypts a backup object.
func (m *Manager) Download(ctx context.Context, objectKey string) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch backup object: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read backup object: %w", err)
	}

	plaintext, err := Decrypt(sealed, m.cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt backup: %w", err)
	}
	return plaintext, nil
}

// Restore downloads a backup and writes it next to the live database as
// <dbPath>.restore. The operator swaps the files in while the server is
// down; overwriting the live file under an open connection would corrupt
// it.
func (m *Manager) Restore(ctx context.Context, objectKey string) (string, error) {
	plaintext, err := m.Download(ctx, objectKey)
	if err != nil {
		return "", err
	}

	restorePath := m.dbPath + ".restore"
	if err := os.WriteFile(restorePath, plaintext, 0600); err != nil {
		return "", fmt.Errorf("write restored database: %w", err)
	}
	m.logger.Info("backup restored", "object_key", objectKey, "path", restorePath)
	return restorePath, nil
}
