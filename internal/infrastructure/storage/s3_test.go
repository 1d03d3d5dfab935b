package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// startMinio runs a throwaway MinIO server, skipping when Docker is missing
func startMinio(t *testing.T) config.ExportConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MinIO container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	return config.ExportConfig{
		Driver:       "s3",
		Bucket:       "invoices",
		Endpoint:     fmt.Sprintf("http://%s:%s", host, port.Port()),
		Region:       "us-east-1",
		AccessKey:    minioUser,
		SecretKey:    minioPassword,
		UsePathStyle: true,
	}
}

func TestS3Store(t *testing.T) {
	cfg := startMinio(t)
	ctx := context.Background()

	s, err := NewS3Store(ctx, cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))
	// second call finds the bucket
	require.NoError(t, s.EnsureBucket(ctx))

	testStoreContract(t, s)

	loc, err := s.Put(ctx, "invoices/INV-9.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://invoices/invoices/INV-9.pdf", loc)
}

func TestNew_S3Driver(t *testing.T) {
	cfg := startMinio(t)
	cfg.Bucket = "created-by-factory"

	s, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "created-by-factory", s.(*S3Store).Bucket())
}
