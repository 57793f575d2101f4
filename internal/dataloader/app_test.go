package dataloader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/aitooling/internal/dataloader/archive"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArchiver_NoBucketIsNoop(t *testing.T) {
	var c config.Config
	c.LoadDefaults()

	a, err := newArchiver(context.Background(), &c)
	require.NoError(t, err)
	assert.Equal(t, archive.Noop{}, a)
}

func TestNewArchiver_BucketBuildsS3(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	var c config.Config
	c.LoadDefaults()
	c.S3Bucket = "uploads"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.S3AccessKey = "minio"
	c.S3SecretKey = "minio123"

	a, err := newArchiver(context.Background(), &c)
	require.NoError(t, err)
	assert.IsType(t, &archive.S3Archiver{}, a)
}

func TestOpenStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, rm, err := OpenStore(ctx, "postgres://u:p@127.0.0.1:1/dataloader?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Nil(t, rm)
}
