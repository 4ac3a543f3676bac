package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	root := t.TempDir()
	d := NewLocal(root)

	require.NoError(t, d.Put("nested/orders.csv", []byte("order_id\n1\n")))
	assert.True(t, d.Exists("nested/orders.csv"))
	assert.False(t, d.Exists("nested"), "directories are not files")

	got, err := d.Get("nested/orders.csv")
	require.NoError(t, err)
	assert.Equal(t, "order_id\n1\n", string(got))

	require.NoError(t, d.Put("nested/orders.csv", []byte("order_id\n2\n")))
	got, err = d.Get("nested/orders.csv")
	require.NoError(t, err)
	assert.Equal(t, "order_id\n2\n", string(got))

	entries, err := os.ReadDir(filepath.Join(root, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	assert.Equal(t, filepath.Join(root, "nested", "orders.csv"), d.Location("nested/orders.csv"))
	assert.Equal(t, root, d.Location(""))

	require.NoError(t, d.Delete("nested/orders.csv"))
	require.NoError(t, d.Delete("nested/orders.csv"), "deleting twice is fine")
	assert.False(t, d.Exists("nested/orders.csv"))
}

func TestLocalDiskMissingFile(t *testing.T) {
	d := NewLocal(t.TempDir())
	_, err := d.Get("customers.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpen(t *testing.T) {
	d, err := Open(context.Background(), "local", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &LocalDisk{}, d)

	_, err = Open(context.Background(), "ftp", "x")
	assert.ErrorContains(t, err, "unsupported disk")
}

// ── S3 driver against an in-memory object API ────────────────────────────────

type memObjects struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (m *memObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objs[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memObjects) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objs[*in.Bucket+"/"+*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *memObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3DiskPrefixesKeys(t *testing.T) {
	api := &memObjects{objs: map[string][]byte{}}
	d := newS3Disk(api, "datasets", "/runs/seed-42/")

	require.NoError(t, d.Put("orders.csv", []byte("order_id\n")))
	_, ok := api.objs["datasets/runs/seed-42/orders.csv"]
	assert.True(t, ok)
	assert.True(t, d.Exists("orders.csv"))
	assert.Equal(t, "s3://datasets/runs/seed-42/orders.csv", d.Location("orders.csv"))

	got, err := d.Get("orders.csv")
	require.NoError(t, err)
	assert.Equal(t, "order_id\n", string(got))

	require.NoError(t, d.Delete("orders.csv"))
	assert.False(t, d.Exists("orders.csv"))

	_, err = d.Get("orders.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, strings.HasPrefix(err.Error(), "storage/s3: get orders.csv"))
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{}, "")
	assert.ErrorContains(t, err, "S3_BUCKET")
}
