package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 7, 9, 8, 5, 3, 0, time.FixedZone("CST", 8*3600))
	assert.Equal(t, "snapshots/20240709T000503Z-abc.json", SnapshotKey(at, "abc"))
}

func TestIsNoSuchKey(t *testing.T) {
	assert.False(t, IsNoSuchKey(nil))
	assert.True(t, IsNoSuchKey(fmt.Errorf("stat: %w", minio.ErrorResponse{Code: "NoSuchKey"})))
	assert.True(t, IsNoSuchKey(errors.New("The specified key does not exist.")))
	assert.False(t, IsNoSuchKey(minio.ErrorResponse{Code: "AccessDenied", Message: "denied"}))
}
