package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/common/config"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/otp"
)

func TestNewWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.json")
	cfg := &config.Config{
		DocumentStore: config.StoreFile,
		DocumentName:  "backoffice",
		DataPath:      path,
		DocumentLock:  config.LockLocal,
		LockTTLSecs:   30,
		AuditSink:     config.SinkNone,
		OtpRevealCode: true,
	}
	ctx := context.Background()

	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Services.Otp.Issue(ctx, otp.IssueRequest{Phone: "061234567", Purpose: document.PurposeOpen})
	require.NoError(t, err)
	assert.NotEmpty(t, res.DemoCode)

	// a second app over the same file sees the first one's writes
	b, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Services.Otp.Verify(ctx, otp.VerifyRequest{TransactionID: res.TransactionID, Code: res.DemoCode}))
	assert.FileExists(t, path)
}

func TestNewRejectsUnknownStore(t *testing.T) {
	_, err := New(context.Background(), &config.Config{DocumentStore: "sqlite", DocumentLock: config.LockNone}, zap.NewNop())
	assert.Error(t, err)
}
