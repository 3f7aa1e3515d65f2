package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMediaAsset(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		asset   *MediaAsset
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid pending asset",
			asset: &MediaAsset{
				ID:          "a1",
				LocalPath:   "/uploads/a1.m4a",
				Filename:    "recording.m4a",
				ContentType: "audio/mp4",
				SizeBytes:   2048,
				Status:      MediaAssetStatusPending,
				CreatedAt:   now,
			},
			wantErr: false,
		},
		{
			name: "valid archived asset",
			asset: &MediaAsset{
				ID:         "a1",
				LocalPath:  "/uploads/a1.m4a",
				Status:     MediaAssetStatusArchived,
				ArchiveKey: "media/2025/03/14/a1.m4a",
				CreatedAt:  now,
				ArchivedAt: &now,
			},
			wantErr: false,
		},
		{
			name:    "nil asset",
			asset:   nil,
			wantErr: true,
			errMsg:  "nil",
		},
		{
			name: "missing ID",
			asset: &MediaAsset{
				LocalPath: "/uploads/a1.m4a",
				Status:    MediaAssetStatusPending,
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "ID",
		},
		{
			name: "missing LocalPath",
			asset: &MediaAsset{
				ID:        "a1",
				Status:    MediaAssetStatusPending,
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "LocalPath",
		},
		{
			name: "unknown status",
			asset: &MediaAsset{
				ID:        "a1",
				LocalPath: "/uploads/a1.m4a",
				Status:    MediaAssetStatus("uploading"),
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "Status",
		},
		{
			name: "negative retries",
			asset: &MediaAsset{
				ID:        "a1",
				LocalPath: "/uploads/a1.m4a",
				Status:    MediaAssetStatusPending,
				Retries:   -1,
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "Retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaAsset(tt.asset)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
