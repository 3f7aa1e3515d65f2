package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNote(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		note       *Note
		dimensions int
		wantErr    error
		errMsg     string
	}{
		{
			name: "valid note",
			note: &Note{
				ID:        "n1",
				Title:     "Milk",
				Content:   "remember the milk",
				Embedding: []float32{0.1, 0.2, 0.3},
				CreatedAt: now,
			},
			dimensions: 3,
		},
		{
			name: "empty embedding is allowed",
			note: &Note{
				ID:        "n1",
				Content:   "remember the milk",
				CreatedAt: now,
			},
			dimensions: 3,
		},
		{
			name: "zero dimensions disables the width check",
			note: &Note{
				ID:        "n1",
				Content:   "remember the milk",
				Embedding: []float32{0.1},
				CreatedAt: now,
			},
			dimensions: 0,
		},
		{
			name:   "nil note",
			note:   nil,
			errMsg: "nil",
		},
		{
			name: "missing ID",
			note: &Note{
				Content:   "remember the milk",
				CreatedAt: now,
			},
			errMsg: "ID",
		},
		{
			name: "missing content",
			note: &Note{
				ID:        "n1",
				CreatedAt: now,
			},
			wantErr: ErrMissingContent,
		},
		{
			name: "wrong embedding width",
			note: &Note{
				ID:        "n1",
				Content:   "remember the milk",
				Embedding: []float32{0.1, 0.2},
				CreatedAt: now,
			},
			dimensions: 3,
			wantErr:    ErrWrongDimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNote(tt.note, tt.dimensions)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
