package roles

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFirestoreErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		notFound      bool
		alreadyExists bool
	}{
		{"not found", status.Error(codes.NotFound, "no document"), true, false},
		{"already exists", status.Error(codes.AlreadyExists, "document exists"), false, true},
		{"wrapped not found", fmt.Errorf("rpc: %w", status.Error(codes.NotFound, "x")), true, false},
		{"unavailable", status.Error(codes.Unavailable, "down"), false, false},
		{"plain", errors.New("boom"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, isNotFound(tt.err))
			assert.Equal(t, tt.alreadyExists, isAlreadyExists(tt.err))
		})
	}
}

func TestNewFirestoreRepository_DefaultCollection(t *testing.T) {
	repo := NewFirestoreRepository(nil, "")
	assert.Equal(t, DefaultCollection, repo.collection)
}
