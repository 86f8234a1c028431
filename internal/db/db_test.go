package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), "://not-a-url", 4)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse db config")
}
