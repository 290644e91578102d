package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_InvalidURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Connect(ctx, "not a url://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to")
}

func TestClose_NilPool(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, db.Close)
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, nullableString(""))
	require.NotNil(t, nullableString("Found 3 jobs!"))
	assert.Equal(t, "Found 3 jobs!", *nullableString("Found 3 jobs!"))
}

func TestRecordFlowRun_NilInput(t *testing.T) {
	db := &DB{}
	_, err := db.RecordFlowRun(context.Background(), nil)
	require.Error(t, err)
}
