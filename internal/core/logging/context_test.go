package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCommand(t *testing.T) {
	ctx := WithCommand(context.Background(), "add")
	assert.Equal(t, "add", GetCommand(ctx))
}

func TestWithCollection(t *testing.T) {
	ctx := WithCollection(context.Background(), "journal")
	assert.Equal(t, "journal", GetCollection(ctx))
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCommand(ctx))
	assert.Empty(t, GetCollection(ctx))
}

func TestContextValues_Both(t *testing.T) {
	ctx := WithCollection(WithCommand(context.Background(), "stats"), "recipes")

	assert.Equal(t, "stats", GetCommand(ctx))
	assert.Equal(t, "recipes", GetCollection(ctx))
}
