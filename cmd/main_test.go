package main

import (
	"context"
	"io"
	"testing"

	"cart-extractor/extractor"
	"cart-extractor/internal/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageStub string

func (p pageStub) GetPageContent(ctx context.Context, url string) (string, error) {
	return string(p), nil
}

func newTestRegistry(t *testing.T) *extractor.Registry {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	registry, err := extractor.NewDefaultRegistry(types.DefaultConfig(), logger)
	require.NoError(t, err)
	return registry
}

func TestInspect_UnresolvableHostname(t *testing.T) {
	registry := newTestRegistry(t)

	err := inspect(context.Background(), registry, pageStub("<div></div>"), "file:///saved/cart.html", "")

	assert.Error(t, err)
}

func TestInspect_ExplicitHostname(t *testing.T) {
	registry := newTestRegistry(t)

	err := inspect(context.Background(), registry, pageStub("<div></div>"), "file:///saved/cart.html", "www.target.com")

	assert.NoError(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"gift wrap", "promo"}, splitList(" gift wrap, ,promo "))
	assert.Empty(t, splitList(""))
}
