package siteindex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/apotheon-labs/siteindex"
	"github.com/apotheon-labs/siteindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Embed_returns_first_success(t *testing.T) {
	t.Parallel()

	primary := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 2, 3}, nil
		},
	}
	fallback := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			t.Fatal("fallback should not be called when primary succeeds")
			return nil, nil
		},
	}

	chain := siteindex.Chain{primary, fallback}
	vec, err := chain.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestChain_Embed_swallows_primary_error_and_uses_fallback(t *testing.T) {
	t.Parallel()

	primary := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("protocol mismatch")
		},
	}
	fallback := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{4, 5}, nil
		},
	}

	chain := siteindex.Chain{primary, fallback}
	vec, err := chain.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5}, vec)
}

func TestChain_Embed_surfaces_last_backend_error(t *testing.T) {
	t.Parallel()

	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")
	chain := siteindex.Chain{
		&mock.Embedder{EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, primaryErr
		}},
		&mock.Embedder{EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, fallbackErr
		}},
	}

	_, err := chain.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, fallbackErr)
	assert.NotErrorIs(t, err, primaryErr)
}

func TestChain_Embed_fails_with_no_backends(t *testing.T) {
	t.Parallel()

	_, err := siteindex.Chain{}.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, siteindex.EINVALID, siteindex.ErrorCode(err))
}

func TestEmbedAll_preserves_input_order(t *testing.T) {
	t.Parallel()

	e := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text))}, nil
		},
	}

	vecs, err := siteindex.EmbedAll(context.Background(), e, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{1}, vecs[0])
	assert.Equal(t, []float32{2}, vecs[1])
	assert.Equal(t, []float32{3}, vecs[2])
}

func TestEmbedAll_aborts_on_first_failure(t *testing.T) {
	t.Parallel()

	calls := 0
	e := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("service stalled")
			}
			return []float32{1}, nil
		},
	}

	_, err := siteindex.EmbedAll(context.Background(), e, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
