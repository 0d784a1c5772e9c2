package gemini_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apotheon-labs/siteindex"
	"github.com/apotheon-labs/siteindex/gemini"
)

func TestEmbedder_Embed_ReturnsErrorWhenTextEmpty(t *testing.T) {
	t.Parallel()

	e := gemini.NewEmbedder(nil, "") // nil client ok, validation happens first

	_, err := e.Embed(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, siteindex.EINVALID, siteindex.ErrorCode(err))
	assert.Contains(t, siteindex.ErrorMessage(err), "text required")
}
