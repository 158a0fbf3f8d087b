//go:build integration

package integration

import (
	"context"
	"strconv"
	"testing"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)

	conn := config.Connection(t)
	ctx := context.Background()

	categories, err := conn.Categories().List(ctx, tevo.NewQueryParams().WithPerPage(5))
	require.NoError(t, err)
	assert.NotEmpty(t, categories.Entries)

	for _, category := range categories.Entries {
		assert.Same(t, conn, category.Connection())
	}

	performers, err := conn.Performers().Search(ctx, "yankees", tevo.NewQueryParams().WithPerPage(3))
	require.NoError(t, err)

	if len(performers.Entries) == 0 {
		t.Skip("sandbox has no matching performers")
	}

	performer, err := conn.Performers().Show(ctx, performers.Entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, performers.Entries[0].ID, performer.ID)

	_, err = conn.Venues().Show(ctx, 999999999)
	require.Error(t, err)
	assert.True(t, tevo.IsNotFound(err))
}

func TestEventPagingWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)

	conn := config.Connection(t)
	ctx := context.Background()

	first, err := conn.Events().List(ctx, tevo.NewQueryParams().WithPerPage(2))
	require.NoError(t, err)

	if first.TotalEntries == 0 {
		t.Skip("sandbox has no events")
	}

	limit := 3

	entries, err := tevo.FetchAllPages[*tevo.Event](ctx, func(ctx context.Context, page int) (*tevo.Collection[*tevo.Event], error) {
		list, err := conn.Events().List(ctx, tevo.NewQueryParams().WithPerPage(2).WithPage(page))
		if err != nil {
			return nil, err
		}

		// cap the walk so the test stays quick against a large sandbox
		if list.TotalEntries > limit*list.PerPage {
			list.TotalEntries = limit * list.PerPage
		}

		return list, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestCLIWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("--output", "json", "venues", "list", "--per-page", "2")
	require.NoError(t, err, stderr)
	AssertJSONOutput(t, stdout)

	stdout, stderr, err = runner.Run("--output", "json", "request", "GET", "/categories", "per_page="+strconv.Itoa(2))
	require.NoError(t, err, stderr)
	AssertJSONOutput(t, stdout)
	assert.Contains(t, stdout, `"status": 200`)
}
