package commands

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	params, err := parseKeyValues([]string{"q=red sox", "page=2", "price=9.5", "eticket=true", "ids=1", "ids=2", "ids=3", "note=a=b"})
	require.NoError(t, err)

	assert.Equal(t, tevo.Params{
		"q":       "red sox",
		"page":    int64(2),
		"price":   9.5,
		"eticket": true,
		"ids":     []interface{}{int64(1), int64(2), int64(3)},
		"note":    "a=b",
	}, params)

	for _, bad := range []string{"novalue", "=x"} {
		_, err = parseKeyValues([]string{bad})
		require.ErrorIs(t, err, ErrInvalidKeyValue, bad)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err = parseID(bad)
		require.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestSplitResourcePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		resource string
		path     string
	}{
		{"/events/12", "events", "/12"},
		{"events", "events", ""},
		{"/clients/3/addresses", "clients", "/3/addresses"},
		{"/events?venue_id=1", "events", "?venue_id=1"},
		{"/performers/search?q=x", "performers", "/search?q=x"},
	}

	for _, tt := range tests {
		resource, path := splitResourcePath(tt.raw)
		assert.Equal(t, tt.resource, resource.Plural, tt.raw)
		assert.Equal(t, tt.path, path, tt.raw)
	}
}

func TestApplyQuery(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"entries": []map[string]interface{}{{"name": "a"}, {"name": "b"}},
	}

	results, err := applyQuery(context.Background(), ".entries[].name", input)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, results)

	results, err = applyQuery(context.Background(), ".entries | length", input)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{2}, results)

	_, err = applyQuery(context.Background(), ".entries[", input)
	require.Error(t, err)

	_, err = applyQuery(context.Background(), `error("boom")`, input)
	require.Error(t, err)
}

func TestResponseTable(t *testing.T) {
	t.Parallel()

	tbl := responseTable(rawResponse{
		Status:  404,
		Message: "The requested resource could not be found",
		Class:   tevo.ClassApplicationError.String(),
		Body:    map[string]interface{}{"error": "missing"},
	})

	assert.Equal(t, []string{"Property", "Value"}, tbl.headers)
	assert.Equal(t, [][]string{
		{"Status", "404"},
		{"Message", "The requested resource could not be found"},
		{"Class", "Application Error"},
		{"Body", `{"error":"missing"}`},
	}, tbl.rows)
}
