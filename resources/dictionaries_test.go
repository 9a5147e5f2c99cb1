package resources_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-waterres-client/internal/apitest"
	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/stretchr/testify/require"
)

const warningLevelPath = resources.DictDataPath + "/type/warning_level"

func serveWarningLevels(f *testFixture) {
	f.backend.Protected(http.MethodGet, warningLevelPath, func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{
			{"id": 3, "dataLabel": "Level III", "dataValue": "3", "sortOrder": 3, "isActive": "1"},
			{"id": 1, "dataLabel": "Level I", "dataValue": "1", "sortOrder": 1, "isActive": "1", "description": "most severe"},
			{"id": 4, "dataLabel": "Retired", "dataValue": "4", "sortOrder": 0, "isActive": "0"},
			{"id": 2, "dataLabel": "Level II", "dataValue": "2", "sortOrder": 2, "isActive": true},
		})
	})
}

func TestDictionaryCacheItems(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	serveWarningLevels(f)

	items, err := f.api.DictCache.Items(ctx, "warning_level")
	require.NoError(t, err)
	require.Equal(t, []resources.DictItem{
		{Label: "Level I", Value: "1", Description: "most severe", SortOrder: 1},
		{Label: "Level II", Value: "2", SortOrder: 2},
		{Label: "Level III", Value: "3", SortOrder: 3},
	}, items)

	items[0].Label = "changed"
	again, err := f.api.DictCache.Items(ctx, "warning_level")
	require.NoError(t, err)
	require.Equal(t, "Level I", again[0].Label)
	require.Equal(t, 1, f.backend.CallCount(http.MethodGet, warningLevelPath))

	empty, err := f.api.DictCache.Items(ctx, "")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestDictionaryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, resources.WithDictionaryTTL(50*time.Millisecond))
	serveWarningLevels(f)

	_, err := f.api.DictCache.Items(ctx, "warning_level")
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)
	_, err = f.api.DictCache.Items(ctx, "warning_level")
	require.NoError(t, err)
	require.Equal(t, 2, f.backend.CallCount(http.MethodGet, warningLevelPath))

	f.api.DictCache.Invalidate("warning_level")
	_, err = f.api.DictCache.Items(ctx, "warning_level")
	require.NoError(t, err)
	require.Equal(t, 3, f.backend.CallCount(http.MethodGet, warningLevelPath))
}

func TestDictionaryLabel(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	serveWarningLevels(f)

	require.Equal(t, "Level II", f.api.DictCache.Label(ctx, "warning_level", 2, "-"))
	require.Equal(t, "Level III", f.api.DictCache.Label(ctx, "warning_level", "3", "-"))
	require.Equal(t, "-", f.api.DictCache.Label(ctx, "warning_level", "4", "-"), "inactive entries are not labelled")
	require.Equal(t, "-", f.api.DictCache.Label(ctx, "warning_level", nil, "-"))
	require.Equal(t, "-", f.api.DictCache.Label(ctx, "", "1", "-"))
	require.Equal(t, "unknown", f.api.DictCache.Label(ctx, "missing_type", "1", "unknown"))
}

func TestDictionaryEndpoints(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.backend.Protected(http.MethodGet, resources.DictTypesPath+"/code/warning_level", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, map[string]any{"id": 7, "typeCode": "warning_level", "typeName": "Warning level", "isActive": true, "dataCount": 4})
	})
	f.backend.Protected(http.MethodGet, resources.DictTypesPath+"/check-code", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, map[string]bool{"exists": r.URL.Query().Get("typeCode") == "warning_level"})
	})
	f.backend.Protected(http.MethodGet, resources.DictDataPath+"/type-id/7", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"id": 1, "typeId": 7, "dataLabel": "Level I", "dataValue": "1", "isActive": 1}})
	})

	typ, err := f.api.Dictionaries.TypeByCode(ctx, "warning_level")
	require.NoError(t, err)
	require.EqualValues(t, 7, typ.ID)
	require.True(t, typ.IsActive.On())
	require.Equal(t, 4, typ.DataCount)

	exists, err := f.api.Dictionaries.TypeCodeExists(ctx, "warning_level", 0)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = f.api.Dictionaries.TypeCodeExists(ctx, "new_type", 7)
	require.NoError(t, err)
	require.False(t, exists)
	rec, _ := f.backend.LastRequest(http.MethodGet, resources.DictTypesPath+"/check-code")
	require.Equal(t, "7", rec.Query.Get("excludeId"))

	data, err := f.api.Dictionaries.DataByTypeID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, data, 1)
	require.Equal(t, resources.FlagOn, data[0].IsActive)
}
