package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/themis/db"
	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	gdb, err := db.OpenSQL("sqlite://"+filepath.Join(t.TempDir(), "registry.sqlite"), db.SQLOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseSQL(gdb) })

	r, err := New(gdb)
	require.NoError(t, err)
	return r
}

func typedAttributes(t *testing.T) model.Attributes {
	t.Helper()
	nested, err := model.ParseValue(`{"a": [1, 2.5, "x", null, true]}`)
	require.NoError(t, err)
	return model.Attributes{
		"role":    model.StringValue("admin"),
		"level":   model.IntValue(3),
		"score":   model.FloatValue(0.75),
		"active":  model.BoolValue(true),
		"tags":    model.ListValue(model.StringValue("eng"), model.StringValue("ops")),
		"profile": nested,
	}
}

func TestRegisterRoundTripsTypedValues(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	attrs := typedAttributes(t)

	entity, err := r.Register(ctx, model.EntityCreate{URI: "user://alice", Type: model.EntityPrincipal, Attributes: attrs})
	require.NoError(t, err)
	assert.Equal(t, "user://alice", entity.URI)
	assert.Equal(t, model.EntityPrincipal, entity.Type)
	assert.False(t, entity.RegisteredAt.IsZero())
	assert.Equal(t, attrs, entity.AttributeMap())

	fetched, err := r.FetchAttributes(ctx, "user://alice")
	require.NoError(t, err)
	assert.Equal(t, attrs, fetched)
}

func TestRegisterGeneratesURIAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	attrs := model.Attributes{"role": model.StringValue("viewer")}

	entity, err := r.Register(ctx, model.EntityCreate{Attributes: attrs})
	require.NoError(t, err)
	assert.Len(t, entity.URI, 36)
	assert.Equal(t, model.EntityAny, entity.Type)

	_, err = r.Register(ctx, model.EntityCreate{URI: entity.URI, Attributes: attrs})
	assert.ErrorIs(t, err, themis_errors.ErrEntityAlreadyRegistered)

	_, err = r.Register(ctx, model.EntityCreate{URI: "user://empty"})
	assert.ErrorIs(t, err, themis_errors.ErrSchemaViolation)
}

func TestUpdateMergeAndOverride(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	_, err := r.Register(ctx, model.EntityCreate{URI: "user://bob", Attributes: model.Attributes{
		"role": model.StringValue("viewer"),
		"dept": model.StringValue("eng"),
	}})
	require.NoError(t, err)

	merged, err := r.Update(ctx, "user://bob", model.EntityUpdate{URI: "user://bob", Attributes: model.Attributes{
		"role":  model.StringValue("admin"),
		"level": model.IntValue(2),
	}}, false)
	require.NoError(t, err)
	assert.Equal(t, model.Attributes{
		"role":  model.StringValue("admin"),
		"dept":  model.StringValue("eng"),
		"level": model.IntValue(2),
	}, merged.AttributeMap())

	replaced, err := r.Update(ctx, "user://bob", model.EntityUpdate{Attributes: model.Attributes{
		"role": model.StringValue("owner"),
	}}, true)
	require.NoError(t, err)
	assert.Equal(t, model.Attributes{"role": model.StringValue("owner")}, replaced.AttributeMap())

	_, err = r.Update(ctx, "user://bob", model.EntityUpdate{URI: "user://carol"}, false)
	assert.ErrorIs(t, err, themis_errors.ErrSchemaViolation)

	_, err = r.Update(ctx, "user://nobody", model.EntityUpdate{Attributes: model.Attributes{"x": model.IntValue(1)}}, false)
	assert.ErrorIs(t, err, themis_errors.ErrEntityNotFound)
}

func TestDeleteAndUnknownFetch(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	_, err := r.Register(ctx, model.EntityCreate{URI: "doc://1", Attributes: model.Attributes{"kind": model.StringValue("doc")}})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "doc://1"))
	assert.ErrorIs(t, r.Delete(ctx, "doc://1"), themis_errors.ErrEntityNotFound)

	_, err = r.Get(ctx, "doc://1")
	assert.ErrorIs(t, err, themis_errors.ErrEntityNotFound)

	attrs, err := r.FetchAttributes(ctx, "doc://1")
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestListAndCount(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	for _, uri := range []string{"e://1", "e://2", "e://3"} {
		_, err := r.Register(ctx, model.EntityCreate{URI: uri, Attributes: model.Attributes{"n": model.StringValue(uri)}})
		require.NoError(t, err)
	}

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	page, err := r.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)

	all, err := r.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = r.List(ctx, -1, 10)
	assert.ErrorIs(t, err, themis_errors.ErrInvalidPagination)
}

func TestLegacyPlainStringValues(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	_, err := r.Register(ctx, model.EntityCreate{URI: "user://legacy", Attributes: model.Attributes{"role": model.StringValue("x")}})
	require.NoError(t, err)

	require.NoError(t, r.db.Model(&attributeRecord{}).
		Where("entity_uri = ? AND key = ?", "user://legacy", "role").
		Update("value_json", "admin").Error)

	attrs, err := r.FetchAttributes(ctx, "user://legacy")
	require.NoError(t, err)
	assert.Equal(t, model.StringValue("admin"), attrs["role"])
}
