package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
)

func TestInMemorySpaceLookup(t *testing.T) {
	c := NewInMemory()
	c.AddSpace(SpaceInfo{ID: 1, Name: "social", PartsCount: 4}, []PartLeader{{PartID: 0, Host: "h1", Port: 9000}})

	ctx := context.Background()
	info, err := c.SpaceByName(ctx, "social")
	require.NoError(t, err)
	assert.Equal(t, int32(1), info.ID)

	_, err = c.SpaceByName(ctx, "missing")
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, core.SPACE_NOT_FOUND, notFound.Code)
}

func TestInMemoryTagAndEdgeLookup(t *testing.T) {
	c := NewInMemory()
	c.AddSpace(SpaceInfo{ID: 1, Name: "social"}, nil)
	c.AddTag(TagInfo{ID: 10, SpaceID: 1, Name: "person"})
	c.AddEdge(EdgeInfo{ID: 20, SpaceID: 1, Name: "follows"})

	ctx := context.Background()
	tag, err := c.TagByName(ctx, 1, "person")
	require.NoError(t, err)
	assert.Equal(t, int32(10), tag.ID)

	edge, err := c.EdgeByName(ctx, 1, "follows")
	require.NoError(t, err)
	assert.Equal(t, int32(20), edge.ID)

	_, err = c.TagByName(ctx, 1, "nope")
	assert.Error(t, err)
}

func TestInMemoryPartitionCountAndLeaders(t *testing.T) {
	c := NewInMemory()
	c.AddSpace(SpaceInfo{ID: 1, Name: "social", PartsCount: 2}, []PartLeader{{PartID: 0, Host: "h0", Port: 1}})

	ctx := context.Background()
	count, err := c.PartitionCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), count)

	c.SetLeader(1, PartLeader{PartID: 0, Host: "h0-new", Port: 2})
	leaders, err := c.PartLeaders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, "h0-new", leaders[0].Host)
}

func TestInMemoryPermissionCheck(t *testing.T) {
	c := NewInMemory()
	c.AddSpace(SpaceInfo{ID: 1, Name: "social"}, nil)
	c.SetAuthorizer(func(s Session, spaceID int32, perm Permission) error {
		if perm == PermAdmin {
			return errors.New("denied")
		}
		return nil
	})

	ctx := context.Background()
	require.NoError(t, c.CheckPermission(ctx, Session{User: "alice"}, 1, PermRead))
	assert.Error(t, c.CheckPermission(ctx, Session{User: "alice"}, 1, PermAdmin))
}

func TestInMemoryRevisionIncrements(t *testing.T) {
	c := NewInMemory()
	before := c.Revision()
	c.AddSpace(SpaceInfo{ID: 1, Name: "social"}, nil)
	assert.Greater(t, c.Revision(), before)
}
