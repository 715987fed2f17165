package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleDesignations_Has(t *testing.T) {
	api := newFakeAPI()
	api.addMember("1", false, "epic", "other")
	api.addMember("2", false, "other")
	d := NewRoleDesignations(api, NewResolver(api, nil, "guild"), "guild", "epic")
	ctx := context.Background()

	has, err := d.Has(ctx, "1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = d.Has(ctx, "2")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = d.Has(ctx, "not-a-member")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRoleDesignations_Grant(t *testing.T) {
	api := newFakeAPI()
	api.addMember("1", false)
	d := NewRoleDesignations(api, NewResolver(api, nil, "guild"), "guild", "epic")

	require.NoError(t, d.Grant(context.Background(), "1", "top 1%"))
	assert.Equal(t, []roleAdd{{UserId: "1", RoleId: "epic"}}, api.roleAdds)

	api.roleErr = errors.New("Missing Permissions")
	assert.ErrorContains(t, d.Grant(context.Background(), "1", "top 1%"), "Missing Permissions")
}
