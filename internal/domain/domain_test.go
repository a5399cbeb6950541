package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalActiveDefault(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"username":"manuel","password":"senha123","role":"cinefilo"}`), &u))
	assert.True(t, u.Active)
	assert.Equal(t, "senha123", u.Password)
	assert.Equal(t, RoleRegular, NormalizeRole(u.Role))

	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"username":"x","active":false}`), &u))
	assert.False(t, u.Active)
}

func TestUser_AccountStripsCredentialAndCopies(t *testing.T) {
	u := &User{ID: 7, Username: "alice", Password: "hash", Watchlist: []MediaRef{{ID: 42, MediaType: MediaMovie}}}
	acc := u.Account()

	b, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "hash")

	acc.Watchlist[0].ID = 99
	assert.Equal(t, int64(42), u.Watchlist[0].ID)
	assert.NotNil(t, acc.Ratings)
}

func TestNewList(t *testing.T) {
	now := time.Now()

	_, err := NewList(ListInput{Name: "   "}, 1, 5, now)
	assert.True(t, IsKind(err, KindValidation))

	l, err := NewList(ListInput{
		Name:  " Favorites ",
		Tags:  []string{"drama", " drama", "", "noir"},
		Items: []MediaRef{{ID: 1, MediaType: MediaMovie}, {ID: 1, MediaType: MediaMovie}, {ID: 1, MediaType: MediaTV}},
	}, 10, 5, now)
	require.NoError(t, err)
	assert.Equal(t, "Favorites", l.Name)
	assert.Equal(t, []string{"drama", "noir"}, l.Tags)
	assert.Len(t, l.Items, 2)
	assert.False(t, l.IsOfficial)
	assert.False(t, l.IsPublic)

	official, err := NewList(ListInput{Name: "Staff picks"}, 11, 0, now)
	require.NoError(t, err)
	assert.True(t, official.IsOfficial)
	assert.True(t, official.IsPublic)
}

func TestList_ItemsAndPatch(t *testing.T) {
	now := time.Now()
	l, err := NewList(ListInput{Name: "Watch"}, 1, 2, now)
	require.NoError(t, err)

	require.NoError(t, l.AddItem(MediaRef{ID: 42, MediaType: MediaMovie}, now))
	require.NoError(t, l.AddItem(MediaRef{ID: 42, MediaType: MediaTV}, now))
	err = l.AddItem(MediaRef{ID: 42, MediaType: MediaMovie}, now)
	assert.True(t, IsKind(err, KindDuplicateItem))

	require.NoError(t, l.RemoveItem(42, MediaTV, now))
	assert.Len(t, l.Items, 1)
	assert.True(t, IsKind(l.RemoveItem(7, "", now), KindNotFound))

	empty := ""
	err = l.Apply(ListPatch{Name: &empty}, now)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "Watch", l.Name)

	pub := true
	name := "Renamed"
	require.NoError(t, l.Apply(ListPatch{Name: &name, IsPublic: &pub}, now.Add(time.Minute)))
	assert.Equal(t, "Renamed", l.Name)
	assert.True(t, l.IsPublic)
	assert.True(t, l.UpdatedAt.After(l.CreatedAt))
}

func TestList_CloneIsDeep(t *testing.T) {
	l := List{ID: 1, UserID: 2, Name: "a", Tags: []string{"x"}, Items: []MediaRef{{ID: 1}}, SharedFrom: &ShareOrigin{ListID: 9}}
	c := l.Clone()
	c.Tags[0] = "y"
	c.Items[0].ID = 2
	c.SharedFrom.ListID = 10
	assert.Equal(t, "x", l.Tags[0])
	assert.Equal(t, int64(1), l.Items[0].ID)
	assert.Equal(t, int64(9), l.SharedFrom.ListID)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSelfShare, KindOf(SelfShare()))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, Kind(""), KindOf(nil))
}
