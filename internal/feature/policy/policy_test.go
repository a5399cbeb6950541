package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cinedeck/internal/domain"
)

func TestCanPerform(t *testing.T) {
	anon := Anonymous
	alice := Actor{ID: 10, Role: domain.RoleRegular}
	bob := Actor{ID: 11, Role: domain.RoleRegular}
	admin := Actor{ID: 2, Role: domain.RoleAdmin}

	aliceComment := Own(KindComment, alice.ID)
	privateList := List(domain.List{ID: 1, UserID: alice.ID})
	publicList := List(domain.List{ID: 2, UserID: alice.ID, IsPublic: true})
	official := List(domain.List{ID: 3, IsOfficial: true, IsPublic: true})

	tests := []struct {
		name  string
		actor Actor
		act   Action
		res   Resource
		want  bool
	}{
		{"admin manages users", admin, ManageUsers, Users(), true},
		{"regular cannot manage users", alice, ManageUsers, Users(), false},
		{"anon cannot manage users", anon, ManageUsers, Users(), false},
		{"admin features", admin, Feature, publicList, true},
		{"owner cannot feature", alice, Feature, publicList, false},
		{"author edits own comment", alice, Edit, aliceComment, true},
		{"other user cannot delete comment", bob, Delete, aliceComment, false},
		{"admin deletes any comment", admin, Delete, aliceComment, true},
		{"anon cannot delete comment", anon, Delete, aliceComment, false},
		{"anon reads public list", anon, Read, publicList, true},
		{"anon cannot read private list", anon, Read, privateList, false},
		{"other cannot read private list", bob, Read, privateList, false},
		{"owner reads private list", alice, Read, privateList, true},
		{"admin reads private list", admin, Read, privateList, true},
		{"anon reads official list", anon, Read, official, true},
		{"anon reads media", anon, Read, Resource{Kind: KindMedia}, true},
		{"authenticated creates list", bob, Create, Own(KindList, bob.ID), true},
		{"anon cannot create", anon, Create, Own(KindWatchlist, 0), false},
		{"regular cannot create official", alice, Create, official, false},
		{"admin creates official", admin, Create, official, true},
		{"owner cannot edit official", alice, Edit, official, false},
		{"admin edits official", admin, Edit, official, true},
		{"owner shares own list", alice, Share, privateList, true},
		{"other cannot share", bob, Share, publicList, false},
		{"only admin moderates", alice, Moderate, Resource{Kind: KindComment}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.actor, tt.act, tt.res))
		})
	}
}

func TestCheck_ErrorKinds(t *testing.T) {
	err := Check(Anonymous, Create, Own(KindComment, 0))
	assert.True(t, domain.IsKind(err, domain.KindNotAuthenticated))

	err = Check(Actor{ID: 5}, ManageUsers, Users())
	assert.True(t, domain.IsKind(err, domain.KindPermissionDenied))

	assert.NoError(t, Check(Actor{ID: 5}, Edit, Own(KindRating, 5)))
}
