package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/repo"
)

// switchKV 可以随时让写操作失败
type switchKV struct {
	*repo.MemoryKV
	fail atomic.Bool
}

func (k *switchKV) Set(ctx context.Context, key string, val []byte) error {
	if k.fail.Load() {
		return errors.New("storage unavailable")
	}
	return k.MemoryKV.Set(ctx, key, val)
}

func (k *switchKV) Delete(ctx context.Context, key string) error {
	if k.fail.Load() {
		return errors.New("storage unavailable")
	}
	return k.MemoryKV.Delete(ctx, key)
}

var ctx = context.Background()

func openStore(t *testing.T, kv repo.KV, opts Options) *Store {
	t.Helper()
	opts.HashCost = bcrypt.MinCost
	s, err := Open(ctx, kv, opts, nil)
	require.NoError(t, err)
	return s
}

func login(t *testing.T, s *Store, username, password string) domain.Account {
	t.Helper()
	r := s.Login(ctx, username, password)
	require.True(t, r.Success, r.Message)
	return r.Data
}

func TestOpen_SeedsDefaultAccounts(t *testing.T) {
	kv := repo.NewMemoryKV()
	s := openStore(t, kv, Options{})

	raw, err := kv.Get(ctx, repo.KeyUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "senha123", "seeded passwords are stored hashed")

	assert.False(t, s.CurrentUser().Success)
	assert.Equal(t, domain.KindNotAuthenticated, s.GetAllUsers().Code, "anonymous reads of the user table are rejected")

	admin := login(t, s, "jose", "admin123")
	assert.True(t, admin.IsAdmin())
	users := s.GetAllUsers()
	require.True(t, users.Success)
	assert.Len(t, users.Data, 2)
}

func TestAliceWatchlistScenario(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "jose", "admin123")
	require.True(t, s.CreateUser(ctx, directory.NewUser{Username: "alice", Password: "p1"}).Success)
	require.True(t, s.Logout(ctx).Success)
	login(t, s, "alice", "p1")

	movie := domain.MediaRef{ID: 42, Title: "Answer", MediaType: domain.MediaMovie}
	assert.True(t, s.AddToWatchlist(ctx, movie).Success)

	again := s.AddToWatchlist(ctx, movie)
	assert.False(t, again.Success)
	assert.Equal(t, domain.KindAlreadyInWatchlist, again.Code)

	removed := s.RemoveFromWatchlist(ctx, 42)
	require.True(t, removed.Success)
	assert.Empty(t, removed.Data)
	assert.Empty(t, s.CurrentUser().Data.Watchlist)
}

func TestFavoritesFeaturingScenario(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "jose", "admin123")
	require.True(t, s.CreateUser(ctx, directory.NewUser{Username: "alice", Password: "p1"}).Success)

	login(t, s, "alice", "p1")
	created := s.CreateList(ctx, domain.ListInput{Name: "Favorites", IsPublic: false})
	require.True(t, created.Success)
	id := created.Data.ID

	login(t, s, "jose", "admin123")
	denied := s.AddToFeatured(ctx, id)
	assert.False(t, denied.Success, "private lists cannot be featured")
	assert.Empty(t, s.FeaturedLists().Data)

	login(t, s, "alice", "p1")
	public := true
	require.True(t, s.UpdateList(ctx, id, domain.ListPatch{IsPublic: &public}).Success)

	login(t, s, "jose", "admin123")
	require.True(t, s.AddToFeatured(ctx, id).Success)
	assert.Equal(t, domain.KindDuplicateItem, s.AddToFeatured(ctx, id).Code)

	featured := s.FeaturedLists().Data
	require.Len(t, featured, 1)
	assert.Equal(t, "Favorites", featured[0].Name)
	assert.True(t, featured[0].IsFeatured)
	assert.Equal(t, "alice", featured[0].OwnerUsername)

	require.True(t, s.RemoveFromFeatured(ctx, id).Success)
	assert.Empty(t, s.FeaturedLists().Data)
	assert.Equal(t, domain.KindNotFound, s.RemoveFromFeatured(ctx, id).Code)
	assert.Equal(t, domain.KindNotFound, s.AddToFeatured(ctx, 123456).Code)
}

func TestFeaturedFollowsListChanges(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "manuel", "senha123")
	a := s.CreateList(ctx, domain.ListInput{Name: "A", IsPublic: true}).Data
	b := s.CreateList(ctx, domain.ListInput{Name: "B", IsPublic: true}).Data

	login(t, s, "jose", "admin123")
	require.True(t, s.AddToFeatured(ctx, a.ID).Success)
	require.True(t, s.AddToFeatured(ctx, b.ID).Success)
	official := s.CreateOfficialList(ctx, domain.ListInput{Name: "Staff picks"})
	require.True(t, official.Success)
	require.True(t, s.AddToFeatured(ctx, official.Data.ID).Success)

	names := func() []string {
		var out []string
		for _, v := range s.FeaturedLists().Data {
			out = append(out, v.Name)
		}
		return out
	}
	assert.Equal(t, []string{"A", "B", "Staff picks"}, names())

	private := false
	require.True(t, s.UpdateList(ctx, a.ID, domain.ListPatch{IsPublic: &private}).Success)
	require.True(t, s.DeleteList(ctx, b.ID).Success)
	assert.Equal(t, []string{"Staff picks"}, names())
	assert.False(t, s.IsFeatured(a.ID).Data)

	all := s.ListsForFeaturing()
	require.True(t, all.Success)
	assert.Len(t, all.Data, 1)
}

func TestCommentsAndProtectedAccounts(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "jose", "admin123")
	require.True(t, s.CreateUser(ctx, directory.NewUser{Username: "bob", Password: "p"}).Success)

	login(t, s, "manuel", "senha123")
	c := s.AddComment(ctx, 42, domain.MediaMovie, "classic")
	require.True(t, c.Success)

	login(t, s, "bob", "p")
	r := s.RemoveComment(ctx, c.Data.ID)
	assert.Equal(t, domain.KindPermissionDenied, r.Code)
	assert.Equal(t, s.MediaComments(42).Data, s.MediaComments(42).Data)
	assert.Len(t, s.MediaComments(42).Data, 1)

	assert.Equal(t, domain.KindPermissionDenied, s.DeleteUser(ctx, 1).Code)
	login(t, s, "jose", "admin123")
	assert.Equal(t, domain.KindProtectedAccount, s.DeleteUser(ctx, 1).Code)
	assert.Equal(t, domain.KindProtectedAccount, s.DeleteUser(ctx, 2).Code)
}

func TestShareList(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "jose", "admin123")
	require.True(t, s.CreateUser(ctx, directory.NewUser{Username: "bob", Password: "p"}).Success)

	login(t, s, "manuel", "senha123")
	l := s.CreateList(ctx, domain.ListInput{Name: "Noir"}).Data
	require.True(t, s.AddToList(ctx, l.ID, domain.MediaRef{ID: 1, MediaType: domain.MediaMovie}).Success)

	shared := s.ShareList(ctx, l.ID, "bob")
	require.True(t, shared.Success, shared.Message)
	require.NotNil(t, shared.Data.SharedFrom)
	assert.Equal(t, l.ID, shared.Data.SharedFrom.ListID)
	assert.Equal(t, "bob", shared.Data.OwnerUsername)

	require.True(t, s.AddToList(ctx, l.ID, domain.MediaRef{ID: 2, MediaType: domain.MediaMovie}).Success)
	assert.Equal(t, domain.KindSelfShare, s.ShareList(ctx, l.ID, "manuel").Code)
	assert.Equal(t, domain.KindNotFound, s.ShareList(ctx, 999, "bob").Code)

	login(t, s, "bob", "p")
	mine := s.UserLists(0)
	require.True(t, mine.Success)
	require.Len(t, mine.Data, 1)
	assert.Len(t, mine.Data[0].Items, 1)
}

func TestGuest_ReadsIgnoreTheSession(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "manuel", "senha123")
	private := s.CreateList(ctx, domain.ListInput{Name: "Secret"}).Data
	public := s.CreateList(ctx, domain.ListInput{Name: "Open", IsPublic: true}).Data

	require.True(t, s.GetList(private.ID).Success, "the owner still sees it")
	got := s.Guest().GetList(private.ID)
	require.False(t, got.Success)
	assert.Contains(t, []domain.Kind{domain.KindNotAuthenticated, domain.KindPermissionDenied}, got.Code)
	assert.True(t, s.Guest().GetList(public.ID).Success)

	login(t, s, "jose", "admin123")
	lists := s.Guest().UserLists(directory.SeedRegularID)
	require.True(t, lists.Success)
	require.Len(t, lists.Data, 1)
	assert.Equal(t, public.ID, lists.Data[0].ID)
	assert.Len(t, s.UserLists(directory.SeedRegularID).Data, 2, "admin session sees both")

	assert.Equal(t, domain.KindNotAuthenticated, s.Guest().UserLists(0).Code)
}

func TestSessionSurvivesReopen(t *testing.T) {
	kv := repo.NewMemoryKV()
	s := openStore(t, kv, Options{})
	login(t, s, "manuel", "senha123")
	require.NoError(t, s.Close(ctx))

	reopened := openStore(t, kv, Options{})
	cur := reopened.CurrentUser()
	require.True(t, cur.Success)
	assert.Equal(t, "manuel", cur.Data.Username)
}

func TestSessionEndsWhenAccountDeactivated(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	login(t, s, "jose", "admin123")

	require.True(t, s.DeactivateUser(ctx, 2).Success)
	assert.Equal(t, domain.KindNotAuthenticated, s.CurrentUser().Code)

	r := s.Login(ctx, "jose", "admin123")
	assert.Equal(t, domain.KindInvalidCredentials, r.Code)
}

func TestDetachedSessionLeavesCurrentUserAlone(t *testing.T) {
	kv := repo.NewMemoryKV()
	s := openStore(t, kv, Options{})
	login(t, s, "manuel", "senha123")
	before, err := kv.Get(ctx, repo.KeyCurrentUser)
	require.NoError(t, err)

	admin := openStore(t, kv, Options{Detached: true})
	assert.False(t, admin.CurrentUser().Success)
	login(t, admin, "jose", "admin123")
	require.True(t, admin.CreateOfficialList(ctx, domain.ListInput{Name: "CLI"}).Success)

	after, err := kv.Get(ctx, repo.KeyCurrentUser)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRollbackOnWriteFailure(t *testing.T) {
	kv := &switchKV{MemoryKV: repo.NewMemoryKV()}
	s := openStore(t, kv, Options{})
	login(t, s, "manuel", "senha123")

	kv.fail.Store(true)
	r := s.AddToWatchlist(ctx, domain.MediaRef{ID: 7, MediaType: domain.MediaTV})
	assert.False(t, r.Success)
	assert.Equal(t, domain.KindInternal, r.Code)
	assert.Error(t, r.Err())

	cur := s.CurrentUser()
	require.True(t, cur.Success, "the session survives the rollback")
	assert.Empty(t, cur.Data.Watchlist)

	kv.fail.Store(false)
	assert.True(t, s.AddToWatchlist(ctx, domain.MediaRef{ID: 7, MediaType: domain.MediaTV}).Success)
}

func TestOpen_RecoversFromCorruptState(t *testing.T) {
	kv := repo.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, repo.KeyUsers, []byte(`{"not":"a list"`)))
	require.NoError(t, kv.Set(ctx, repo.KeyCurrentUser, []byte(`garbage`)))
	require.NoError(t, kv.Set(ctx, repo.KeyFeatured, []byte(`"x"`)))

	s := openStore(t, kv, Options{})
	assert.False(t, s.CurrentUser().Success)
	login(t, s, "manuel", "senha123")

	raw, err := kv.Get(ctx, repo.KeyFeatured)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestLogin_UpgradesLegacyPassword(t *testing.T) {
	kv := repo.NewMemoryKV()
	legacy := `[{"id":1,"username":"manuel","password":"senha123","name":"Manuel","role":"cinefilo"}]`
	require.NoError(t, kv.Set(ctx, repo.KeyUsers, []byte(legacy)))

	s := openStore(t, kv, Options{})
	acc := login(t, s, "manuel", "senha123")
	assert.True(t, acc.Active, "records without an active flag load as active")

	raw, err := kv.Get(ctx, repo.KeyUsers)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), `"senha123"`))
}

func TestClose_RejectsFurtherCalls(t *testing.T) {
	s := openStore(t, repo.NewMemoryKV(), Options{})
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, domain.KindInternal, s.Login(ctx, "manuel", "senha123").Code)
}
