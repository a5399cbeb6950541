package directory

import (
	"go.uber.org/zap"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
)

func (d *Directory) CreateList(a policy.Actor, in domain.ListInput) (domain.List, error) {
	if err := policy.Check(a, policy.Create, policy.Own(policy.KindList, a.ID)); err != nil {
		return domain.List{}, err
	}
	u, err := d.actorUser(a)
	if err != nil {
		return domain.List{}, err
	}
	l, err := domain.NewList(in, d.ids.Next(), u.ID, d.now())
	if err != nil {
		return domain.List{}, err
	}
	u.CustomLists = append(u.CustomLists, l)
	return l.Clone(), nil
}

// findList 返回列表所属用户与下标
func (d *Directory) findList(id int64) (*domain.User, int) {
	for _, u := range d.users {
		for i := range u.CustomLists {
			if u.CustomLists[i].ID == id {
				return u, i
			}
		}
	}
	return nil, -1
}

// List looks up a user-owned list without any permission check.
func (d *Directory) List(id int64) (domain.List, bool) {
	u, i := d.findList(id)
	if u == nil {
		return domain.List{}, false
	}
	return u.CustomLists[i].Clone(), true
}

// editable 定位列表并校验 owner-or-admin
func (d *Directory) editable(a policy.Actor, act policy.Action, id int64) (*domain.List, error) {
	if !a.Authenticated() {
		return nil, domain.NotAuthenticated()
	}
	u, i := d.findList(id)
	if u == nil {
		return nil, domain.NotFound("list %d not found", id)
	}
	l := &u.CustomLists[i]
	if err := policy.Check(a, act, policy.List(*l)); err != nil {
		return nil, err
	}
	return l, nil
}

func (d *Directory) UpdateList(a policy.Actor, id int64, p domain.ListPatch) (domain.List, error) {
	l, err := d.editable(a, policy.Edit, id)
	if err != nil {
		return domain.List{}, err
	}
	if err := l.Apply(p, d.now()); err != nil {
		return domain.List{}, err
	}
	return l.Clone(), nil
}

func (d *Directory) DeleteList(a policy.Actor, id int64) error {
	if _, err := d.editable(a, policy.Delete, id); err != nil {
		return err
	}
	u, i := d.findList(id)
	u.CustomLists = append(u.CustomLists[:i], u.CustomLists[i+1:]...)
	d.log.Info("directory: list deleted", zap.Int64("list", id), zap.Int64("owner", u.ID), zap.Int64("actor", a.ID))
	return nil
}

func (d *Directory) AddToList(a policy.Actor, id int64, ref domain.MediaRef) (domain.List, error) {
	l, err := d.editable(a, policy.Edit, id)
	if err != nil {
		return domain.List{}, err
	}
	if ref.ID == 0 {
		return domain.List{}, domain.Validation("media id is required")
	}
	if err := l.AddItem(ref, d.now()); err != nil {
		return domain.List{}, err
	}
	return l.Clone(), nil
}

func (d *Directory) RemoveFromList(a policy.Actor, id, mediaID int64, t domain.MediaType) (domain.List, error) {
	l, err := d.editable(a, policy.Edit, id)
	if err != nil {
		return domain.List{}, err
	}
	if err := l.RemoveItem(mediaID, t, d.now()); err != nil {
		return domain.List{}, err
	}
	return l.Clone(), nil
}

// View enriches a list with its owner's display data. isFeatured is left to the overlay.
func (d *Directory) View(l domain.List) domain.ListView {
	v := domain.ListView{List: l.Clone()}
	if u := d.byID(l.UserID); u != nil {
		v.OwnerUsername, v.OwnerName = u.Username, u.Name
	}
	return v
}

func (d *Directory) collect(keep func(domain.List) bool) []domain.ListView {
	out := []domain.ListView{}
	for _, u := range d.users {
		for _, l := range u.CustomLists {
			if keep(l) {
				out = append(out, d.View(l))
			}
		}
	}
	return out
}

// UserLists returns a user's lists; userID 0 means the actor. Other users only
// see the public ones unless the actor is an admin.
func (d *Directory) UserLists(a policy.Actor, userID int64) []domain.ListView {
	if userID == 0 {
		userID = a.ID
	}
	if userID == 0 {
		return []domain.ListView{}
	}
	return d.collect(func(l domain.List) bool {
		return l.UserID == userID && policy.CanPerform(a, policy.Read, policy.List(l))
	})
}

func (d *Directory) PublicLists() []domain.ListView {
	return d.collect(func(l domain.List) bool { return l.IsPublic })
}

// AllLists 非管理员降级为公开列表，不报错
func (d *Directory) AllLists(a policy.Actor) []domain.ListView {
	if !a.IsAdmin() {
		return d.PublicLists()
	}
	return d.collect(func(domain.List) bool { return true })
}

func (d *Directory) GetList(a policy.Actor, id int64) (domain.ListView, error) {
	l, ok := d.List(id)
	if !ok {
		return domain.ListView{}, domain.NotFound("list %d not found", id)
	}
	if err := policy.Check(a, policy.Read, policy.List(l)); err != nil {
		return domain.ListView{}, err
	}
	return d.View(l), nil
}

// ShareList deep-copies src into the target user's lists. The copy is private and
// records where it came from; later edits to src do not reach it.
func (d *Directory) ShareList(a policy.Actor, src domain.List, targetUsername string) (domain.List, error) {
	if err := policy.Check(a, policy.Share, policy.List(src)); err != nil {
		return domain.List{}, err
	}
	target := d.byUsername(targetUsername)
	if target == nil {
		return domain.List{}, domain.NotFound("user %q not found", targetUsername)
	}
	if target.ID == a.ID {
		return domain.List{}, domain.SelfShare()
	}

	origin := domain.ShareOrigin{UserID: src.UserID, ListID: src.ID}
	if owner := d.byID(src.UserID); owner != nil {
		origin.Username = owner.Username
	}
	now := d.now()
	cp := src.Clone()
	cp.ID = d.ids.Next()
	cp.UserID = target.ID
	cp.IsOfficial = false
	cp.IsPublic = false
	cp.SharedFrom = &origin
	cp.CreatedAt, cp.UpdatedAt = now, now
	target.CustomLists = append(target.CustomLists, cp)

	d.log.Info("directory: list shared", zap.Int64("list", src.ID), zap.Int64("copy", cp.ID), zap.Int64("to", target.ID))
	return cp.Clone(), nil
}
