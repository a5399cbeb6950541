// Package featured keeps the admin-curated layer on top of user lists: the ordered
// featured set and the official lists that belong to no user.
package featured

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
	"cinedeck/pkg/utils"
)

// Source 用户列表的只读视图，由 directory 实现
type Source interface {
	List(id int64) (domain.List, bool)
	View(l domain.List) domain.ListView
}

type Options struct {
	IDs *utils.IDGen
	Now func() time.Time
	Log *zap.Logger
}

type Overlay struct {
	featured []int64
	official []domain.List
	ids      *utils.IDGen
	now      func() time.Time
	log      *zap.Logger
}

var officialResource = policy.Resource{Kind: policy.KindList, Official: true, Public: true}

// New loads persisted overlay state, collapsing duplicate ids and repairing official lists.
func New(featuredIDs []int64, official []domain.List, opt Options) *Overlay {
	if opt.IDs == nil {
		opt.IDs = utils.NewIDGen(opt.Now)
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	o := &Overlay{ids: opt.IDs, now: opt.Now, log: opt.Log, featured: []int64{}, official: []domain.List{}}

	seen := map[int64]struct{}{}
	for _, l := range official {
		if _, dup := seen[l.ID]; dup || l.ID == 0 {
			continue
		}
		seen[l.ID] = struct{}{}
		o.ids.Observe(l.ID)
		l = l.Clone()
		l.UserID, l.IsOfficial, l.IsPublic, l.SharedFrom = 0, true, true, nil
		l.Normalize()
		o.official = append(o.official, l)
	}
	for _, id := range featuredIDs {
		if id != 0 && !slices.Contains(o.featured, id) {
			o.featured = append(o.featured, id)
		}
	}
	return o
}

// Export 返回可持久化的副本
func (o *Overlay) Export() ([]int64, []domain.List) {
	lists := make([]domain.List, 0, len(o.official))
	for _, l := range o.official {
		lists = append(lists, l.Clone())
	}
	return slices.Clone(o.featured), lists
}

// --- featured set ---

func (o *Overlay) FeaturedIDs() []int64 { return slices.Clone(o.featured) }

func (o *Overlay) IsFeatured(id int64) bool { return slices.Contains(o.featured, id) }

// AddFeatured appends id to the featured set. The target must be a public user list or
// an official list.
func (o *Overlay) AddFeatured(a policy.Actor, id int64, src Source) error {
	if err := policy.Check(a, policy.Feature, officialResource); err != nil {
		return err
	}
	if _, ok := o.Official(id); !ok {
		l, found := src.List(id)
		if !found {
			return domain.NotFound("list %d not found", id)
		}
		if !l.IsPublic {
			return domain.Validation("only public lists can be featured")
		}
	}
	if o.IsFeatured(id) {
		return domain.DuplicateItem("list %d is already featured", id)
	}
	o.featured = append(o.featured, id)
	o.log.Info("featured: list featured", zap.Int64("list", id), zap.Int64("actor", a.ID))
	return nil
}

func (o *Overlay) RemoveFeatured(a policy.Actor, id int64) error {
	if err := policy.Check(a, policy.Feature, officialResource); err != nil {
		return err
	}
	if !o.Forget(id) {
		return domain.NotFound("list %d is not featured", id)
	}
	o.log.Info("featured: list unfeatured", zap.Int64("list", id), zap.Int64("actor", a.ID))
	return nil
}

// Forget drops id from the featured set without any check; it reports whether it was there.
func (o *Overlay) Forget(id int64) bool {
	i := slices.Index(o.featured, id)
	if i < 0 {
		return false
	}
	o.featured = slices.Delete(o.featured, i, i+1)
	return true
}

// Prune removes featured ids that no longer point at a public user list or an official
// list and returns them.
func (o *Overlay) Prune(src Source) []int64 {
	var gone []int64
	kept := o.featured[:0:0]
	for _, id := range o.featured {
		if _, ok := o.Official(id); ok {
			kept = append(kept, id)
			continue
		}
		if l, ok := src.List(id); ok && l.IsPublic {
			kept = append(kept, id)
			continue
		}
		gone = append(gone, id)
	}
	if len(gone) > 0 {
		o.featured = kept
		o.log.Info("featured: pruned stale ids", zap.Int64s("lists", gone))
	}
	return gone
}

// --- official lists ---

func (o *Overlay) findOfficial(id int64) int {
	return slices.IndexFunc(o.official, func(l domain.List) bool { return l.ID == id })
}

func (o *Overlay) Official(id int64) (domain.List, bool) {
	i := o.findOfficial(id)
	if i < 0 {
		return domain.List{}, false
	}
	return o.official[i].Clone(), true
}

func (o *Overlay) editable(a policy.Actor, act policy.Action, id int64) (*domain.List, error) {
	if err := policy.Check(a, act, officialResource); err != nil {
		return nil, err
	}
	i := o.findOfficial(id)
	if i < 0 {
		return nil, domain.NotFound("official list %d not found", id)
	}
	return &o.official[i], nil
}

func (o *Overlay) CreateOfficial(a policy.Actor, in domain.ListInput) (domain.List, error) {
	if err := policy.Check(a, policy.Create, officialResource); err != nil {
		return domain.List{}, err
	}
	l, err := domain.NewList(in, o.ids.Next(), 0, o.now())
	if err != nil {
		return domain.List{}, err
	}
	o.official = append(o.official, l)
	o.log.Info("featured: official list created", zap.Int64("list", l.ID), zap.String("name", l.Name))
	return l.Clone(), nil
}

func (o *Overlay) UpdateOfficial(a policy.Actor, id int64, p domain.ListPatch) (domain.List, error) {
	l, err := o.editable(a, policy.Edit, id)
	if err != nil {
		return domain.List{}, err
	}
	if err := l.Apply(p, o.now()); err != nil {
		return domain.List{}, err
	}
	return l.Clone(), nil
}

func (o *Overlay) DeleteOfficial(a policy.Actor, id int64) error {
	if _, err := o.editable(a, policy.Delete, id); err != nil {
		return err
	}
	i := o.findOfficial(id)
	o.official = slices.Delete(o.official, i, i+1)
	o.Forget(id)
	o.log.Info("featured: official list deleted", zap.Int64("list", id))
	return nil
}

func (o *Overlay) AddOfficialItem(a policy.Actor, id int64, ref domain.MediaRef) (domain.List, error) {
	l, err := o.editable(a, policy.Edit, id)
	if err != nil {
		return domain.List{}, err
	}
	if ref.ID == 0 {
		return domain.List{}, domain.Validation("media id is required")
	}
	if err := l.AddItem(ref, o.now()); err != nil {
		return domain.List{}, err
	}
	return l.Clone(), nil
}

func (o *Overlay) RemoveOfficialItem(a policy.Actor, id, mediaID int64, t domain.MediaType) (domain.List, error) {
	l, err := o.editable(a, policy.Edit, id)
	if err != nil {
		return domain.List{}, err
	}
	if err := l.RemoveItem(mediaID, t, o.now()); err != nil {
		return domain.List{}, err
	}
	return l.Clone(), nil
}

// --- views ---

// Annotate 读取时计算 isFeatured
func (o *Overlay) Annotate(v domain.ListView) domain.ListView {
	v.IsFeatured = o.IsFeatured(v.ID)
	return v
}

func (o *Overlay) AnnotateAll(vs []domain.ListView) []domain.ListView {
	for i := range vs {
		vs[i] = o.Annotate(vs[i])
	}
	return vs
}

func (o *Overlay) OfficialLists() []domain.ListView {
	out := make([]domain.ListView, 0, len(o.official))
	for _, l := range o.official {
		out = append(out, o.Annotate(domain.ListView{List: l.Clone()}))
	}
	return out
}

// FeaturedLists returns featured public user lists in featured order, then every official
// list. Each list appears once.
func (o *Overlay) FeaturedLists(src Source) []domain.ListView {
	out := []domain.ListView{}
	for _, id := range o.featured {
		if _, ok := o.Official(id); ok {
			continue
		}
		l, ok := src.List(id)
		if !ok || !l.IsPublic {
			continue
		}
		out = append(out, o.Annotate(src.View(l)))
	}
	return append(out, o.OfficialLists()...)
}
