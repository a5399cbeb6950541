package service

import (
	"context"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
)

// view 统一附加 owner 信息与 isFeatured
func (s *Store) view(l domain.List) domain.ListView {
	if l.IsOfficial {
		return s.overlay.Annotate(domain.ListView{List: l})
	}
	return s.overlay.Annotate(s.dir.View(l))
}

// resolve 查找用户列表或官方列表
func (s *Store) resolve(id int64) (domain.List, error) {
	if l, ok := s.dir.List(id); ok {
		return l, nil
	}
	if l, ok := s.overlay.Official(id); ok {
		return l, nil
	}
	return domain.List{}, domain.NotFound("list %d not found", id)
}

func (s *Store) CreateList(ctx context.Context, in domain.ListInput) Result[domain.ListView] {
	return mutate(ctx, s, "create_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.dir.CreateList(a, in)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}

// UpdateList 列表改为私有时会在提交前从 featured 中移除
func (s *Store) UpdateList(ctx context.Context, id int64, p domain.ListPatch) Result[domain.ListView] {
	return mutate(ctx, s, "update_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.dir.UpdateList(a, id, p)
		if err != nil {
			return domain.ListView{}, err
		}
		if !l.IsPublic {
			s.overlay.Forget(l.ID)
		}
		return s.view(l), nil
	})
}

func (s *Store) DeleteList(ctx context.Context, id int64) Result[None] {
	return mutate(ctx, s, "delete_list", func(a policy.Actor) (None, error) {
		if err := s.dir.DeleteList(a, id); err != nil {
			return None{}, err
		}
		s.overlay.Forget(id)
		return None{}, nil
	})
}

func (s *Store) AddToList(ctx context.Context, id int64, ref domain.MediaRef) Result[domain.ListView] {
	return mutate(ctx, s, "add_to_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.dir.AddToList(a, id, ref)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}

func (s *Store) RemoveFromList(ctx context.Context, id, mediaID int64, t domain.MediaType) Result[domain.ListView] {
	return mutate(ctx, s, "remove_from_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.dir.RemoveFromList(a, id, mediaID, t)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}

// UserLists returns userID's lists as the current actor may see them; 0 means the actor.
func (s *Store) UserLists(userID int64) Result[[]domain.ListView] {
	return read(s, "user_lists", s.userLists(userID))
}

func (s *Store) userLists(userID int64) func(policy.Actor) ([]domain.ListView, error) {
	return func(a policy.Actor) ([]domain.ListView, error) {
		if userID == 0 && !a.Authenticated() {
			return nil, domain.NotAuthenticated()
		}
		return s.overlay.AnnotateAll(s.dir.UserLists(a, userID)), nil
	}
}

func (s *Store) PublicLists() Result[[]domain.ListView] {
	return read(s, "public_lists", func(policy.Actor) ([]domain.ListView, error) {
		return s.overlay.AnnotateAll(s.dir.PublicLists()), nil
	})
}

func (s *Store) AllLists() Result[[]domain.ListView] {
	return read(s, "all_lists", func(a policy.Actor) ([]domain.ListView, error) {
		return s.overlay.AnnotateAll(s.dir.AllLists(a)), nil
	})
}

// GetList 用户列表与官方列表共用一个入口
func (s *Store) GetList(id int64) Result[domain.ListView] {
	return read(s, "get_list", s.getList(id))
}

func (s *Store) getList(id int64) func(policy.Actor) (domain.ListView, error) {
	return func(a policy.Actor) (domain.ListView, error) {
		if l, ok := s.overlay.Official(id); ok {
			return s.view(l), nil
		}
		v, err := s.dir.GetList(a, id)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.overlay.Annotate(v), nil
	}
}

// Guest reads the store as an anonymous caller, whoever holds the session.
// HTTP requests without a bound token go through it.
type Guest struct{ s *Store }

func (s *Store) Guest() Guest { return Guest{s: s} }

func (g Guest) GetList(id int64) Result[domain.ListView] {
	anon := policy.Anonymous
	return readAs(g.s, "get_list", &anon, g.s.getList(id))
}

func (g Guest) UserLists(userID int64) Result[[]domain.ListView] {
	anon := policy.Anonymous
	return readAs(g.s, "user_lists", &anon, g.s.userLists(userID))
}

// ShareList copies a user or official list into targetUsername's lists.
func (s *Store) ShareList(ctx context.Context, id int64, targetUsername string) Result[domain.ListView] {
	return mutate(ctx, s, "share_list", func(a policy.Actor) (domain.ListView, error) {
		if !a.Authenticated() {
			return domain.ListView{}, domain.NotAuthenticated()
		}
		src, err := s.resolve(id)
		if err != nil {
			return domain.ListView{}, err
		}
		cp, err := s.dir.ShareList(a, src, targetUsername)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(cp), nil
	})
}

// --- featured ---

func (s *Store) AddToFeatured(ctx context.Context, id int64) Result[None] {
	return mutate(ctx, s, "add_to_featured", func(a policy.Actor) (None, error) {
		return None{}, s.overlay.AddFeatured(a, id, s.dir)
	})
}

func (s *Store) RemoveFromFeatured(ctx context.Context, id int64) Result[None] {
	return mutate(ctx, s, "remove_from_featured", func(a policy.Actor) (None, error) {
		return None{}, s.overlay.RemoveFeatured(a, id)
	})
}

func (s *Store) FeaturedLists() Result[[]domain.ListView] {
	return read(s, "featured_lists", func(policy.Actor) ([]domain.ListView, error) {
		return s.overlay.FeaturedLists(s.dir), nil
	})
}

func (s *Store) IsFeatured(id int64) Result[bool] {
	return read(s, "is_featured", func(policy.Actor) (bool, error) {
		return s.overlay.IsFeatured(id), nil
	})
}

// ListsForFeaturing returns every list an admin could feature: public user lists, then
// official lists, each annotated with its current featured state.
func (s *Store) ListsForFeaturing() Result[[]domain.ListView] {
	return read(s, "lists_for_featuring", func(a policy.Actor) ([]domain.ListView, error) {
		if err := policy.Check(a, policy.Feature, policy.Resource{Kind: policy.KindList, Official: true}); err != nil {
			return nil, err
		}
		out := s.overlay.AnnotateAll(s.dir.PublicLists())
		return append(out, s.overlay.OfficialLists()...), nil
	})
}

// --- official lists ---

func (s *Store) OfficialLists() Result[[]domain.ListView] {
	return read(s, "official_lists", func(policy.Actor) ([]domain.ListView, error) {
		return s.overlay.OfficialLists(), nil
	})
}

func (s *Store) CreateOfficialList(ctx context.Context, in domain.ListInput) Result[domain.ListView] {
	return mutate(ctx, s, "create_official_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.overlay.CreateOfficial(a, in)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}

func (s *Store) UpdateOfficialList(ctx context.Context, id int64, p domain.ListPatch) Result[domain.ListView] {
	return mutate(ctx, s, "update_official_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.overlay.UpdateOfficial(a, id, p)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}

func (s *Store) DeleteOfficialList(ctx context.Context, id int64) Result[None] {
	return mutate(ctx, s, "delete_official_list", func(a policy.Actor) (None, error) {
		return None{}, s.overlay.DeleteOfficial(a, id)
	})
}

func (s *Store) AddToOfficialList(ctx context.Context, id int64, ref domain.MediaRef) Result[domain.ListView] {
	return mutate(ctx, s, "add_to_official_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.overlay.AddOfficialItem(a, id, ref)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}

func (s *Store) RemoveFromOfficialList(ctx context.Context, id, mediaID int64, t domain.MediaType) Result[domain.ListView] {
	return mutate(ctx, s, "remove_from_official_list", func(a policy.Actor) (domain.ListView, error) {
		l, err := s.overlay.RemoveOfficialItem(a, id, mediaID, t)
		if err != nil {
			return domain.ListView{}, err
		}
		return s.view(l), nil
	})
}
