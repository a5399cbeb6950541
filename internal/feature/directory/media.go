package directory

import (
	"sort"
	"strings"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
)

// --- watchlist ---

// AddToWatchlist 以 mediaId 判重（不区分 mediaType）
func (d *Directory) AddToWatchlist(a policy.Actor, ref domain.MediaRef) ([]domain.MediaRef, error) {
	if err := policy.Check(a, policy.Create, policy.Own(policy.KindWatchlist, a.ID)); err != nil {
		return nil, err
	}
	u, err := d.actorUser(a)
	if err != nil {
		return nil, err
	}
	if ref.ID == 0 {
		return nil, domain.Validation("media id is required")
	}
	if _, err := domain.ParseMediaType(string(ref.MediaType)); err != nil {
		return nil, err
	}
	for _, m := range u.Watchlist {
		if m.ID == ref.ID {
			return nil, domain.AlreadyInWatchlist()
		}
	}
	u.Watchlist = append(u.Watchlist, ref)
	return u.Account().Watchlist, nil
}

func (d *Directory) RemoveFromWatchlist(a policy.Actor, mediaID int64) ([]domain.MediaRef, error) {
	u, err := d.actorUser(a)
	if err != nil {
		return nil, err
	}
	kept := u.Watchlist[:0:0]
	for _, m := range u.Watchlist {
		if m.ID != mediaID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(u.Watchlist) {
		return nil, domain.NotFound("item %d is not in your watchlist", mediaID)
	}
	u.Watchlist = kept
	return u.Account().Watchlist, nil
}

// --- ratings ---

type RatingInput struct {
	MediaID    int64            `json:"mediaId"`
	MediaType  domain.MediaType `json:"mediaType"`
	MediaTitle string           `json:"mediaTitle"`
	Value      int              `json:"rating"`
}

// RateMedia 每个 (mediaId, mediaType) 只保留一条评分，重复评分原地更新
func (d *Directory) RateMedia(a policy.Actor, in RatingInput) (domain.Rating, error) {
	if err := policy.Check(a, policy.Create, policy.Own(policy.KindRating, a.ID)); err != nil {
		return domain.Rating{}, err
	}
	u, err := d.actorUser(a)
	if err != nil {
		return domain.Rating{}, err
	}
	if in.MediaID == 0 {
		return domain.Rating{}, domain.Validation("media id is required")
	}
	if _, err := domain.ParseMediaType(string(in.MediaType)); err != nil {
		return domain.Rating{}, err
	}
	if in.Value < domain.MinRating || in.Value > domain.MaxRating {
		return domain.Rating{}, domain.Validation("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	now := d.now()
	for i := range u.Ratings {
		r := &u.Ratings[i]
		if r.MediaID == in.MediaID && r.MediaType == in.MediaType {
			r.Value = in.Value
			if t := strings.TrimSpace(in.MediaTitle); t != "" {
				r.MediaTitle = t
			}
			r.UpdatedAt = &now
			return *r, nil
		}
	}
	r := domain.Rating{
		ID:         d.ids.Next(),
		MediaID:    in.MediaID,
		MediaType:  in.MediaType,
		MediaTitle: strings.TrimSpace(in.MediaTitle),
		Value:      in.Value,
		CreatedAt:  now,
	}
	u.Ratings = append(u.Ratings, r)
	return r, nil
}

func (d *Directory) RemoveRating(a policy.Actor, mediaID int64, t domain.MediaType) error {
	u, err := d.actorUser(a)
	if err != nil {
		return err
	}
	if err := policy.Check(a, policy.Delete, policy.Own(policy.KindRating, u.ID)); err != nil {
		return err
	}
	for i, r := range u.Ratings {
		if r.MediaID == mediaID && r.MediaType == t {
			u.Ratings = append(u.Ratings[:i], u.Ratings[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("no rating for %s %d", t, mediaID)
}

// AverageRating scans every user's ratings; absent media yields 0/0.
func (d *Directory) AverageRating(mediaID int64, t domain.MediaType) domain.RatingSummary {
	sum, n := 0, 0
	for _, u := range d.users {
		for _, r := range u.Ratings {
			if r.MediaID == mediaID && r.MediaType == t {
				sum += r.Value
				n++
			}
		}
	}
	if n == 0 {
		return domain.RatingSummary{}
	}
	return domain.RatingSummary{Average: float64(sum) / float64(n), Count: n}
}

// --- comments ---

func (d *Directory) AddComment(a policy.Actor, mediaID int64, t domain.MediaType, text string) (domain.Comment, error) {
	if err := policy.Check(a, policy.Create, policy.Own(policy.KindComment, a.ID)); err != nil {
		return domain.Comment{}, err
	}
	u, err := d.actorUser(a)
	if err != nil {
		return domain.Comment{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, domain.Validation("comment text is required")
	}
	if mediaID == 0 {
		return domain.Comment{}, domain.Validation("media id is required")
	}
	if _, err := domain.ParseMediaType(string(t)); err != nil {
		return domain.Comment{}, err
	}
	c := domain.Comment{
		ID:        d.ids.Next(),
		UserID:    u.ID,
		MediaID:   mediaID,
		MediaType: t,
		Text:      text,
		Username:  u.Username,
		CreatedAt: d.now(),
	}
	u.Comments = append(u.Comments, c)
	return c, nil
}

// findComment 在所有用户中查找评论，返回所属用户与下标
func (d *Directory) findComment(id int64) (*domain.User, int) {
	for _, u := range d.users {
		for i, c := range u.Comments {
			if c.ID == id {
				return u, i
			}
		}
	}
	return nil, -1
}

func (d *Directory) EditComment(a policy.Actor, id int64, text string) (domain.Comment, error) {
	if !a.Authenticated() {
		return domain.Comment{}, domain.NotAuthenticated()
	}
	owner, i := d.findComment(id)
	if owner == nil {
		return domain.Comment{}, domain.NotFound("comment %d not found", id)
	}
	c := &owner.Comments[i]
	if err := policy.Check(a, policy.Edit, policy.Comment(*c)); err != nil {
		return domain.Comment{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, domain.Validation("comment text is required")
	}
	now := d.now()
	c.Text = text
	c.EditedAt = &now
	return *c, nil
}

func (d *Directory) RemoveComment(a policy.Actor, id int64) error {
	if !a.Authenticated() {
		return domain.NotAuthenticated()
	}
	owner, i := d.findComment(id)
	if owner == nil {
		return domain.NotFound("comment %d not found", id)
	}
	if err := policy.Check(a, policy.Delete, policy.Comment(owner.Comments[i])); err != nil {
		return err
	}
	owner.Comments = append(owner.Comments[:i], owner.Comments[i+1:]...)
	return nil
}

// MediaComments aggregates comments on one title across the directory, newest first.
func (d *Directory) MediaComments(mediaID int64) []domain.Comment {
	out := []domain.Comment{}
	for _, u := range d.users {
		for _, c := range u.Comments {
			if c.MediaID == mediaID {
				out = append(out, c)
			}
		}
	}
	sortNewest(out)
	return out
}

// AllComments 管理员审核队列
func (d *Directory) AllComments(a policy.Actor) ([]domain.Comment, error) {
	if err := policy.Check(a, policy.Moderate, policy.Resource{Kind: policy.KindComment}); err != nil {
		return nil, err
	}
	out := []domain.Comment{}
	for _, u := range d.users {
		out = append(out, u.Comments...)
	}
	sortNewest(out)
	return out, nil
}

func sortNewest(cs []domain.Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].ID > cs[j].ID
		}
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}
