package service

import (
	"context"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/feature/policy"
)

func (s *Store) AddToWatchlist(ctx context.Context, ref domain.MediaRef) Result[[]domain.MediaRef] {
	return mutate(ctx, s, "add_to_watchlist", func(a policy.Actor) ([]domain.MediaRef, error) {
		return s.dir.AddToWatchlist(a, ref)
	})
}

func (s *Store) RemoveFromWatchlist(ctx context.Context, mediaID int64) Result[[]domain.MediaRef] {
	return mutate(ctx, s, "remove_from_watchlist", func(a policy.Actor) ([]domain.MediaRef, error) {
		return s.dir.RemoveFromWatchlist(a, mediaID)
	})
}

func (s *Store) RateMedia(ctx context.Context, in directory.RatingInput) Result[domain.Rating] {
	return mutate(ctx, s, "rate_media", func(a policy.Actor) (domain.Rating, error) {
		return s.dir.RateMedia(a, in)
	})
}

func (s *Store) RemoveRating(ctx context.Context, mediaID int64, t domain.MediaType) Result[None] {
	return mutate(ctx, s, "remove_rating", func(a policy.Actor) (None, error) {
		return None{}, s.dir.RemoveRating(a, mediaID, t)
	})
}

func (s *Store) AverageRating(mediaID int64, t domain.MediaType) Result[domain.RatingSummary] {
	return read(s, "average_rating", func(policy.Actor) (domain.RatingSummary, error) {
		return s.dir.AverageRating(mediaID, t), nil
	})
}

func (s *Store) AddComment(ctx context.Context, mediaID int64, t domain.MediaType, text string) Result[domain.Comment] {
	return mutate(ctx, s, "add_comment", func(a policy.Actor) (domain.Comment, error) {
		return s.dir.AddComment(a, mediaID, t, text)
	})
}

func (s *Store) EditComment(ctx context.Context, id int64, text string) Result[domain.Comment] {
	return mutate(ctx, s, "edit_comment", func(a policy.Actor) (domain.Comment, error) {
		return s.dir.EditComment(a, id, text)
	})
}

func (s *Store) RemoveComment(ctx context.Context, id int64) Result[None] {
	return mutate(ctx, s, "remove_comment", func(a policy.Actor) (None, error) {
		return None{}, s.dir.RemoveComment(a, id)
	})
}

func (s *Store) MediaComments(mediaID int64) Result[[]domain.Comment] {
	return read(s, "media_comments", func(policy.Actor) ([]domain.Comment, error) {
		return s.dir.MediaComments(mediaID), nil
	})
}

// AllComments 审核队列，仅管理员
func (s *Store) AllComments() Result[[]domain.Comment] {
	return read(s, "all_comments", func(a policy.Actor) ([]domain.Comment, error) {
		return s.dir.AllComments(a)
	})
}
