package domain

import (
	"strings"
	"time"
)

type ShareOrigin struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	ListID   int64  `json:"listId"`
}

// List is either owned by a user (UserID != 0) or official (UserID == 0, IsOfficial).
type List struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"userId,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CoverImage  string       `json:"coverImage,omitempty"`
	IsPublic    bool         `json:"isPublic"`
	Tags        []string     `json:"tags"`
	Items       []MediaRef   `json:"items"`
	IsOfficial  bool         `json:"isOfficial,omitempty"`
	SharedFrom  *ShareOrigin `json:"sharedFrom,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ListView 是对外展示用的列表：附带 owner 信息与实时计算的 isFeatured
type ListView struct {
	List
	OwnerUsername string `json:"ownerUsername,omitempty"`
	OwnerName     string `json:"ownerName,omitempty"`
	IsFeatured    bool   `json:"isFeatured"`
}

type ListInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CoverImage  string     `json:"coverImage"`
	IsPublic    bool       `json:"isPublic"`
	Tags        []string   `json:"tags"`
	Items       []MediaRef `json:"items"`
}

// ListPatch nil 字段表示不修改
type ListPatch struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	CoverImage  *string     `json:"coverImage"`
	IsPublic    *bool       `json:"isPublic"`
	Tags        *[]string   `json:"tags"`
	Items       *[]MediaRef `json:"items"`
}

func (l List) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return Validation("list name is required")
	}
	if l.IsOfficial != (l.UserID == 0) {
		return Validation("list %d must either have an owner or be official", l.ID)
	}
	return nil
}

// NewList builds a list owned by owner; owner 0 makes it official (and always public).
func NewList(in ListInput, id, owner int64, now time.Time) (List, error) {
	l := List{
		ID:          id,
		UserID:      owner,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CoverImage:  strings.TrimSpace(in.CoverImage),
		IsPublic:    in.IsPublic || owner == 0,
		Tags:        NormalizeTags(in.Tags),
		Items:       DedupItems(in.Items),
		IsOfficial:  owner == 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.Validate(); err != nil {
		return List{}, err
	}
	return l, nil
}

// Apply 先校验再修改，失败时列表保持原样
func (l *List) Apply(p ListPatch, now time.Time) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Validation("list name is required")
	}
	if p.Name != nil {
		l.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		l.Description = strings.TrimSpace(*p.Description)
	}
	if p.CoverImage != nil {
		l.CoverImage = strings.TrimSpace(*p.CoverImage)
	}
	if p.IsPublic != nil {
		l.IsPublic = *p.IsPublic || l.IsOfficial
	}
	if p.Tags != nil {
		l.Tags = NormalizeTags(*p.Tags)
	}
	if p.Items != nil {
		l.Items = DedupItems(*p.Items)
	}
	l.UpdatedAt = now
	return nil
}

func (l *List) HasItem(id int64, t MediaType) bool {
	for _, it := range l.Items {
		if it.SameItem(id, t) {
			return true
		}
	}
	return false
}

func (l *List) AddItem(ref MediaRef, now time.Time) error {
	if l.HasItem(ref.ID, ref.MediaType) {
		return DuplicateItem("item %d (%s) is already in the list", ref.ID, ref.MediaType)
	}
	l.Items = append(l.Items, ref)
	l.UpdatedAt = now
	return nil
}

// RemoveItem mediaType 为空时按 id 匹配任意类型
func (l *List) RemoveItem(id int64, t MediaType, now time.Time) error {
	kept := l.Items[:0:0]
	for _, it := range l.Items {
		if !it.SameItem(id, t) {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(l.Items) {
		return NotFound("item %d is not in the list", id)
	}
	l.Items = kept
	l.UpdatedAt = now
	return nil
}

func (l List) Clone() List {
	c := l
	c.Tags = cloneSlice(l.Tags)
	c.Items = cloneSlice(l.Items)
	if l.SharedFrom != nil {
		origin := *l.SharedFrom
		c.SharedFrom = &origin
	}
	return c
}

// Normalize repairs lists loaded from storage: trims tags and collapses duplicate items.
func (l *List) Normalize() {
	l.Tags = NormalizeTags(l.Tags)
	l.Items = DedupItems(l.Items)
}

func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func DedupItems(items []MediaRef) []MediaRef {
	type key struct {
		id int64
		t  MediaType
	}
	out := make([]MediaRef, 0, len(items))
	seen := make(map[key]struct{}, len(items))
	for _, it := range items {
		k := key{it.ID, it.MediaType}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
