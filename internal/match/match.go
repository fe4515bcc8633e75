// Package match computes skill compatibility between marketplace users.
// All functions are pure and operate on already-fetched data. Skills are
// identified by name.
package match

import (
	"sort"
	"strings"

	"tradetide-backend/internal/models"
)

// IsMutualMatch reports whether a and b can trade: a offers something b
// wants AND b offers something a wants.
func IsMutualMatch(a, b *models.User) bool {
	return overlap(a.SkillsOffered, b.SkillsWanted) > 0 &&
		overlap(b.SkillsOffered, a.SkillsWanted) > 0
}

// Quality scores the compatibility of a and b in [0,100]: the number of
// mutual skill overlaps in both directions divided by the combined size of
// both offered-skill sets, scaled to a percentage.
func Quality(a, b *models.User) float64 {
	overlaps := overlap(a.SkillsOffered, b.SkillsWanted) +
		overlap(b.SkillsOffered, a.SkillsWanted)
	divisor := len(a.SkillsOffered) + len(b.SkillsOffered)
	if divisor < 1 {
		divisor = 1
	}
	return float64(overlaps) / float64(divisor) * 100
}

func overlap(offered, wanted []string) int {
	set := make(map[string]struct{}, len(wanted))
	for _, s := range wanted {
		set[s] = struct{}{}
	}
	count := 0
	for _, s := range offered {
		if _, ok := set[s]; ok {
			count++
		}
	}
	return count
}

// MutualMatches partitions candidates into mutual matches and the rest,
// preserving input order within each partition.
func MutualMatches(me *models.User, candidates []*models.User) (matches, others []*models.User) {
	for _, c := range candidates {
		if IsMutualMatch(me, c) {
			matches = append(matches, c)
		} else {
			others = append(others, c)
		}
	}
	return matches, others
}

// SortOrder selects a marketplace sort ordering.
type SortOrder string

const (
	SortByRating  SortOrder = "rating"
	SortByQuality SortOrder = "matchQuality"
	SortByNewest  SortOrder = "newest"
	SortByName    SortOrder = "alphabetical"
)

// Sort orders users in place. Rating sorting uses the ratings map (average
// rating per user id); quality sorting scores each user against me.
func Sort(users []*models.User, order SortOrder, me *models.User, ratings map[string]float64) {
	switch order {
	case SortByRating:
		sort.SliceStable(users, func(i, j int) bool {
			return ratings[users[i].ID] > ratings[users[j].ID]
		})
	case SortByQuality:
		sort.SliceStable(users, func(i, j int) bool {
			return Quality(me, users[i]) > Quality(me, users[j])
		})
	case SortByNewest:
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		})
	case SortByName:
		sort.SliceStable(users, func(i, j int) bool {
			return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
		})
	}
}

// RatingAggregate summarizes the reviews about one user.
type RatingAggregate struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AggregateRatings computes the per-reviewee average rating and review count.
func AggregateRatings(reviews []*models.Review) map[string]RatingAggregate {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range reviews {
		sums[r.RevieweeID] += r.Rating
		counts[r.RevieweeID]++
	}
	out := make(map[string]RatingAggregate, len(counts))
	for id, count := range counts {
		out[id] = RatingAggregate{
			Average: float64(sums[id]) / float64(count),
			Count:   count,
		}
	}
	return out
}
