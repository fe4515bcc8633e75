package match

import (
	"testing"
	"time"

	"tradetide-backend/internal/models"
)

func user(id string, offered, wanted []string) *models.User {
	return &models.User{
		ID:            id,
		Username:      id,
		SkillsOffered: offered,
		SkillsWanted:  wanted,
	}
}

func TestIsMutualMatch(t *testing.T) {
	tests := []struct {
		name string
		a    *models.User
		b    *models.User
		want bool
	}{
		{
			name: "mutual trade",
			a:    user("alice", []string{"guitar"}, []string{"spanish"}),
			b:    user("bob", []string{"spanish"}, []string{"guitar"}),
			want: true,
		},
		{
			name: "one-directional only",
			a:    user("alice", []string{"guitar"}, []string{"spanish"}),
			b:    user("bob", []string{"spanish"}, []string{"piano"}),
			want: false,
		},
		{
			name: "no overlap",
			a:    user("alice", []string{"guitar"}, []string{"spanish"}),
			b:    user("bob", []string{"cooking"}, []string{"piano"}),
			want: false,
		},
		{
			name: "empty skill lists",
			a:    user("alice", nil, nil),
			b:    user("bob", []string{"spanish"}, []string{"guitar"}),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMutualMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("IsMutualMatch() = %v, want %v", got, tt.want)
			}
			// Matching is symmetric.
			if got := IsMutualMatch(tt.b, tt.a); got != tt.want {
				t.Errorf("IsMutualMatch() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuality(t *testing.T) {
	tests := []struct {
		name string
		a    *models.User
		b    *models.User
		want float64
	}{
		{
			name: "perfect overlap scores 100",
			a:    user("alice", []string{"guitar"}, []string{"spanish"}),
			b:    user("bob", []string{"spanish"}, []string{"guitar"}),
			want: 100,
		},
		{
			name: "no overlap scores 0",
			a:    user("alice", []string{"guitar"}, []string{"spanish"}),
			b:    user("bob", []string{"cooking"}, []string{"piano"}),
			want: 0,
		},
		{
			name: "partial overlap",
			a:    user("alice", []string{"guitar", "piano"}, []string{"spanish"}),
			b:    user("bob", []string{"spanish", "cooking"}, []string{"guitar"}),
			want: 50,
		},
		{
			name: "both empty scores 0 without dividing by zero",
			a:    user("alice", nil, nil),
			b:    user("bob", nil, nil),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quality(tt.a, tt.b); got != tt.want {
				t.Errorf("Quality() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMutualMatches(t *testing.T) {
	me := user("me", []string{"guitar"}, []string{"spanish"})
	good := user("good", []string{"spanish"}, []string{"guitar"})
	oneway := user("oneway", []string{"spanish"}, []string{"piano"})
	stranger := user("stranger", []string{"cooking"}, []string{"piano"})

	matches, others := MutualMatches(me, []*models.User{oneway, good, stranger})

	if len(matches) != 1 || matches[0].ID != "good" {
		t.Errorf("matches = %v, want [good]", ids(matches))
	}
	if len(others) != 2 || others[0].ID != "oneway" || others[1].ID != "stranger" {
		t.Errorf("others = %v, want [oneway stranger] in input order", ids(others))
	}
}

func TestSort(t *testing.T) {
	me := user("me", []string{"guitar"}, []string{"spanish"})

	newUser := func(id string, created time.Time) *models.User {
		u := user(id, nil, nil)
		u.CreatedAt = created
		return u
	}

	t.Run("rating descending", func(t *testing.T) {
		users := []*models.User{user("low", nil, nil), user("high", nil, nil)}
		ratings := map[string]float64{"low": 2.5, "high": 4.8}
		Sort(users, SortByRating, me, ratings)
		if users[0].ID != "high" {
			t.Errorf("Sort(rating) first = %s, want high", users[0].ID)
		}
	})

	t.Run("match quality descending", func(t *testing.T) {
		perfect := user("perfect", []string{"spanish"}, []string{"guitar"})
		none := user("none", []string{"cooking"}, []string{"piano"})
		users := []*models.User{none, perfect}
		Sort(users, SortByQuality, me, nil)
		if users[0].ID != "perfect" {
			t.Errorf("Sort(matchQuality) first = %s, want perfect", users[0].ID)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		old := newUser("old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		recent := newUser("recent", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		users := []*models.User{old, recent}
		Sort(users, SortByNewest, me, nil)
		if users[0].ID != "recent" {
			t.Errorf("Sort(newest) first = %s, want recent", users[0].ID)
		}
	})

	t.Run("alphabetical is case-insensitive", func(t *testing.T) {
		users := []*models.User{user("zed", nil, nil), user("Anna", nil, nil)}
		Sort(users, SortByName, me, nil)
		if users[0].Username != "Anna" {
			t.Errorf("Sort(alphabetical) first = %s, want Anna", users[0].Username)
		}
	})

	t.Run("unknown order leaves input untouched", func(t *testing.T) {
		users := []*models.User{user("b", nil, nil), user("a", nil, nil)}
		Sort(users, SortOrder("bogus"), me, nil)
		if users[0].ID != "b" {
			t.Errorf("Sort(bogus) reordered input")
		}
	})
}

func TestAggregateRatings(t *testing.T) {
	reviews := []*models.Review{
		{RevieweeID: "alice", Rating: 5},
		{RevieweeID: "alice", Rating: 4},
		{RevieweeID: "bob", Rating: 2},
	}

	got := AggregateRatings(reviews)

	if agg := got["alice"]; agg.Average != 4.5 || agg.Count != 2 {
		t.Errorf("alice aggregate = %+v, want {4.5 2}", agg)
	}
	if agg := got["bob"]; agg.Average != 2 || agg.Count != 1 {
		t.Errorf("bob aggregate = %+v, want {2 1}", agg)
	}
	if _, ok := got["carol"]; ok {
		t.Error("unexpected aggregate for user with no reviews")
	}
}

func ids(users []*models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
