package search

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawhub/internal/models"
)

func rooms() []models.CafeRoom {
	return []models.CafeRoom{
		{ID: 1, Name: "Cozy Room"},
		{ID: 2, Name: "Sunny Room"},
		{ID: 3, Name: "Cat Lounge"},
		{ID: 4, Name: "Puppy Den"},
		{ID: 5, Name: "CATNAP corner"},
		{ID: 6, Name: "Garden"},
	}
}

func TestFilter(t *testing.T) {
	t.Run("narrows case-insensitively", func(t *testing.T) {
		got := Filter(rooms(), "sunny", CafeRoomFields...)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("matches mixed case in source", func(t *testing.T) {
		got := Filter(rooms(), "cat", CafeRoomFields...)
		assert.Equal(t, []int64{3, 5}, ids(got))
	})

	t.Run("empty term returns the source", func(t *testing.T) {
		src := rooms()
		assert.Equal(t, src, Filter(src, "", CafeRoomFields...))
		assert.Equal(t, src, Filter(src, "   ", CafeRoomFields...))
	})

	t.Run("no match returns empty non-nil", func(t *testing.T) {
		got := Filter(rooms(), "hamster", CafeRoomFields...)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("does not mutate or alias the source", func(t *testing.T) {
		src := rooms()
		got := Filter(src, "", CafeRoomFields...)
		got[0].Name = "changed"
		assert.Equal(t, "Cozy Room", src[0].Name)
	})

	t.Run("folds beyond ASCII", func(t *testing.T) {
		src := []models.CafeRoom{{ID: 1, Name: "Élan Suite"}}
		assert.Len(t, Filter(src, "éLAN", CafeRoomFields...), 1)
	})
}

func TestFilterOrAcrossFields(t *testing.T) {
	doctors := []models.Doctor{
		{ID: 1, Name: "Dr. Ana", Specialty: "Surgery"},
		{ID: 2, Name: "Dr. Ben", Expertise: "Dermatology"},
		{ID: 3, Name: "Dr. Cara"},
	}

	assert.Equal(t, []int64{1}, doctorIDs(Filter(doctors, "surg", DoctorFields...)))
	assert.Equal(t, []int64{2}, doctorIDs(Filter(doctors, "derma", DoctorFields...)))
	assert.Equal(t, []int64{3}, doctorIDs(Filter(doctors, "cara", DoctorFields...)))
	// Missing optional fields never match on their own.
	assert.Empty(t, Filter(doctors, "zzz", DoctorFields...))
}

func TestFilterIsSubsequence(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	words := []string{"cat", "dog", "room", "sunny", "cozy", "den", "a", ""}

	for i := range 200 {
		n := r.IntN(12)
		src := make([]models.CafeRoom, n)
		for j := range src {
			src[j] = models.CafeRoom{ID: int64(j), Name: fmt.Sprintf("%s %s", words[r.IntN(len(words))], words[r.IntN(len(words))])}
		}
		term := words[r.IntN(len(words))]

		got := Filter(src, term, CafeRoomFields...)
		assert.True(t, isSubsequence(got, src), "case %d term %q", i, term)
		for _, item := range got {
			assert.True(t, Matches(term, item.Name))
		}
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("", "anything"))
	assert.True(t, Matches("ROOM", "", "Cozy Room"))
	assert.False(t, Matches("room"))
	assert.False(t, Matches("room", "", ""))
}

func isSubsequence(sub, src []models.CafeRoom) bool {
	i := 0
	for _, s := range src {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}

func ids(rs []models.CafeRoom) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func doctorIDs(ds []models.Doctor) []int64 {
	out := make([]int64, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}
