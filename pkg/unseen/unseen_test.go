package unseen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationBadge(t *testing.T) {
	all := []uint{1, 2, 3, 4, 5}

	assert.Equal(t, 3, Count(all, []uint{1, 2}))
	assert.Equal(t, []uint{3, 4, 5}, Unseen(all, []uint{1, 2}))

	assert.Equal(t, 0, Count(all, []uint{1, 2, 3, 4, 5}))
}

func TestCountIsSetDifference(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := r.Intn(40)
		all := make([]int, n)
		for j := range all {
			all[j] = j
		}
		var acked []int
		for _, id := range all {
			if r.Intn(2) == 0 {
				acked = append(acked, id)
			}
		}
		assert.Equal(t, len(all)-len(acked), Count(all, acked))
	}
}

func TestAckedOutsideAllIgnored(t *testing.T) {
	assert.Equal(t, []string{"a"}, Unseen([]string{"a", "b"}, []string{"b", "zzz"}))
	assert.Equal(t, []string{"a"}, Unseen([]string{"a", "a"}, nil))
	assert.Empty(t, Unseen[string](nil, []string{"b"}))
}
