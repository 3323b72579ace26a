package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/domain"
)

func TestDirectConversationID(t *testing.T) {
	t.Run("PairSymmetry", func(t *testing.T) {
		assert.Equal(t, domain.DirectConversationID(7, 3), domain.DirectConversationID(3, 7))
		assert.Equal(t, "direct_3_7", domain.DirectConversationID(7, 3))
	})

	t.Run("NumericNotLexicographicOrder", func(t *testing.T) {
		// 9 < 10 numerically even though "10" < "9" as strings
		assert.Equal(t, "direct_9_10", domain.DirectConversationID(10, 9))
	})
}

func TestParseConversationID(t *testing.T) {
	t.Run("DirectRoundTrip", func(t *testing.T) {
		ref, err := domain.ParseConversationID("direct_3_7")
		require.NoError(t, err)
		assert.Equal(t, domain.ConversationDirect, ref.Kind)
		assert.Equal(t, int64(3), ref.UserA)
		assert.Equal(t, int64(7), ref.UserB)
		assert.Equal(t, "direct_3_7", ref.ID())
	})

	t.Run("DirectNormalizesOrder", func(t *testing.T) {
		ref, err := domain.ParseConversationID("direct_7_3")
		require.NoError(t, err)
		assert.Equal(t, int64(3), ref.UserA)
		assert.Equal(t, int64(7), ref.UserB)
	})

	t.Run("Group", func(t *testing.T) {
		ref, err := domain.ParseConversationID("42")
		require.NoError(t, err)
		assert.Equal(t, domain.ConversationGroup, ref.Kind)
		assert.Equal(t, int64(42), ref.GroupID)
		assert.Equal(t, "42", ref.ID())
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, id := range []string{"", "direct_", "direct_1", "direct_a_b", "direct_1_1", "0", "-3", "abc"} {
			_, err := domain.ParseConversationID(id)
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "id %q", id)
		}
	})
}

func TestConversationRefParticipants(t *testing.T) {
	ref, err := domain.ParseConversationID("direct_3_7")
	require.NoError(t, err)

	assert.True(t, ref.Includes(3))
	assert.True(t, ref.Includes(7))
	assert.False(t, ref.Includes(5))
	assert.Equal(t, int64(7), ref.Counterpart(3))
	assert.Equal(t, int64(3), ref.Counterpart(7))
}
