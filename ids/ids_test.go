package ids_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/ids"
)

func TestAuthorityIdRoundTrip(t *testing.T) {
	a := ids.NewAuthorityId()
	b, err := ids.AuthorityIdFromString(a.String())
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.Equal(t, 0, a.Compare(b))
}

func TestDistinctIdsAreUnequal(t *testing.T) {
	a := ids.NewContextId()
	b := ids.NewContextId()
	require.False(t, a.Equal(b))
}

func TestCompareIsTotalOrder(t *testing.T) {
	a := ids.NewSessionId()
	b := ids.NewSessionId()
	if a.Compare(b) < 0 {
		require.True(t, b.Compare(a) > 0)
	} else if a.Compare(b) > 0 {
		require.True(t, b.Compare(a) < 0)
	} else {
		require.True(t, a.Equal(b))
	}
}

func TestContextIdJSONRoundTrip(t *testing.T) {
	c := ids.NewContextId()
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var out ids.ContextId
	require.NoError(t, json.Unmarshal(raw, &out))
	require.True(t, c.Equal(out))
}

func TestMalformedJSONRejected(t *testing.T) {
	var out ids.ContextId
	err := json.Unmarshal([]byte(`"not-a-uuid"`), &out)
	require.Error(t, err)
}
