package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatsKeepsServerOrder(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{"Sad": 2, "Happy": 3, "Calm": 0}`), &s))
	require.Equal(t, []string{"Sad", "Happy", "Calm"}, s.Labels())
	require.Equal(t, 5, s.Total())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"Sad":2,"Happy":3,"Calm":0}`, string(out))
	require.Equal(t, `{"Sad":2,"Happy":3,"Calm":0}`, string(out))
}

func TestStatsDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{"Happy": 1, "Sad": 2, "Happy": 4}`), &s))
	require.Equal(t, Stats{{Label: "Happy", Votes: 4}, {Label: "Sad", Votes: 2}}, s)
}

func TestStatsAcceptsIntegralFloats(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{"Happy": 3.0}`), &s))
	require.Equal(t, 3, s.Map()["Happy"])
}

func TestStatsRejectsBadShapes(t *testing.T) {
	for _, raw := range []string{
		`[1,2]`,
		`{"Happy": "three"}`,
		`{"Happy": -1}`,
		`{"Happy": 1.5}`,
		`{"message": "Please log in"}`,
	} {
		var s Stats
		require.Error(t, json.Unmarshal([]byte(raw), &s), raw)
	}
}

func TestStatsNullAndEmpty(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	require.Nil(t, s)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &s))
	require.NotNil(t, s)
	require.Empty(t, s)

	var res VoteResult
	require.NoError(t, json.Unmarshal([]byte(`{"message":"ok"}`), &res))
	require.Nil(t, res.Stats)
}
