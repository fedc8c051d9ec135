package progression

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdTable_Previous(t *testing.T) {
	table := DefaultThresholds()

	tests := []struct {
		rank int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 250},
		{5, 1000},
		{9, 0}, // missing entry
	}
	for _, tt := range tests {
		if got := table.Previous(tt.rank); got != tt.want {
			t.Errorf("Previous(%d) = %d, want %d", tt.rank, got, tt.want)
		}
	}
}

func TestCompute_MidRank(t *testing.T) {
	// (150-100)/(250-100) = 1/3.
	state := UserState{Rank: 2, XP: 150, NextRank: NextRank{Threshold: At(250)}}
	p := Compute(state, ThresholdTable{1: 0, 2: 100})
	assert.InDelta(t, 1.0/3.0, p.Fraction, 1e-9)
	assert.Equal(t, 33, p.Percent())
	assert.Equal(t, "250", p.NextLabel)
	assert.False(t, p.OutOfRange)
}

func TestCompute_FirstRankStartsAtZero(t *testing.T) {
	state := UserState{Rank: 1, XP: 40, NextRank: NextRank{Threshold: At(100)}}
	p := Compute(state, ThresholdTable{})
	assert.InDelta(t, 0.4, p.Fraction, 1e-9)
}

func TestCompute_MaxRank(t *testing.T) {
	for _, xp := range []int{0, 999, 5000} {
		state := UserState{Rank: 5, XP: xp, NextRank: NextRank{Threshold: MaxThreshold()}}
		p := Compute(state, DefaultThresholds())
		if p.Fraction != 1 || !p.Max || p.NextLabel != "MAX" {
			t.Errorf("xp=%d: got %+v, want full MAX bar", xp, p)
		}
	}
}

func TestCompute_ClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		xp   int
		next int
		want float64
	}{
		{"above next", 400, 250, 1},
		{"below previous", 50, 250, 0},
		{"empty span", 100, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := UserState{Rank: 2, XP: tt.xp, NextRank: NextRank{Threshold: At(tt.next)}}
			p := Compute(state, DefaultThresholds())
			assert.Equal(t, tt.want, p.Fraction)
			assert.True(t, p.OutOfRange)
			assert.False(t, math.IsNaN(p.Raw))
		})
	}
}

func TestThreshold_JSON(t *testing.T) {
	var s UserState
	require.NoError(t, json.Unmarshal([]byte(`{"rank":5,"rank_name":"Security Master","xp":1200,"next_rank":{"name":"Maximum Rank Achieved","threshold":"N/A"}}`), &s))
	assert.True(t, s.NextRank.Threshold.Max)
	assert.Equal(t, "Security Master", s.RankName)

	require.NoError(t, json.Unmarshal([]byte(`{"rank":1,"xp":10,"next_rank":{"threshold":100}}`), &s))
	assert.Equal(t, At(100), s.NextRank.Threshold)

	var th Threshold
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &th))

	out, err := json.Marshal(MaxThreshold())
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(out))
}

func TestDiff(t *testing.T) {
	prev := UserState{XP: 90, Rank: 1}
	next := UserState{XP: 140, Rank: 2}
	ch := Diff(prev, next)
	assert.Equal(t, 50, ch.XPDelta)
	assert.True(t, ch.RankedUp)

	ch = Diff(next, next)
	assert.Zero(t, ch.XPDelta)
	assert.False(t, ch.RankedUp)
}

func TestCell_ReplaceNotifies(t *testing.T) {
	c := NewCell()
	_, ok := c.Load()
	assert.False(t, ok)

	var seen []Change
	c.Subscribe(func(ch Change) { seen = append(seen, ch) })

	c.Replace(UserState{ID: "u", XP: 0, Rank: 1})
	c.Replace(UserState{ID: "u", XP: 120, Rank: 2})

	got, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, 120, got.XP)
	require.Len(t, seen, 2)
	assert.True(t, seen[1].RankedUp)
	assert.Equal(t, 120, seen[1].XPDelta)
}
