package progression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// maxThresholdMarker is the wire value the server sends when there is no
// further rank to reach.
const maxThresholdMarker = "N/A"

// UserState is the server-authoritative snapshot of a learner's standing.
// It is always replaced as a whole, never patched field by field.
type UserState struct {
	ID           string   `json:"user_id"`
	XP           int      `json:"xp"`
	Rank         int      `json:"rank"`
	RankName     string   `json:"rank_name"`
	Interactions int      `json:"interactions"`
	NextRank     NextRank `json:"next_rank"`
}

// NextRank describes the rank after the current one.
type NextRank struct {
	Name      string    `json:"name,omitempty"`
	Threshold Threshold `json:"threshold"`
}

// Threshold is the XP required for the next rank. Max marks the top rank.
type Threshold struct {
	Value int
	Max   bool
}

// MaxThreshold returns the "no further rank" sentinel.
func MaxThreshold() Threshold {
	return Threshold{Max: true}
}

// At returns a threshold at the given XP value.
func At(xp int) Threshold {
	return Threshold{Value: xp}
}

func (t Threshold) String() string {
	if t.Max {
		return "MAX"
	}
	return strconv.Itoa(t.Value)
}

// MarshalJSON encodes the sentinel as "N/A" and everything else as a number.
func (t Threshold) MarshalJSON() ([]byte, error) {
	if t.Max {
		return json.Marshal(maxThresholdMarker)
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts an integer or the "N/A" marker.
func (t *Threshold) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = MaxThreshold()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == maxThresholdMarker {
			*t = MaxThreshold()
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("threshold: unexpected value %q", s)
		}
		*t = At(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	*t = At(n)
	return nil
}
