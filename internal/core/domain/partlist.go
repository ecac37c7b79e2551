package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Part-id lists (a plane's requirement list, a history entry's consumed
// parts) are stored as comma-separated decimal ids, e.g. "3,1,4".
// The decoder is total: it returns an error for malformed input and
// never panics, no matter what the database hands back.

func EncodePartIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func DecodePartIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int64{}, nil
	}

	tokens := strings.Split(s, ",")
	ids := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		id, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode part list %q: %w", s, err)
		}
		if id <= 0 {
			return nil, fmt.Errorf("decode part list %q: non-positive id %d", s, id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
