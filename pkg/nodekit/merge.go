package nodekit

import (
	"fmt"
	"strings"
)

// MergeMode selects how input branches are combined
type MergeMode string

const (
	MergeAppend     MergeMode = "append"
	MergeByPosition MergeMode = "byPosition"
	MergeByKey      MergeMode = "byKey"
)

// JoinMode controls which unmatched rows a by-key merge keeps
type JoinMode string

const (
	JoinInner JoinMode = "inner"
	JoinLeft  JoinMode = "left"
	JoinOuter JoinMode = "outer"
)

// ParseMergeMode accepts the mode names used by the different Merge node versions
func ParseMergeMode(s string) MergeMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "byposition", "combinebyposition", "mergebyindex", "mergebyposition", "position":
		return MergeByPosition
	case "bykey", "combinebyfields", "mergebykey", "combine", "key":
		return MergeByKey
	default:
		return MergeAppend
	}
}

// ParseJoinMode accepts inner/left/outer and the n8n names for them
func ParseJoinMode(s string) JoinMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "enrichinput2", "leftjoin":
		return JoinLeft
	case "outer", "keepeverything", "fullouter", "outerjoin":
		return JoinOuter
	default:
		return JoinInner
	}
}

// MergeAppendItems concatenates all branches in order
func MergeAppendItems(branches ...[]Item) []Item {
	total := 0
	for _, b := range branches {
		total += len(b)
	}
	out := make([]Item, 0, total)
	for _, b := range branches {
		for _, it := range b {
			out = append(out, it.Clone())
		}
	}
	return out
}

// MergeByPositionItems zips branches index-wise up to the shortest branch.
// A key already set by an earlier branch is written as "input{N}_key",
// N being the 1-based branch number.
func MergeByPositionItems(branches ...[]Item) []Item {
	if len(branches) == 0 {
		return []Item{}
	}
	n := len(branches[0])
	for _, b := range branches[1:] {
		if len(b) < n {
			n = len(b)
		}
	}
	out := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		merged := map[string]any{}
		for bi, b := range branches {
			for k, v := range b[i].JSON {
				if _, taken := merged[k]; taken && bi > 0 {
					merged[fmt.Sprintf("input%d_%s", bi+1, k)] = cloneValue(v)
					continue
				}
				merged[k] = cloneValue(v)
			}
		}
		out = append(out, NewItem(merged))
	}
	return out
}

// MergeByKeyItems indexes the first branch by key and joins the second onto it.
//   - inner: only matched pairs, merged (right fields win on collision)
//   - left:  matched pairs plus unmatched rows of the second branch, unmerged
//   - outer: as left, plus unmatched rows of the first branch, unmerged
//
// Output order follows the second branch, then unmatched first-branch rows.
func MergeByKeyItems(left, right []Item, key string, join JoinMode) []Item {
	index := make(map[string][]int, len(left))
	for i, it := range left {
		v := GetPath(it.JSON, key)
		if v == nil {
			continue
		}
		k := stringify(v)
		index[k] = append(index[k], i)
	}

	matchedLeft := make([]bool, len(left))
	out := make([]Item, 0, len(right))
	for _, r := range right {
		v := GetPath(r.JSON, key)
		var hits []int
		if v != nil {
			hits = index[stringify(v)]
		}
		if len(hits) == 0 {
			if join == JoinLeft || join == JoinOuter {
				out = append(out, r.Clone())
			}
			continue
		}
		for _, li := range hits {
			matchedLeft[li] = true
			merged := cloneMap(left[li].JSON)
			for k, val := range r.JSON {
				merged[k] = cloneValue(val)
			}
			out = append(out, NewItem(merged))
		}
	}

	if join == JoinOuter {
		for i, it := range left {
			if !matchedLeft[i] {
				out = append(out, it.Clone())
			}
		}
	}
	return out
}
