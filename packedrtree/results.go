// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

// Result is a single index search hit. Offset locates the matching
// feature in the data section; RefIndex locates it within the
// Hilbert-sorted Ref list originally passed to New.
type Result struct {
	Offset   int64
	RefIndex int
}

// Results is a list of search hits. It implements sort.Interface,
// ordering ascending by Offset.
type Results []Result

func (rs Results) Len() int           { return len(rs) }
func (rs Results) Less(i, j int) bool { return rs[i].Offset < rs[j].Offset }
func (rs Results) Swap(i, j int)      { rs[i], rs[j] = rs[j], rs[i] }
