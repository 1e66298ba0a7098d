// Package threads turns the flat comment collection stored for a post into
// the reply forest the reader renders.
package threads

import (
	"github.com/chiarivoices/backend/internal/models"
)

// Thread is a comment together with its nested replies.
type Thread struct {
	models.Comment
	Replies []*Thread `json:"replies"`
}

// Build groups a flat list of comments into a forest of threads.
//
// The pass is a pure grouping, not a sort: the root list and every Replies
// list preserve the relative order of the input, so callers control display
// order by how they query the store (ascending created_at for conversation
// order). A comment whose parent cannot be resolved in the input — missing,
// belonging to another post, or pointing at itself — is promoted to a root
// thread rather than dropped. The second return value counts those orphans
// so callers can log the data-quality signal.
func Build(comments []models.Comment) ([]*Thread, int) {
	index := make(map[string]*Thread, len(comments))
	nodes := make([]*Thread, 0, len(comments))
	for i := range comments {
		node := &Thread{Comment: comments[i], Replies: []*Thread{}}
		nodes = append(nodes, node)
		index[comments[i].ID.Hex()] = node
	}

	roots := make([]*Thread, 0, len(comments))
	orphans := 0
	for _, node := range nodes {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[node.ParentID.Hex()]
		if !ok || parent == node {
			// Orphan promotion: keep the comment visible at root level.
			orphans++
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	return roots, orphans
}

// Count returns the total number of comments in a forest, replies included.
func Count(forest []*Thread) int {
	total := 0
	for _, t := range forest {
		total += 1 + Count(t.Replies)
	}
	return total
}

// Walk visits every thread in the forest depth-first, parents before replies,
// calling fn with the node and its depth. Rendering layers use the depth to
// cap visual indentation without capping the data model.
func Walk(forest []*Thread, fn func(t *Thread, depth int)) {
	var visit func(ts []*Thread, depth int)
	visit = func(ts []*Thread, depth int) {
		for _, t := range ts {
			fn(t, depth)
			visit(t.Replies, depth+1)
		}
	}
	visit(forest, 0)
}
