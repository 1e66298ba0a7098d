package threads

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chiarivoices/backend/internal/models"
)

// oid builds a deterministic ObjectID for test fixtures.
func oid(n int) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(fmt.Sprintf("%024x", n))
	if err != nil {
		panic(err)
	}
	return id
}

func comment(id int, parent *int, text string) models.Comment {
	c := models.Comment{ID: oid(id), Text: text}
	if parent != nil {
		p := oid(*parent)
		c.ParentID = &p
	}
	return c
}

func ptr(n int) *int { return &n }

func TestBuild_Empty(t *testing.T) {
	forest, orphans := Build(nil)
	assert.Empty(t, forest)
	assert.Zero(t, orphans)
}

func TestBuild_ConcreteScenario(t *testing.T) {
	// [{id:1,parent:nil},{id:2,parent:1},{id:3,parent:99}]
	// -> [{1, replies:[{2}]}, {3}]
	input := []models.Comment{
		comment(1, nil, "root"),
		comment(2, ptr(1), "reply"),
		comment(3, ptr(99), "orphan"),
	}

	forest, orphans := Build(input)
	require.Len(t, forest, 2)
	assert.Equal(t, 1, orphans)

	assert.Equal(t, oid(1), forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, oid(2), forest[0].Replies[0].ID)
	assert.Empty(t, forest[0].Replies[0].Replies)

	assert.Equal(t, oid(3), forest[1].ID)
	assert.Empty(t, forest[1].Replies)
}

func TestBuild_GroupingCompleteness(t *testing.T) {
	// Mixed shape: two roots, nested replies, one orphan, reply arriving
	// before its parent in input order.
	input := []models.Comment{
		comment(5, ptr(2), "reply before parent"),
		comment(1, nil, "root a"),
		comment(2, ptr(1), "reply"),
		comment(3, ptr(2), "nested reply"),
		comment(4, nil, "root b"),
		comment(6, ptr(42), "orphan"),
	}

	forest, orphans := Build(input)
	assert.Equal(t, len(input), Count(forest), "no comment dropped or duplicated")
	assert.Equal(t, 1, orphans)
}

func TestBuild_OrphanPromotion(t *testing.T) {
	input := []models.Comment{
		comment(1, nil, "root"),
		comment(2, ptr(77), "dangling parent"),
	}

	forest, orphans := Build(input)
	require.Len(t, forest, 2)
	assert.Equal(t, 1, orphans)
	assert.Equal(t, oid(2), forest[1].ID)
}

func TestBuild_SelfParentPromotedToRoot(t *testing.T) {
	input := []models.Comment{comment(1, ptr(1), "self loop")}

	forest, orphans := Build(input)
	require.Len(t, forest, 1)
	assert.Equal(t, 1, orphans)
	assert.Empty(t, forest[0].Replies)
}

func TestBuild_OrderPreservation(t *testing.T) {
	input := []models.Comment{
		comment(1, nil, "first root"),
		comment(2, nil, "second root"),
		comment(3, ptr(1), "first reply"),
		comment(4, ptr(1), "second reply"),
		comment(5, nil, "third root"),
	}

	forest, _ := Build(input)
	require.Len(t, forest, 3)
	assert.Equal(t, oid(1), forest[0].ID)
	assert.Equal(t, oid(2), forest[1].ID)
	assert.Equal(t, oid(5), forest[2].ID)

	require.Len(t, forest[0].Replies, 2)
	assert.Equal(t, oid(3), forest[0].Replies[0].ID)
	assert.Equal(t, oid(4), forest[0].Replies[1].ID)
}

func TestBuild_Idempotence(t *testing.T) {
	input := []models.Comment{
		comment(1, nil, "root"),
		comment(2, ptr(1), "reply"),
		comment(3, ptr(2), "nested"),
		comment(4, ptr(9), "orphan"),
	}

	first, firstOrphans := Build(input)
	second, secondOrphans := Build(input)

	assert.Equal(t, first, second, "two builds over the same input are structurally equal")
	assert.Equal(t, firstOrphans, secondOrphans)

	// The input itself must not be mutated by building.
	assert.Nil(t, input[0].ParentID)
	assert.Equal(t, oid(1), *input[1].ParentID)
}

func TestBuild_UnboundedDepth(t *testing.T) {
	const depth = 200
	input := make([]models.Comment, 0, depth)
	input = append(input, comment(1, nil, "root"))
	for i := 2; i <= depth; i++ {
		input = append(input, comment(i, ptr(i-1), "deep"))
	}

	forest, orphans := Build(input)
	require.Len(t, forest, 1)
	assert.Zero(t, orphans)
	assert.Equal(t, depth, Count(forest))

	maxDepth := 0
	Walk(forest, func(_ *Thread, d int) {
		if d > maxDepth {
			maxDepth = d
		}
	})
	assert.Equal(t, depth-1, maxDepth)
}

func TestWalk_ParentsBeforeReplies(t *testing.T) {
	input := []models.Comment{
		comment(1, nil, "root"),
		comment(2, ptr(1), "reply"),
		comment(3, nil, "second root"),
	}
	forest, _ := Build(input)

	var order []primitive.ObjectID
	Walk(forest, func(th *Thread, _ int) {
		order = append(order, th.ID)
	})
	assert.Equal(t, []primitive.ObjectID{oid(1), oid(2), oid(3)}, order)
}
