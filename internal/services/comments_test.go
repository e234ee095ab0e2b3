package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pennitter/pennitter-backend/internal/models"
)

func node(parent string) CommentNode {
	return CommentNode{ID: primitive.NewObjectID(), ParentCommentID: parent}
}

func TestDescendantIDsCollectsFullSubtree(t *testing.T) {
	// root
	//   a
	//     a1
	//       a1x
	//     a2
	//   b
	root := primitive.NewObjectID()
	a := node(root.Hex())
	a1 := node(a.ID.Hex())
	a1x := node(a1.ID.Hex())
	a2 := node(a.ID.Hex())
	b := node(root.Hex())
	nodes := []CommentNode{a, a1, a1x, a2, b}

	got := DescendantIDs(root.Hex(), nodes)
	assert.ElementsMatch(t, []primitive.ObjectID{a.ID, a1.ID, a1x.ID, a2.ID, b.ID}, got)

	// A mid-tree root only collects its own branch.
	got = DescendantIDs(a.ID.Hex(), nodes)
	assert.ElementsMatch(t, []primitive.ObjectID{a1.ID, a1x.ID, a2.ID}, got)

	// Leaves have no descendants.
	assert.Empty(t, DescendantIDs(a1x.ID.Hex(), nodes))
}

func TestDescendantIDsIgnoresOtherBranches(t *testing.T) {
	left := node(models.TopLevelParentID)
	leftChild := node(left.ID.Hex())
	right := node(models.TopLevelParentID)
	rightChild := node(right.ID.Hex())
	nodes := []CommentNode{left, leftChild, right, rightChild}

	got := DescendantIDs(left.ID.Hex(), nodes)
	assert.ElementsMatch(t, []primitive.ObjectID{leftChild.ID}, got)
}

func TestDescendantIDsOfTopLevelSentinel(t *testing.T) {
	top1 := node(models.TopLevelParentID)
	top2 := node(models.TopLevelParentID)
	reply := node(top1.ID.Hex())
	nodes := []CommentNode{top1, top2, reply}

	// Walking from the sentinel reaches every comment on the post.
	got := DescendantIDs(models.TopLevelParentID, nodes)
	assert.ElementsMatch(t, []primitive.ObjectID{top1.ID, top2.ID, reply.ID}, got)
}

func TestDescendantIDsUnknownRoot(t *testing.T) {
	nodes := []CommentNode{node(models.TopLevelParentID)}
	assert.Empty(t, DescendantIDs(primitive.NewObjectID().Hex(), nodes))
}

func TestDescendantIDsDeepChain(t *testing.T) {
	// A linear reply chain well past any plausible recursion limit.
	parent := models.TopLevelParentID
	nodes := make([]CommentNode, 0, 5000)
	for i := 0; i < 5000; i++ {
		n := node(parent)
		nodes = append(nodes, n)
		parent = n.ID.Hex()
	}

	got := DescendantIDs(nodes[0].ID.Hex(), nodes)
	assert.Len(t, got, 4999)
}
