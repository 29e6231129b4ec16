// Package bptree implements an in-memory B+ tree with ordered range scans.
package bptree

import (
	"cmp"
	"sort"
	"sync"
)

// DefaultOrder is the fallback branching factor if a user-supplied order is too small.
const DefaultOrder = 4

// BPlusTree maps ordered keys to values. Leaves are linked so Ascend can walk
// a key range without returning to the root. It is safe for concurrent use.
type BPlusTree[K cmp.Ordered, V any] struct {
	root   *node[K, V]
	order  int
	height int
	size   int
	mutex  sync.RWMutex
}

// node represents both internal and leaf nodes
type node[K cmp.Ordered, V any] struct {
	isLeaf   bool
	keys     []K
	children []*node[K, V] // used if !isLeaf
	values   []V           // used if isLeaf
	parent   *node[K, V]
	next     *node[K, V] // leaf-link pointer, for range scans
}

// NewBPlusTree creates a tree with the given order.
// If the specified order < 3, we fall back to DefaultOrder.
func NewBPlusTree[K cmp.Ordered, V any](order int) *BPlusTree[K, V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &BPlusTree[K, V]{
		root:   &node[K, V]{isLeaf: true},
		order:  order,
		height: 1,
	}
}

// Height returns the number of levels, counting the leaves
func (tree *BPlusTree[K, V]) Height() int {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()
	return tree.height
}

// Len returns the number of keys
func (tree *BPlusTree[K, V]) Len() int {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()
	return tree.size
}

// findChildIndex picks the child of an internal node that covers key
func findChildIndex[K cmp.Ordered](keys []K, key K) int {
	return sort.Search(len(keys), func(i int) bool { return key < keys[i] })
}

// findLeaf descends to the leaf that holds or would hold key
func (tree *BPlusTree[K, V]) findLeaf(key K) *node[K, V] {
	current := tree.root
	for !current.isLeaf {
		current = current.children[findChildIndex(current.keys, key)]
	}
	return current
}

// Search locates the value associated with key
func (tree *BPlusTree[K, V]) Search(key K) (V, bool) {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()

	leaf := tree.findLeaf(key)
	i, found := leafIndex(leaf, key)
	if !found {
		var zero V
		return zero, false
	}
	return leaf.values[i], true
}

// Insert adds key, replacing the value of an existing key
func (tree *BPlusTree[K, V]) Insert(key K, value V) {
	tree.mutex.Lock()
	defer tree.mutex.Unlock()

	leaf := tree.findLeaf(key)
	if !insertKeyValueInLeaf(leaf, key, value) {
		return
	}
	tree.size++

	if len(leaf.keys) > tree.order {
		tree.splitLeaf(leaf)
	}
}

// Delete removes key and reports whether it was present. Leaves are allowed
// to run underfull; separator keys stay valid because they only bound the
// ranges of their children.
func (tree *BPlusTree[K, V]) Delete(key K) bool {
	tree.mutex.Lock()
	defer tree.mutex.Unlock()

	leaf := tree.findLeaf(key)
	i, found := leafIndex(leaf, key)
	if !found {
		return false
	}
	leaf.keys = append(leaf.keys[:i], leaf.keys[i+1:]...)
	leaf.values = append(leaf.values[:i], leaf.values[i+1:]...)
	tree.size--

	if tree.size == 0 {
		tree.root = &node[K, V]{isLeaf: true}
		tree.height = 1
	}
	return true
}

// Ascend calls fn for every key >= from in ascending order until fn returns
// false. fn must not modify the tree.
func (tree *BPlusTree[K, V]) Ascend(from K, fn func(key K, value V) bool) {
	tree.mutex.RLock()
	defer tree.mutex.RUnlock()

	leaf := tree.findLeaf(from)
	i := sort.Search(len(leaf.keys), func(i int) bool { return leaf.keys[i] >= from })
	for leaf != nil {
		for ; i < len(leaf.keys); i++ {
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
		leaf = leaf.next
		i = 0
	}
}

func leafIndex[K cmp.Ordered, V any](leaf *node[K, V], key K) (int, bool) {
	i := sort.Search(len(leaf.keys), func(i int) bool { return leaf.keys[i] >= key })
	return i, i < len(leaf.keys) && leaf.keys[i] == key
}

// insertKeyValueInLeaf inserts in sorted order and reports whether the key
// is new
func insertKeyValueInLeaf[K cmp.Ordered, V any](leaf *node[K, V], key K, value V) bool {
	idx, found := leafIndex(leaf, key)
	if found {
		leaf.values[idx] = value
		return false
	}

	leaf.keys = append(leaf.keys, key)
	copy(leaf.keys[idx+1:], leaf.keys[idx:])
	leaf.keys[idx] = key

	leaf.values = append(leaf.values, value)
	copy(leaf.values[idx+1:], leaf.values[idx:])
	leaf.values[idx] = value
	return true
}

// splitLeaf handles splitting a leaf node that has overflowed
func (tree *BPlusTree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	newLeaf := &node[K, V]{
		isLeaf: true,
		keys:   append([]K{}, leaf.keys[mid:]...),
		values: append([]V{}, leaf.values[mid:]...),
		next:   leaf.next,
		parent: leaf.parent,
	}

	leaf.keys = leaf.keys[:mid:mid]
	leaf.values = leaf.values[:mid:mid]
	leaf.next = newLeaf

	tree.insertInParent(leaf, newLeaf.keys[0], newLeaf)
}

// insertInParent links right as the sibling after left, separated by key.
// A new root is grown when left has no parent.
func (tree *BPlusTree[K, V]) insertInParent(left *node[K, V], key K, right *node[K, V]) {
	parent := left.parent
	if parent == nil {
		newRoot := &node[K, V]{
			keys:     []K{key},
			children: []*node[K, V]{left, right},
		}
		left.parent = newRoot
		right.parent = newRoot
		tree.root = newRoot
		tree.height++
		return
	}

	idx := findChildIndex(parent.keys, key)

	parent.keys = append(parent.keys, key)
	copy(parent.keys[idx+1:], parent.keys[idx:])
	parent.keys[idx] = key

	parent.children = append(parent.children, right)
	copy(parent.children[idx+2:], parent.children[idx+1:])
	parent.children[idx+1] = right
	right.parent = parent

	if len(parent.keys) > tree.order {
		tree.splitInternalNode(parent)
	}
}

// splitInternalNode handles splitting an internal node that has overflowed.
// The middle key moves up instead of being copied.
func (tree *BPlusTree[K, V]) splitInternalNode(internal *node[K, V]) {
	mid := len(internal.keys) / 2
	splitKey := internal.keys[mid]

	newInternal := &node[K, V]{
		keys:     append([]K{}, internal.keys[mid+1:]...),
		children: append([]*node[K, V]{}, internal.children[mid+1:]...),
		parent:   internal.parent,
	}
	for _, child := range newInternal.children {
		child.parent = newInternal
	}

	internal.keys = internal.keys[:mid:mid]
	internal.children = internal.children[: mid+1 : mid+1]

	tree.insertInParent(internal, splitKey, newInternal)
}
