package strokes

// node is one stroke position in the trie.
type node struct {
	children map[string]*node
	leaf     bool
	// below counts entries terminating strictly under this node.
	below int
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Trie is a prefix tree over stroke sequences.
// It is not safe for concurrent writes; once built it is only read.
type Trie struct {
	root    *node
	entries int
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds seq as an entry. Inserting an existing entry again changes nothing.
func (t *Trie) Insert(seq Sequence) {
	if len(seq) == 0 {
		return
	}
	path := make([]*node, 0, len(seq)+1)
	n := t.root
	path = append(path, n)
	for _, s := range seq {
		child, ok := n.children[s]
		if !ok {
			child = newNode()
			n.children[s] = child
		}
		n = child
		path = append(path, n)
	}
	if n.leaf {
		return
	}
	n.leaf = true
	t.entries++
	for _, ancestor := range path[:len(path)-1] {
		ancestor.below++
	}
}

// find returns the node reached by walking seq, or nil.
func (t *Trie) find(seq Sequence) *node {
	n := t.root
	for _, s := range seq {
		child, ok := n.children[s]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// Contains reports whether seq is an entry.
func (t *Trie) Contains(seq Sequence) bool {
	if len(seq) == 0 {
		return false
	}
	n := t.find(seq)
	return n != nil && n.leaf
}

// CountExtensions returns how many entries have prefix as a strict prefix.
func (t *Trie) CountExtensions(prefix Sequence) int {
	n := t.find(prefix)
	if n == nil {
		return 0
	}
	return n.below
}

// SoleExtension follows prefix down the trie while each node has exactly one child,
// stopping at the first leaf or branch point, and returns the strokes walked including prefix.
// When CountExtensions(prefix) == 1 the result is the single longer entry.
func (t *Trie) SoleExtension(prefix Sequence) Sequence {
	out := prefix.Clone()
	n := t.find(prefix)
	if n == nil {
		return out
	}
	for len(n.children) == 1 {
		for s, child := range n.children {
			out = append(out, s)
			n = child
		}
		if n.leaf {
			break
		}
	}
	return out
}

// EntryPrefixes returns the lengths of the proper, non-empty prefixes of seq that are entries,
// shortest first.
func (t *Trie) EntryPrefixes(seq Sequence) []int {
	var lengths []int
	n := t.root
	for i := 0; i < len(seq)-1; i++ {
		child, ok := n.children[seq[i]]
		if !ok {
			break
		}
		n = child
		if n.leaf {
			lengths = append(lengths, i+1)
		}
	}
	return lengths
}

// Len returns the number of entries.
func (t *Trie) Len() int {
	return t.entries
}
