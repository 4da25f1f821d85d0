// ABOUTME: In-process HNSW index for approximate nearest-neighbor search over cosine distance
// ABOUTME: Approximates candidate selection only; callers rescore candidates with exact similarity
package index

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
)

// Default construction parameters, matching the production vector index
// configuration (graph degree 16, build candidate list 64).
const (
	DefaultM              = 16
	DefaultEfConstruction = 64
	DefaultEfSearch       = 64
)

// Options tune the recall/latency trade-off of the graph
type Options struct {
	M              int // max links per node above layer 0
	EfConstruction int // candidate list size during build
	EfSearch       int // candidate list size during queries
}

// DefaultOptions returns the standard construction parameters
func DefaultOptions() Options {
	return Options{
		M:              DefaultM,
		EfConstruction: DefaultEfConstruction,
		EfSearch:       DefaultEfSearch,
	}
}

// Candidate is one approximate neighbor with its cosine distance.
// The distance here guides graph traversal only; exact scores come from
// rescoring against stored vectors.
type Candidate struct {
	ID       string
	Distance float64
}

// node is one graph vertex; links[l] holds neighbor indices at layer l
type node struct {
	id      string
	vec     []float64
	norm    float64
	links   [][]int
	deleted bool
}

// Index is a hierarchical navigable small world graph over cosine distance.
// Safe for concurrent use; reads proceed in parallel.
type Index struct {
	mu       sync.RWMutex
	dim      int
	opts     Options
	levelMul float64
	nodes    []*node
	ids      map[string]int
	entry    int
	maxLevel int
	live     int
}

// New creates an empty index for vectors of the given dimension
func New(dim int, opts Options) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	if opts.M <= 0 {
		opts.M = DefaultM
	}
	if opts.EfConstruction < opts.M {
		opts.EfConstruction = DefaultEfConstruction
	}
	if opts.EfSearch <= 0 {
		opts.EfSearch = DefaultEfSearch
	}

	return &Index{
		dim:      dim,
		opts:     opts,
		levelMul: 1.0 / math.Log(float64(opts.M)),
		ids:      make(map[string]int),
		entry:    -1,
	}, nil
}

// Len returns the number of live (non-deleted) vectors
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.live
}

// Contains reports whether the given ID is indexed and live
func (ix *Index) Contains(id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	idx, ok := ix.ids[id]
	return ok && !ix.nodes[idx].deleted
}

// Add inserts a vector. The ID must not already be present.
func (ix *Index) Add(id string, vec []float64) error {
	if len(vec) != ix.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), ix.dim)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if idx, ok := ix.ids[id]; ok && !ix.nodes[idx].deleted {
		return fmt.Errorf("id already indexed: %s", id)
	}

	level := int(math.Floor(-math.Log(1.0-rand.Float64()) * ix.levelMul))

	n := &node{
		id:    id,
		vec:   vec,
		norm:  vectorNorm(vec),
		links: make([][]int, level+1),
	}
	idx := len(ix.nodes)
	ix.nodes = append(ix.nodes, n)
	ix.ids[id] = idx
	ix.live++

	// First vector becomes the entry point
	if ix.entry < 0 {
		ix.entry = idx
		ix.maxLevel = level
		return nil
	}

	ep := ix.entry

	// Greedy descent through layers above the new node's level
	for l := ix.maxLevel; l > level; l-- {
		ep = ix.greedyClosest(vec, n.norm, ep, l)
	}

	// Connect at each layer from min(level, maxLevel) down to 0
	top := level
	if top > ix.maxLevel {
		top = ix.maxLevel
	}
	for l := top; l >= 0; l-- {
		candidates := ix.searchLayer(vec, n.norm, []int{ep}, ix.opts.EfConstruction, l)

		m := ix.maxLinks(l)
		neighbors := candidates
		if len(neighbors) > m {
			neighbors = neighbors[:m]
		}

		for _, c := range neighbors {
			n.links[l] = append(n.links[l], c.idx)
			other := ix.nodes[c.idx]
			other.links[l] = append(other.links[l], idx)
			ix.pruneLinks(other, l)
		}

		if len(candidates) > 0 {
			ep = candidates[0].idx
		}
	}

	if level > ix.maxLevel {
		ix.maxLevel = level
		ix.entry = idx
	}
	return nil
}

// Remove tombstones a vector. The graph keeps routing through it, but it no
// longer appears in results.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	idx, ok := ix.ids[id]
	if !ok || ix.nodes[idx].deleted {
		return
	}
	ix.nodes[idx].deleted = true
	ix.live--
	delete(ix.ids, id)
}

// Search returns up to k approximate nearest neighbors of the query, ordered
// by ascending cosine distance with ID as a deterministic tiebreak
func (ix *Index) Search(query []float64, k int) ([]Candidate, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.entry < 0 || ix.live == 0 {
		return nil, nil
	}

	qnorm := vectorNorm(query)

	ep := ix.entry
	for l := ix.maxLevel; l > 0; l-- {
		ep = ix.greedyClosest(query, qnorm, ep, l)
	}

	ef := ix.opts.EfSearch
	if ef < k {
		ef = k
	}
	found := ix.searchLayer(query, qnorm, []int{ep}, ef, 0)

	results := make([]Candidate, 0, len(found))
	for _, c := range found {
		n := ix.nodes[c.idx]
		if n.deleted {
			continue
		}
		results = append(results, Candidate{ID: n.id, Distance: c.dist})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// maxLinks returns the link cap for a layer (doubled at layer 0)
func (ix *Index) maxLinks(layer int) int {
	if layer == 0 {
		return ix.opts.M * 2
	}
	return ix.opts.M
}

// greedyClosest walks one layer greedily toward the query
func (ix *Index) greedyClosest(query []float64, qnorm float64, start, layer int) int {
	current := start
	currentDist := ix.distance(query, qnorm, current)

	for {
		improved := false
		n := ix.nodes[current]
		if layer < len(n.links) {
			for _, neighbor := range n.links[layer] {
				d := ix.distance(query, qnorm, neighbor)
				if d < currentDist {
					current = neighbor
					currentDist = d
					improved = true
				}
			}
		}
		if !improved {
			return current
		}
	}
}

// scored pairs an internal node index with its query distance
type scored struct {
	idx  int
	dist float64
}

// searchLayer runs the beam search over one layer, returning up to ef
// closest nodes, ordered by ascending distance
func (ix *Index) searchLayer(query []float64, qnorm float64, entryPoints []int, ef, layer int) []scored {
	visited := make(map[int]bool, ef*4)

	candidates := &minHeap{}
	results := &maxHeap{}
	heap.Init(candidates)
	heap.Init(results)

	for _, ep := range entryPoints {
		if visited[ep] {
			continue
		}
		visited[ep] = true
		d := ix.distance(query, qnorm, ep)
		heap.Push(candidates, scored{ep, d})
		heap.Push(results, scored{ep, d})
	}

	for candidates.Len() > 0 {
		closest := heap.Pop(candidates).(scored)
		if results.Len() >= ef && closest.dist > (*results)[0].dist {
			break
		}

		n := ix.nodes[closest.idx]
		if layer >= len(n.links) {
			continue
		}
		for _, neighbor := range n.links[layer] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true

			d := ix.distance(query, qnorm, neighbor)
			if results.Len() < ef || d < (*results)[0].dist {
				heap.Push(candidates, scored{neighbor, d})
				heap.Push(results, scored{neighbor, d})
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]scored, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(scored)
	}
	return out
}

// pruneLinks caps a node's links at one layer to the closest maxLinks neighbors
func (ix *Index) pruneLinks(n *node, layer int) {
	m := ix.maxLinks(layer)
	if len(n.links[layer]) <= m {
		return
	}

	links := n.links[layer]
	sort.Slice(links, func(i, j int) bool {
		return ix.distanceBetween(n, ix.nodes[links[i]]) < ix.distanceBetween(n, ix.nodes[links[j]])
	})
	n.links[layer] = links[:m]
}

// distance computes cosine distance between the query and a stored node
func (ix *Index) distance(query []float64, qnorm float64, idx int) float64 {
	n := ix.nodes[idx]
	return cosineDistance(query, qnorm, n.vec, n.norm)
}

// distanceBetween computes cosine distance between two stored nodes
func (ix *Index) distanceBetween(a, b *node) float64 {
	return cosineDistance(a.vec, a.norm, b.vec, b.norm)
}

// cosineDistance is 1 - cosine similarity; zero-norm vectors are treated as
// maximally distant
func cosineDistance(a []float64, normA float64, b []float64, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 1.0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return 1.0 - dot/(normA*normB)
}

// vectorNorm computes the L2 norm
func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// minHeap pops the closest candidate first
type minHeap []scored

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].dist < h[j].dist }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(scored)) }

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// maxHeap pops the furthest result first, keeping the best ef results
type maxHeap []scored

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i].dist > h[j].dist }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(scored)) }

func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
