package adaptive

import (
	"math/rand"
	"sort"
)

// Forest is a bagged ensemble of shallow CART regression trees. The size
// is deliberately small (50 trees, depth <= 10) so a fitted model stays
// cheap to persist and fast at inference.
type Forest struct {
	Trees    []RegressionTree `json:"trees"`
	MaxDepth int              `json:"max_depth"`
}

// ForestConfig controls ensemble fitting. Seed makes fitting
// reproducible for a given training set.
type ForestConfig struct {
	Estimators int
	MaxDepth   int
	Seed       int64
}

// DefaultForestConfig mirrors the deployed model sizing.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Estimators: 50, MaxDepth: 10, Seed: 42}
}

// RegressionTree is a binary tree flattened into a node slice. Index 0
// is the root; leaves carry the mean target of their training samples.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// FitForest trains the ensemble on scaled features X and targets y.
// Each tree is grown on a bootstrap resample of the training set.
func FitForest(X [][]float64, y []float64, cfg ForestConfig) *Forest {
	rng := rand.New(rand.NewSource(cfg.Seed))
	forest := &Forest{
		Trees:    make([]RegressionTree, cfg.Estimators),
		MaxDepth: cfg.MaxDepth,
	}

	n := len(X)
	for t := 0; t < cfg.Estimators; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		forest.Trees[t] = growTree(X, y, sample, cfg.MaxDepth)
	}
	return forest
}

// Predict averages the per-tree predictions for one feature vector.
func (f *Forest) Predict(x []float64) float64 {
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

// Score returns the coefficient of determination (R²) of the forest on
// the given set. A constant target scores 1 on a perfect fit, 0 otherwise.
func (f *Forest) Score(X [][]float64, y []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	ssRes, ssTot := 0.0, 0.0
	for i, x := range X {
		d := y[i] - f.Predict(x)
		ssRes += d * d
		m := y[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes < 1e-12 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func (t *RegressionTree) predict(x []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// ── Tree Growing ────────────────────────────────────────

type treeBuilder struct {
	X        [][]float64
	y        []float64
	maxDepth int
	nodes    []TreeNode
}

func growTree(X [][]float64, y []float64, idx []int, maxDepth int) RegressionTree {
	b := &treeBuilder{X: X, y: y, maxDepth: maxDepth}
	b.grow(idx, 0)
	return RegressionTree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	if depth >= b.maxDepth || len(idx) < 2 {
		return b.leaf(idx)
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return b.leaf(idx)
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Reserve the parent slot before growing children so child indexes
	// land after it.
	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{})
	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[nodeIdx] = TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      leftIdx,
		Right:     rightIdx,
	}
	return nodeIdx
}

func (b *treeBuilder) leaf(idx []int) int {
	sum := 0.0
	for _, i := range idx {
		sum += b.y[i]
	}
	value := 0.0
	if len(idx) > 0 {
		value = sum / float64(len(idx))
	}
	b.nodes = append(b.nodes, TreeNode{Leaf: true, Value: value})
	return len(b.nodes) - 1
}

// bestSplit exhaustively scans every feature for the threshold that
// minimizes the summed squared error of the two resulting partitions.
// Returns ok=false when no split separates the samples (all feature
// values identical, or the target is already constant).
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	bestSSE := sse(b.y, idx)
	if bestSSE == 0 {
		return 0, 0, false
	}

	bestFeature, bestThreshold := -1, 0.0
	width := len(b.X[idx[0]])

	order := make([]int, len(idx))
	for feature := 0; feature < width; feature++ {
		copy(order, idx)
		f := feature
		sort.Slice(order, func(a, c int) bool {
			return b.X[order[a]][f] < b.X[order[c]][f]
		})

		// Prefix sums over the sorted order let each candidate split be
		// evaluated in constant time: SSE = Σy² - (Σy)²/n per side.
		n := len(order)
		var leftSum, leftSq float64
		totalSum, totalSq := 0.0, 0.0
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		for split := 1; split < n; split++ {
			prev := order[split-1]
			leftSum += b.y[prev]
			leftSq += b.y[prev] * b.y[prev]

			vPrev := b.X[prev][feature]
			vCur := b.X[order[split]][feature]
			if vCur == vPrev {
				continue
			}

			nl := float64(split)
			nr := float64(n - split)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			total := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if total < bestSSE-1e-12 {
				bestSSE = total
				bestFeature = feature
				bestThreshold = (vPrev + vCur) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func sse(y []float64, idx []int) float64 {
	sum, sq := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sq - sum*sum/float64(len(idx))
}
