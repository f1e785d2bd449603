package tree

import (
	"math/rand"
	"strconv"

	"github.com/matzehuels/topdag/pkg/labels"
)

// Random generates a uniformly random ordered tree with the given number
// of edges (and edges+1 nodes), numbered in pre-order. The generator
// draws a random balanced-parenthesis word: a shuffled sequence of n
// opening and n+1 closing brackets has, by the cycle lemma, exactly one
// rotation whose first 2n symbols are well-nested, and those symbols are
// taken as the tree shape.
//
// The same *rand.Rand seed always produces the same tree.
func Random(rng *rand.Rand, edges int) *Tree {
	if edges <= 0 {
		return FromParents([]int{-1})
	}
	n := edges
	word := make([]int8, 2*n+1)
	for i := 0; i < n; i++ {
		word[i] = 1
	}
	for i := n; i < len(word); i++ {
		word[i] = -1
	}
	rng.Shuffle(len(word), func(i, j int) { word[i], word[j] = word[j], word[i] })

	// Rotate to just past the first position of the minimum prefix sum.
	sum, minSum, minPos := 0, 0, -1
	for i, w := range word {
		sum += int(w)
		if minPos < 0 || sum < minSum {
			minSum = sum
			minPos = i
		}
	}
	start := (minPos + 1) % len(word)

	parents := make([]int, 1, n+1)
	parents[0] = -1
	stack := []int{0}
	// The rotation ends with the surplus closing bracket; it is dropped.
	for i := 0; i < len(word)-1; i++ {
		switch word[(start+i)%len(word)] {
		case 1:
			id := len(parents)
			parents = append(parents, stack[len(stack)-1])
			stack = append(stack, id)
		case -1:
			stack = stack[:len(stack)-1]
		}
	}
	return FromParents(parents)
}

// RandomLabels assigns each of numNodes nodes a label drawn uniformly
// from an alphabet of numLabels names ("0", "1", ...).
func RandomLabels(rng *rand.Rand, numNodes, numLabels int) *labels.Labels {
	if numLabels < 1 {
		numLabels = 1
	}
	lab := labels.New()
	for i := 0; i < numNodes; i++ {
		lab.Add(strconv.Itoa(rng.Intn(numLabels)))
	}
	return lab
}
