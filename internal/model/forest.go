// Package model evaluates a random-forest regressor exported from
// scikit-learn. Each tree is stored as the parallel node arrays of its
// tree_ attribute; a leaf has children_left == children_right == -1.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const leaf = -1

// Tree is one regression tree in sklearn's array layout.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Forest averages the predictions of its trees.
type Forest struct {
	FeatureNames []string `json:"feature_names"`
	NFeatures    int      `json:"n_features"`
	Trees        []Tree   `json:"trees"`
}

// Load reads and validates a forest from a JSON file.
func Load(path string) (*Forest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a forest.
func Parse(raw []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if f.NFeatures == 0 {
		f.NFeatures = len(f.FeatureNames)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Forest) validate() error {
	if f.NFeatures <= 0 {
		return errors.New("model has no features")
	}
	if len(f.FeatureNames) > 0 && len(f.FeatureNames) != f.NFeatures {
		return fmt.Errorf("model lists %d feature names for %d features", len(f.FeatureNames), f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf && r == leaf {
			continue
		}
		// Children always follow their parent, so walking can never loop.
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children %d, %d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Predict returns the mean of all tree outputs for x.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != f.NFeatures {
		return 0, fmt.Errorf("got %d features, model expects %d", len(x), f.NFeatures)
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}
