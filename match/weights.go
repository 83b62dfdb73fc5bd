// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import (
	"fmt"
	"math"
)

// weightSumTolerance absorbs float rounding when checking the sum constraint.
const weightSumTolerance = 1e-6

// Weights holds the blending weight for each scoring signal. All four must be
// non-negative and sum to 1.0; invalid configurations fail at scorer
// construction rather than being renormalized silently.
type Weights struct {
	Skill      float64
	Experience float64
	Education  float64
	Semantic   float64
}

// DefaultWeights returns the standard signal weighting.
func DefaultWeights() Weights {
	return Weights{
		Skill:      0.35,
		Experience: 0.25,
		Education:  0.15,
		Semantic:   0.25,
	}
}

// Validate checks non-negativity and the sum-to-one constraint.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Experience < 0 || w.Education < 0 || w.Semantic < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidWeights)
	}
	sum := w.Skill + w.Experience + w.Education + w.Semantic
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %g", ErrInvalidWeights, sum)
	}
	return nil
}
