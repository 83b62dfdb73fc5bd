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

import "errors"

var (
	// ErrEmbedderRequired is returned when a scorer is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrScorerRequired is returned when a ranker is created without a scorer.
	ErrScorerRequired = errors.New("scorer is required")

	// ErrInvalidWeights is returned when a weight configuration fails validation.
	ErrInvalidWeights = errors.New("invalid weight configuration")

	// ErrRequirementsRequired is returned when scoring is attempted without a
	// requirement set.
	ErrRequirementsRequired = errors.New("requirement set is required")

	// ErrInvalidCeiling is returned for an experience ceiling below 1.0.
	ErrInvalidCeiling = errors.New("experience ceiling must be at least 1.0")
)
