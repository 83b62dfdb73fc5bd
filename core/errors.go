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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidCandidate indicates a CandidateProfile failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate profile")

	// ErrEmptyCandidateID indicates the candidate Id field is empty.
	ErrEmptyCandidateID = errors.New("candidate id cannot be empty")

	// ErrNegativeExperience indicates a negative years-of-experience value.
	ErrNegativeExperience = errors.New("experience years cannot be negative")

	// ErrInvalidEducationLevel indicates an EducationLevel outside the known range.
	ErrInvalidEducationLevel = errors.New("invalid education level")
)
