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

import "fmt"

// ValidateCandidateProfile validates a CandidateProfile according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - ExperienceYears must not be negative
//   - Education must be a known level
//
// NOT validated:
//   - Skills (an empty set is a valid profile)
//   - Narrative (may be empty)
func ValidateCandidateProfile(candidate *CandidateProfile) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyCandidateID)
	}

	if candidate.ExperienceYears < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrNegativeExperience)
	}

	if err := ValidateEducationLevel(candidate.Education); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	return nil
}

// ValidateEducationLevel validates that an EducationLevel has a known value.
func ValidateEducationLevel(level EducationLevel) error {
	if level < EducationNone || level > EducationDoctorate {
		return fmt.Errorf("%w: value %d", ErrInvalidEducationLevel, level)
	}
	return nil
}
