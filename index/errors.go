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


package index

import "errors"

var (
	// ErrEmptyRecordID indicates a record with an empty identifier.
	ErrEmptyRecordID = errors.New("record id cannot be empty")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrIndexClosed indicates the index has been closed.
	ErrIndexClosed = errors.New("index is closed")

	// ErrNoSnapshot indicates that no persisted snapshot exists to restore.
	ErrNoSnapshot = errors.New("no snapshot to restore")

	// ErrSnapshotCorrupt indicates a snapshot that failed checksum or
	// dimension verification on restore.
	ErrSnapshotCorrupt = errors.New("snapshot verification failed")

	// ErrBackendUnavailable indicates the remote backend rejected or failed
	// a call.
	ErrBackendUnavailable = errors.New("index backend unavailable")
)
