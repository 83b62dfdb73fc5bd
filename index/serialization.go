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

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Manifest describes a persisted snapshot. It is written alongside the
// records and verified on restore.
type Manifest struct {
	Dimension int
	Count     int
	Checksum  uint64 // BLAKE2b digest over records in ascending id order
}

var (
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
)

// RecordMUS is the MUS serializer for Record.
var RecordMUS = recordSer{}

type recordSer struct{}

func (recordSer) Marshal(record Record, bs []byte) (n int) {
	n = ord.String.Marshal(record.Id, bs)
	n += vectorMUS.Marshal(record.Vector, bs[n:])
	n += metadataMUS.Marshal(record.Metadata, bs[n:])
	return
}

func (recordSer) Unmarshal(bs []byte) (record Record, n int, err error) {
	var n1 int
	record.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	record.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	record.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	// A record stored without metadata must come back without metadata, not
	// with an empty map, so persisted and live query results stay identical.
	if len(record.Metadata) == 0 {
		record.Metadata = nil
	}
	return
}

func (recordSer) Size(record Record) (size int) {
	size = ord.String.Size(record.Id)
	size += vectorMUS.Size(record.Vector)
	size += metadataMUS.Size(record.Metadata)
	return
}

// ManifestMUS is the MUS serializer for Manifest.
var ManifestMUS = manifestSer{}

type manifestSer struct{}

func (manifestSer) Marshal(manifest Manifest, bs []byte) (n int) {
	n = varint.Int.Marshal(manifest.Dimension, bs)
	n += varint.Int.Marshal(manifest.Count, bs[n:])
	n += raw.Uint64.Marshal(manifest.Checksum, bs[n:])
	return
}

func (manifestSer) Unmarshal(bs []byte) (manifest Manifest, n int, err error) {
	var n1 int
	manifest.Dimension, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	manifest.Count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	manifest.Checksum, n1, err = raw.Uint64.Unmarshal(bs[n:])
	n += n1
	return
}

func (manifestSer) Size(manifest Manifest) (size int) {
	size = varint.Int.Size(manifest.Dimension)
	size += varint.Int.Size(manifest.Count)
	size += raw.Uint64.Size(manifest.Checksum)
	return
}

// MarshalRecord serializes a Record to bytes.
func MarshalRecord(record *Record) []byte {
	buf := make([]byte, RecordMUS.Size(*record))
	RecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalRecord deserializes a Record from bytes.
func UnmarshalRecord(data []byte) (*Record, error) {
	record, _, err := RecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *Manifest) []byte {
	buf := make([]byte, ManifestMUS.Size(*manifest))
	ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	manifest, _, err := ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}
