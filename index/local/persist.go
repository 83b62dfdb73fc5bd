package local

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/talentrank/index"
)

const (
	recordPrefix = "vecrec:"
	manifestKey  = "vecmanifest"
)

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

// Persist writes the full in-memory state into the snapshot database,
// replacing any previous snapshot. The manifest carries a checksum over the
// serialized records so Restore can detect corruption.
func (l *Index) Persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return index.ErrIndexClosed
	}

	records := make([]*index.Record, 0, len(l.records))
	for _, record := range l.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Id < records[j].Id
	})

	manifest := &index.Manifest{
		Dimension: l.dim,
		Count:     len(records),
		Checksum:  snapshotChecksum(records),
	}

	err := l.db.Update(func(tx *badger.Txn) error {
		// Drop stale record keys from a previous snapshot.
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var stale [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for _, record := range records {
			if err := tx.Set(recordKey(record.Id), index.MarshalRecord(record)); err != nil {
				return err
			}
		}
		return tx.Set([]byte(manifestKey), index.MarshalManifest(manifest))
	})
	if err != nil {
		return err
	}

	l.logger.Info("snapshot persisted", "count", manifest.Count, "dimension", manifest.Dimension)
	return nil
}

// Restore loads the snapshot from the database and replaces the in-memory
// state. Returns index.ErrNoSnapshot when none has been persisted and
// index.ErrSnapshotCorrupt when verification fails; in both cases the
// in-memory state is left untouched.
func (l *Index) Restore(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return index.ErrIndexClosed
	}

	var (
		manifest *index.Manifest
		loaded   []*index.Record
	)

	err := l.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(manifestKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return index.ErrNoSnapshot
			}
			return err
		}
		if err := item.Value(func(val []byte) error {
			manifest, err = index.UnmarshalManifest(val)
			return err
		}); err != nil {
			return fmt.Errorf("%w: %w", index.ErrSnapshotCorrupt, err)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *index.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = index.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: %w", index.ErrSnapshotCorrupt, err)
			}
			loaded = append(loaded, record)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if manifest.Dimension != l.dim {
		return fmt.Errorf("%w: snapshot dimension %d, index dimension %d",
			index.ErrSnapshotCorrupt, manifest.Dimension, l.dim)
	}
	if manifest.Count != len(loaded) {
		return fmt.Errorf("%w: manifest count %d, found %d records",
			index.ErrSnapshotCorrupt, manifest.Count, len(loaded))
	}

	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Id < loaded[j].Id
	})
	if checksum := snapshotChecksum(loaded); checksum != manifest.Checksum {
		return fmt.Errorf("%w: checksum mismatch", index.ErrSnapshotCorrupt)
	}

	restored := make(map[string]*index.Record, len(loaded))
	for _, record := range loaded {
		restored[record.Id] = record
	}
	l.records = restored

	l.logger.Info("snapshot restored", "count", len(restored))
	return nil
}

// snapshotChecksum computes a BLAKE2b digest over serialized records.
// Callers must pass records sorted by ascending id.
func snapshotChecksum(records []*index.Record) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for _, record := range records {
		h.Write(index.MarshalRecord(record))
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
