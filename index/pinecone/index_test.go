package pinecone

import (
	"testing"

	"github.com/poiesic/talentrank/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToVector(t *testing.T) {
	p := &Index{dim: 3}

	t.Run("builds a vector with copied values", func(t *testing.T) {
		record := &index.Record{
			Id:       "ada",
			Vector:   []float32{1, 2, 3},
			Metadata: map[string]string{"skills": "go"},
		}

		vec, err := p.toVector(record)
		require.NoError(t, err)
		assert.Equal(t, "ada", vec.Id)
		assert.Equal(t, []float32{1, 2, 3}, vec.Values)
		require.NotNil(t, vec.Metadata)

		// The caller's slice must stay independent of the request payload.
		record.Vector[0] = 99
		assert.Equal(t, []float32{1, 2, 3}, vec.Values)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		_, err := p.toVector(&index.Record{Vector: []float32{1, 2, 3}})
		assert.ErrorIs(t, err, index.ErrEmptyRecordID)

		_, err = p.toVector(nil)
		assert.ErrorIs(t, err, index.ErrEmptyRecordID)
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		_, err := p.toVector(&index.Record{Id: "ada", Vector: []float32{1}})
		assert.ErrorIs(t, err, index.ErrDimensionMismatch)
	})

	t.Run("no metadata yields nil payload", func(t *testing.T) {
		vec, err := p.toVector(&index.Record{Id: "ada", Vector: []float32{1, 2, 3}})
		require.NoError(t, err)
		assert.Nil(t, vec.Metadata)
	})
}
