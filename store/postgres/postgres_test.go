package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ragfusion"
)

func TestStore_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS vector")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err = store.InitSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Add(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	chunk := ragfusion.Chunk{
		ID:         "doc_chunk_0",
		DocumentID: "doc",
		Index:      0,
		Text:       "The ACA provides coverage.",
		Offset:     0,
		Length:     26,
		Metadata:   map[string]string{"category": "policy"},
	}
	vector := []float32{0.1, 0.2, 0.3}
	metadataJSON, _ := json.Marshal(chunk.Metadata)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chunks")).
		WithArgs(
			chunk.ID, chunk.DocumentID, chunk.Index, chunk.Text,
			chunk.Offset, chunk.Length, metadataJSON, pgvector.NewVector(vector),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Add(context.Background(), []ragfusion.Chunk{chunk}, [][]float32{vector})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Add_CountMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	err = store.Add(context.Background(), []ragfusion.Chunk{{ID: "a"}}, nil)
	var dimErr *ragfusion.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}

func TestStore_Add_DimensionMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	err = store.Add(context.Background(),
		[]ragfusion.Chunk{{ID: "a"}}, [][]float32{{0.1, 0.2}})
	var dimErr *ragfusion.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Want)
	assert.Equal(t, 2, dimErr.Got)
}

func TestStore_QueryVector(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	vector := []float32{0.1, 0.2, 0.3}
	filters := map[string]string{"category": "policy"}
	filtersJSON, _ := json.Marshal(filters)
	metadataJSON, _ := json.Marshal(map[string]string{"category": "policy"})

	rows := pgxmock.NewRows([]string{
		"id", "document_id", "chunk_index", "content",
		"start_offset", "length", "metadata", "distance",
	}).
		AddRow("doc_chunk_0", "doc", 0, "The ACA provides coverage.", 0, 26, metadataJSON, 0.25).
		AddRow("doc_chunk_1", "doc", 1, "Medicare covers ages 65+.", 27, 25, metadataJSON, 1.0)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, document_id, chunk_index, content, start_offset, length, metadata,")).
		WithArgs(pgvector.NewVector(vector), filtersJSON, 2).
		WillReturnRows(rows)

	results, err := store.QueryVector(context.Background(), vector, filters, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "doc_chunk_0", results[0].Chunk.ID)
	assert.InDelta(t, 0.8, results[0].Score, 1e-9)
	assert.Equal(t, "doc_chunk_1", results[1].Chunk.ID)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
	assert.Equal(t, "policy", results[0].Chunk.Metadata["category"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryVector_InvalidK(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	_, err = store.QueryVector(context.Background(), []float32{0.1, 0.2, 0.3}, nil, 0)
	var argErr *ragfusion.InvalidArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestStore_QueryVector_DimensionMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	_, err = store.QueryVector(context.Background(), []float32{0.1}, nil, 5)
	var dimErr *ragfusion.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}

func TestStore_QueryVector_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewWithPool(mock, "chunks", 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, document_id")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	_, err = store.QueryVector(context.Background(), []float32{0.1, 0.2, 0.3}, nil, 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNew_InvalidDimension(t *testing.T) {
	_, err := New(context.Background(), Options{ConnString: "postgres://localhost", Dimension: 0})
	var cfgErr *ragfusion.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
