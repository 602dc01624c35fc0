package plagiarism

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/RishiKendai/pairwise/internal/storage"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	records []*models.Alignment
	failOn  error
}

func (s *memoryStore) InsertAlignment(_ context.Context, a *models.Alignment) error {
	if s.failOn != nil {
		return s.failOn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, a)
	return nil
}

func (s *memoryStore) ListRecentAlignmentIDs(_ context.Context, userID string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for i := len(s.records) - 1; i >= 0 && len(ids) < n; i-- {
		if s.records[i].UserID == userID {
			ids = append(ids, s.records[i].ID)
		}
	}
	return ids, nil
}

func newTestRecorder(t *testing.T, store *memoryStore, retention int) (*Recorder, *storage.UploadStore) {
	t.Helper()
	svc := newTestService(t, alignment.DefaultConfig(), nil)
	uploads, err := storage.NewUploadStore(t.TempDir())
	require.NoError(t, err)
	return NewRecorder(svc, store, uploads, nil, retention, time.Minute), uploads
}

func request(id string) *models.AlignmentRequest {
	return &models.AlignmentRequest{
		AlignmentID:  id,
		UserID:       "user-1",
		File1Name:    "a.py",
		File1Content: "def foo():\n    return 1\n",
		File2Name:    "b.py",
		File2Content: "def bar():\n    return 1\n",
	}
}

func TestRecordStoresHistory(t *testing.T) {
	store := &memoryStore{}
	rec, uploads := newTestRecorder(t, store, 5)

	record, err := rec.Record(context.Background(), request("a1"))
	require.NoError(t, err)

	assert.Equal(t, "a1", record.ID)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, tokenRow("def", "foo", "(", ")", ":", "return", "1"), record.AlignedFirst)
	assert.Equal(t, tokenRow("def", "bar", "(", ")", ":", "return", "1"), record.AlignedSecond)
	assert.Equal(t, "substitute", record.Operations[1])
	assert.InDelta(t, 6.0/7.0, record.Similarity, 1e-9)
	assert.Equal(t, RiskNearCopy, record.Risk)
	assert.Equal(t, 7, record.FirstTokens)
	assert.False(t, record.CreatedAt.IsZero())
	require.Len(t, store.records, 1)

	content, err := os.ReadFile(filepath.Join(uploads.Root(), "user-1", "a1", storage.StoredName(1, "b.py")))
	require.NoError(t, err)
	assert.Contains(t, string(content), "def bar")
}

func tokenRow(values ...string) []models.AlignedToken {
	row := make([]models.AlignedToken, len(values))
	for i, v := range values {
		row[i] = models.AlignedToken{Value: v}
	}
	return row
}

func TestAlignmentRecordKeepsGapsApartFromMinus(t *testing.T) {
	aligner, err := alignment.New(alignment.DefaultConfig())
	require.NoError(t, err)
	res, err := aligner.Align(
		tokenizer.FromValues("x", "=", "a", "-", "b"),
		tokenizer.FromValues("x", "=", "a", "b"),
	)
	require.NoError(t, err)

	record := NewAlignmentRecord(request("a1"), &Comparison{Result: res})
	assert.Equal(t, tokenRow("x", "=", "a", "-", "b"), record.AlignedFirst)
	assert.Equal(t, []models.AlignedToken{{Value: "x"}, {Value: "="}, {Value: "a"}, {Gap: true}, {Value: "b"}}, record.AlignedSecond)
	assert.Equal(t, "gap_second", record.Operations[3])
}

func TestRecordGeneratesID(t *testing.T) {
	store := &memoryStore{}
	rec, _ := newTestRecorder(t, store, 5)

	req := request("")
	record, err := rec.Record(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, record.ID, 36)
	assert.Equal(t, record.ID, req.AlignmentID)
}

func TestRecordKeepsOnlyRecentUploads(t *testing.T) {
	store := &memoryStore{}
	rec, uploads := newTestRecorder(t, store, 2)

	for _, id := range []string{"a1", "a2", "a3"} {
		_, err := rec.Record(context.Background(), request(id))
		require.NoError(t, err)
	}

	assert.Len(t, store.records, 3, "history is never pruned")

	_, err := os.Stat(filepath.Join(uploads.Root(), "user-1", "a1"))
	assert.True(t, os.IsNotExist(err))
	for _, id := range []string{"a2", "a3"} {
		_, err := os.Stat(filepath.Join(uploads.Root(), "user-1", id))
		assert.NoError(t, err, id)
	}
}

func TestRecordPropagatesInputErrors(t *testing.T) {
	store := &memoryStore{}
	rec, _ := newTestRecorder(t, store, 5)

	req := request("a1")
	req.File2Content = "x = \xff"

	_, err := rec.Record(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.Empty(t, store.records)
}

func TestRecordStoreFailure(t *testing.T) {
	store := &memoryStore{failOn: errors.New("mongo down")}
	rec, _ := newTestRecorder(t, store, 5)

	_, err := rec.Record(context.Background(), request("a1"))
	require.Error(t, err)
	assert.False(t, IsInputError(err))
}

func TestProcessWithoutStatusTracking(t *testing.T) {
	store := &memoryStore{}
	rec, _ := newTestRecorder(t, store, 5)

	require.NoError(t, rec.Process(context.Background(), request("a1")))
	assert.Len(t, store.records, 1)
}
