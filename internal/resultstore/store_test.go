package resultstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecma/uqpost/internal/models"
)

func sampleResult(id string) *models.AnalysisResult {
	return &models.AnalysisResult{
		CampaignID: id,
		Parameters: []string{"decay_time_nu", "decay_time_mu"},
		QoIs:       []string{"E_mean", "Z_mean"},
		Moments: map[string]models.Moments{
			"E_mean": {Mean: 1.0 / 3, Std: 0.1234567890123, Variance: 0.1234567890123 * 0.1234567890123},
			"Z_mean": {Mean: -2.5e-9, Std: 7, Variance: 49},
		},
		Sobols: map[string][]models.SobolIndex{
			"E_mean": {
				{Subset: []int{0}, Value: 0.2},
				{Subset: []int{1}, Value: 0.7999999999999},
				{Subset: []int{0, 1}, Value: 1e-13},
			},
			"Z_mean": {
				{Subset: []int{0}, Value: 0},
				{Subset: []int{1}, Value: 1},
				{Subset: []int{0, 1}, Value: 0},
			},
		},
		NumSamples: 256,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "results"))
	want := sampleResult("ocean_2D_256run")

	require.NoError(t, s.Save(want.CampaignID, want))

	got, err := s.Load(want.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(filepath.Join(s.Dir(), "ocean_2D_256run"+Extension))
	require.NoError(t, err)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := New(t.TempDir())
	first := sampleResult("c1")
	second := sampleResult("c1")
	second.NumSamples = 9

	require.NoError(t, s.Save("c1", first))
	require.NoError(t, s.Save("c1", second))

	got, err := s.Load("c1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.NumSamples)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_LoadMissing(t *testing.T) {
	s := New(t.TempDir())
	got, err := s.Load("nope")
	require.ErrorIs(t, err, models.ErrResultNotFound)
	assert.Nil(t, got)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+Extension), []byte("not zstd"), 0644))

	_, err := New(dir).Load("bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrResultNotFound)
}

func TestStore_RejectsUnsafeIDs(t *testing.T) {
	s := New(t.TempDir())
	for _, id := range []string{"", ".", "..", "../escape", `a\b`, "a/b", ".hidden"} {
		t.Run(id, func(t *testing.T) {
			require.ErrorIs(t, s.Save(id, sampleResult(id)), models.ErrInvalidCampaign)
			_, err := s.Load(id)
			require.ErrorIs(t, err, models.ErrInvalidCampaign)
		})
	}
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	ids, err := New(filepath.Join(dir, "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []string{"level_2", "level_1", "level_3"} {
		require.NoError(t, s.Save(id, sampleResult(id)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	ids, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"level_1", "level_2", "level_3"}, ids)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	s := New(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i%3)
			assert.NoError(t, s.Save(id, sampleResult(id)))
		}(i)
	}
	wg.Wait()

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c1", "c2"}, ids)
}
