package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"nivesh-ai-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewJSONFileStore(dir)
	require.NoError(t, err)

	team := models.TeamInfo{
		Members:      []models.TeamMember{{Name: "Asha Nair", Role: "CEO", Experience: models.Synthetic()}},
		TotalMembers: 1,
	}
	require.NoError(t, store.Save(ctx, KindTeamInfo, "acme", team))

	var got models.TeamInfo
	require.NoError(t, store.Load(ctx, KindTeamInfo, "acme", &got))
	assert.Equal(t, team, got)

	_, err = os.Stat(filepath.Join(dir, "teamInfo.json"))
	assert.NoError(t, err)
}

func TestJSONFileStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, KindStartups, "acme", models.StartupMetadata{StartupName: "Acme", Sector: "SaaS"}))
	require.NoError(t, store.Save(ctx, KindStartups, "acme", models.StartupMetadata{StartupName: "Acme"}))

	var got models.StartupMetadata
	require.NoError(t, store.Load(ctx, KindStartups, "acme", &got))
	assert.Equal(t, "Acme", got.StartupName)
	assert.Empty(t, got.Sector)
}

func TestJSONFileStoreNotFound(t *testing.T) {
	store, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)

	var got models.TeamInfo
	err = store.Load(context.Background(), KindTeamInfo, "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := store.LoadAll(context.Background(), KindTeamInfo)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestJSONFileStoreKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, KindAnalysis, "a", models.AnalysisResult{Summary: "first"}))
	require.NoError(t, store.Save(ctx, KindAnalysis, "b", models.AnalysisResult{Summary: "second"}))

	all, err := store.LoadAll(ctx, KindAnalysis)
	require.NoError(t, err)
	require.Len(t, all, 2)

	var a models.AnalysisResult
	require.NoError(t, json.Unmarshal(all["a"], &a))
	assert.Equal(t, "first", a.Summary)
}

func TestJSONFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "claims.json"), []byte("{not json"), 0644))
	store, err := NewJSONFileStore(dir)
	require.NoError(t, err)

	_, err = store.LoadAll(context.Background(), KindClaims)
	assert.Error(t, err)
}

func TestJSONFileStoreConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, KindClaims, fmt.Sprintf("s%d", i), []models.Claim{}))
		}(i)
	}
	wg.Wait()

	all, err := store.LoadAll(ctx, KindClaims)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
