package services

import (
	"testing"

	"github.com/piczelnft/piczel-sub002/models"
	"github.com/stretchr/testify/require"
)

func TestResolveAncestorsOrderedChain(t *testing.T) {
	db := setupTestDB(t)

	root := createTestUser(t, db, "ROOT0001", nil)
	mid := createTestUser(t, db, "MID00001", root)
	leaf := createTestUser(t, db, "LEAF0001", mid)

	chain, err := ResolveAncestors(db, leaf, MaxSponsorLevels)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, 1, chain[0].Level)
	require.Equal(t, mid.ID, chain[0].Sponsor.ID)
	require.Equal(t, 2, chain[1].Level)
	require.Equal(t, root.ID, chain[1].Sponsor.ID)
}

func TestResolveAncestorsDepthCap(t *testing.T) {
	db := setupTestDB(t)

	// Fifteen generations; only the nearest ten should come back.
	current := createTestUser(t, db, "GEN00000", nil)
	for i := 1; i <= 15; i++ {
		current = createTestUser(t, db, memberIDForGen(i), current)
	}

	chain, err := ResolveAncestors(db, current, MaxSponsorLevels)
	require.NoError(t, err)
	require.Len(t, chain, MaxSponsorLevels)
	require.Equal(t, 1, chain[0].Level)
	require.Equal(t, 10, chain[len(chain)-1].Level)
}

func TestResolveAncestorsPartialChainIsNotAnError(t *testing.T) {
	db := setupTestDB(t)

	orphan := createTestUser(t, db, "ORPHAN01", nil)

	chain, err := ResolveAncestors(db, orphan, MaxSponsorLevels)
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestResolveAncestorsMissingSponsorStopsEarly(t *testing.T) {
	db := setupTestDB(t)

	ghost := createTestUser(t, db, "GHOST001", nil)
	child := createTestUser(t, db, "CHILD001", ghost)
	require.NoError(t, db.Delete(&models.User{}, "id = ?", ghost.ID).Error)

	chain, err := ResolveAncestors(db, child, MaxSponsorLevels)
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestResolveAncestorsSelfCycleIsCorruption(t *testing.T) {
	db := setupTestDB(t)

	a := createTestUser(t, db, "CYCLEAA1", nil)
	b := createTestUser(t, db, "CYCLEBB1", a)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", a.ID).Update("sponsor_id", b.ID).Error)

	var reloaded models.User
	require.NoError(t, db.Where("id = ?", a.ID).First(&reloaded).Error)

	chain, err := ResolveAncestors(db, &reloaded, MaxSponsorLevels)
	require.ErrorIs(t, err, ErrDataCorruption)
	require.LessOrEqual(t, len(chain), MaxSponsorLevels)
}

func TestResolveAncestorsUpstreamCycleIsBounded(t *testing.T) {
	db := setupTestDB(t)

	// b and c sponsor each other; the walk from leaf must terminate at the level cap.
	b := createTestUser(t, db, "LOOPBB01", nil)
	c := createTestUser(t, db, "LOOPCC01", b)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", b.ID).Update("sponsor_id", c.ID).Error)
	leaf := createTestUser(t, db, "LOOPLEAF", b)

	chain, err := ResolveAncestors(db, leaf, MaxSponsorLevels)
	require.NoError(t, err)
	require.Len(t, chain, MaxSponsorLevels)
}

func memberIDForGen(i int) string {
	return "GEN" + string(rune('A'+i)) + "0001"
}
