// ABOUTME: Tests for nutrition goals and lifestyle log persistence
// ABOUTME: Verifies most-recent-first ordering used by the AI briefing

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NutritionGoal_SetAndReplace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	goal := &NutritionGoal{
		UserID:    user.ID,
		Calories:  2500,
		Protein:   180,
		Fat:       70,
		Carbs:     280,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SetNutritionGoal(ctx, goal))

	goal.Calories = 2200
	require.NoError(t, store.SetNutritionGoal(ctx, goal))

	retrieved, err := store.GetNutritionGoal(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2200, retrieved.Calories)
	assert.Equal(t, 180, retrieved.Protein)
}

func TestStore_NutritionGoal_NotFound(t *testing.T) {
	store := setupTestStore(t)
	user := makeUser(t, store, RoleUser)

	_, err := store.GetNutritionGoal(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_NutritionLogs_MostRecentFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"oatmeal", "chicken salad", "steak"} {
		log := &NutritionLog{
			ID:       uuid.New().String(),
			UserID:   user.ID,
			Name:     name,
			MealType: "lunch",
			Calories: 500,
			Protein:  40,
			EatenAt:  base.Add(time.Duration(i) * 24 * time.Hour),
		}
		require.NoError(t, store.CreateNutritionLog(ctx, log))
	}

	logs, err := store.ListNutritionLogs(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "steak", logs[0].Name)
	assert.Equal(t, "oatmeal", logs[2].Name)
}

func TestStore_ActivityLogs_MostRecentFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	base := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	for i, activity := range []string{"run", "swim"} {
		log := &ActivityLog{
			ID:              uuid.New().String(),
			UserID:          user.ID,
			ActivityType:    activity,
			Intensity:       "high",
			DurationMinutes: 45,
			CompletedAt:     base.Add(time.Duration(i) * 24 * time.Hour),
		}
		require.NoError(t, store.CreateActivityLog(ctx, log))
	}

	logs, err := store.ListActivityLogs(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "swim", logs[0].ActivityType)
}

func TestStore_SleepLogs_MostRecentFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	for i := 0; i < 2; i++ {
		start := time.Date(2026, 8, 1+i, 23, 0, 0, 0, time.UTC)
		log := &SleepLog{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			StartTime: start,
			EndTime:   start.Add(8 * time.Hour),
			Quality:   7 + i,
		}
		require.NoError(t, store.CreateSleepLog(ctx, log))
	}

	logs, err := store.ListSleepLogs(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 8, logs[0].Quality)
}

func TestStore_Logs_EmptyLists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	nutrition, err := store.ListNutritionLogs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, nutrition)

	activity, err := store.ListActivityLogs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, activity)

	sleep, err := store.ListSleepLogs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sleep)
}
