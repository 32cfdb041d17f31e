package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissionComplete(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  MissionStatus
		wantErr string
	}{
		{name: "pending", status: MissionStatusPending, wantErr: "Cannot complete a pending mission"},
		{name: "cancelled", status: MissionStatusCancelled, wantErr: "Cannot complete a cancelled mission"},
		{name: "in progress", status: MissionStatusInProgress},
		{name: "already completed", status: MissionStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mission{Status: tt.status}
			err := m.Complete(now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Equal(t, tt.status, m.Status)
				assert.Nil(t, m.CompletedAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MissionStatusCompleted, m.Status)
			require.NotNil(t, m.CompletedAt)
			assert.Equal(t, now, *m.CompletedAt)
		})
	}
}

func TestMissionStart(t *testing.T) {
	now := time.Now()

	m := &Mission{Status: MissionStatusPending}
	require.NoError(t, m.Start(now))
	assert.Equal(t, MissionStatusInProgress, m.Status)

	done := &Mission{Status: MissionStatusCompleted}
	err := done.Start(now)
	var transition *TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "Cannot assign cats to a completed mission", err.Error())
	assert.Equal(t, MissionStatusCompleted, done.Status)

	assert.False(t, (&Mission{Status: MissionStatusCancelled}).CanAssign())
}

func TestInitialMissionStatus(t *testing.T) {
	assert.Equal(t, MissionStatusPending, InitialMissionStatus(0))
	assert.Equal(t, MissionStatusInProgress, InitialMissionStatus(2))
}

func TestMissionStatusValid(t *testing.T) {
	assert.True(t, MissionStatusCancelled.Valid())
	assert.False(t, MissionStatus("archived").Valid())
}

func TestTargetTransitions(t *testing.T) {
	now := time.Now()

	target := &Target{Status: TargetStatusPending}
	require.NoError(t, target.Activate(now))
	assert.Equal(t, TargetStatusActive, target.Status)

	target.Complete(now)
	assert.True(t, target.IsCompleted())
	require.NotNil(t, target.CompletedAt)
	first := *target.CompletedAt

	target.Complete(now.Add(time.Hour))
	assert.Equal(t, first, *target.CompletedAt)

	assert.Error(t, target.Activate(now))
	assert.Error(t, target.Edit("New", "FR", now))
}

func TestTargetEdit(t *testing.T) {
	target := &Target{Name: "Old", Country: "US", Status: TargetStatusActive}
	require.NoError(t, target.Edit("New", "FR", time.Now()))
	assert.Equal(t, "New", target.Name)
	assert.Equal(t, "FR", target.Country)
}

func TestAllCompleted(t *testing.T) {
	assert.False(t, AllCompleted(nil))
	assert.False(t, AllCompleted([]Target{{Status: TargetStatusCompleted}, {Status: TargetStatusActive}}))
	assert.True(t, AllCompleted([]Target{{Status: TargetStatusCompleted}, {Status: TargetStatusCompleted}}))
}

func TestCatJSONHidesSecrets(t *testing.T) {
	refresh := "refresh"
	cat := Cat{
		UUID:         uuid.New(),
		Name:         "Tom",
		Password:     "$2a$hash",
		RefreshToken: &refresh,
		Breed:        "Siamese",
	}

	data, err := json.Marshal(cat)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "$2a$hash")
	assert.NotContains(t, string(data), "refresh")
	assert.Contains(t, string(data), `"name":"Tom"`)

	assert.True(t, cat.HasRefreshToken("refresh"))
	assert.False(t, cat.HasRefreshToken(""))
}

func TestMissionDetailsJSON(t *testing.T) {
	catID := uuid.New()
	details := MissionDetails{
		Mission:  Mission{Name: "Operation X", Status: MissionStatusInProgress},
		Targets:  []Target{{Name: "T1", Country: "US", Status: TargetStatusPending}},
		CatUUIDs: []uuid.UUID{catID},
	}

	data, err := json.Marshal(details)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Operation X", decoded["name"])
	assert.Equal(t, "in_progress", decoded["status"])
	assert.Equal(t, []interface{}{catID.String()}, decoded["cat_uuids"])
	assert.Len(t, decoded["targets"], 1)
}

func TestNoteIsAuthor(t *testing.T) {
	author := uuid.New()
	note := Note{CatUUID: author}
	assert.True(t, note.IsAuthor(author))
	assert.False(t, note.IsAuthor(uuid.New()))
}
