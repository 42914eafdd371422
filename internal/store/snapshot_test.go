package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/podcast-studio/internal/types"
)

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	snap := &types.Snapshot{
		Status:     types.StatusDone,
		Title:      "A Title",
		Transcript: "Speaker 1: Hi.",
		Speakers:   2,
		Voices:     []string{"F", "M"},
		VoiceNames: []string{"Kore", "Puck"},
		Category:   types.CategoryGenerated,
		Truncated:  true,
	}
	require.NoError(t, s.Save("j1", snap))

	loaded, err := s.Load("j1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap.Status, loaded.Status)
	assert.Equal(t, snap.Title, loaded.Title)
	assert.Equal(t, snap.Transcript, loaded.Transcript)
	assert.Equal(t, snap.Speakers, loaded.Speakers)
	assert.Equal(t, snap.VoiceNames, loaded.VoiceNames)
	assert.True(t, loaded.Truncated)
}

func TestSnapshotLoadMissing(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	loaded, err := s.Load("absent")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSnapshotLoadRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
	}{
		{"missing required fields", `{"title": "only a title"}`},
		{"bad status", `{"status": "finished", "transcript": "x", "speakers": 1, "voice_names": []}`},
		{"bad speakers", `{"status": "done", "transcript": "x", "speakers": 0, "voice_names": []}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(tt.body), 0o644))
			_, err := s.Load("bad")
			assert.Error(t, err)
		})
	}
}

func TestSnapshotList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	ids, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	snap := &types.Snapshot{Status: types.StatusDone, Transcript: "x", Speakers: 1, VoiceNames: []string{"Kore"}}
	require.NoError(t, s.Save("j1", snap))
	require.NoError(t, s.Save("j2", snap))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	ids, err = s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"j1", "j2"}, ids)
}

func TestSnapshotDeleteIsIdempotent(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("j1", &types.Snapshot{
		Status: types.StatusDone, Transcript: "x", Speakers: 1, VoiceNames: []string{"Kore"},
	}))
	assert.NoError(t, s.Delete("j1"))
	assert.NoError(t, s.Delete("j1"))
}

func TestSnapshotPathRejectsTraversal(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load("../escape")
	assert.Error(t, err)
	assert.Error(t, s.Save("a/b", &types.Snapshot{}))
	assert.Error(t, s.Delete(""))
}
