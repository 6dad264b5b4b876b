package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/storyreel/storyreel-agent/internal/assets"
	"github.com/storyreel/storyreel-agent/internal/db"
	"github.com/storyreel/storyreel-agent/internal/sequence"
)

func testRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func TestLoadSequence_FreshDatabase(t *testing.T) {
	repo := testRepository(t)

	seq, err := repo.LoadSequence(context.Background())
	if err != nil {
		t.Fatalf("LoadSequence: %v", err)
	}
	if seq != nil {
		t.Errorf("fresh database should load nil, got %+v", seq)
	}
}

func TestSaveAndLoadSequence(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	seq := sequence.New("My Film")
	a := seq.Append()
	a.Description = "Opening shot"
	a.Dialogue = "Hello."
	a.Image = "data:image/png;base64,AAAA"
	a.ImageHistory = []string{"data:image/png;base64,OLD", "data:image/png;base64,AAAA"}
	a.AssignedAssetIDs = []string{"asset-1"}
	b := seq.Append()
	b.Duration = 2.5

	if err := repo.SaveSequence(ctx, seq); err != nil {
		t.Fatalf("SaveSequence: %v", err)
	}

	loaded, err := repo.LoadSequence(ctx)
	if err != nil {
		t.Fatalf("LoadSequence: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a sequence after save")
	}
	if loaded.Name != "My Film" || loaded.FPS != seq.FPS {
		t.Errorf("settings not round-tripped: %+v", loaded)
	}
	if len(loaded.Scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(loaded.Scenes))
	}
	if loaded.Scenes[0].ID != a.ID || loaded.Scenes[1].ID != b.ID {
		t.Errorf("scene order not preserved")
	}
	if loaded.ActiveID != seq.ActiveID {
		t.Errorf("active id = %q, want %q", loaded.ActiveID, seq.ActiveID)
	}
	got := loaded.Scenes[0]
	if got.Description != "Opening shot" || got.Dialogue != "Hello." {
		t.Errorf("scene fields not round-tripped: %+v", got)
	}
	if len(got.ImageHistory) != 2 || got.ImageHistory[0] != "data:image/png;base64,OLD" {
		t.Errorf("image history not round-tripped: %v", got.ImageHistory)
	}
	if len(got.AssignedAssetIDs) != 1 || got.AssignedAssetIDs[0] != "asset-1" {
		t.Errorf("asset ids not round-tripped: %v", got.AssignedAssetIDs)
	}
}

func TestSaveSequence_ReplacesDeletedScenes(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	seq := sequence.New("Film")
	a := seq.Append()
	seq.Append()
	if err := repo.SaveSequence(ctx, seq); err != nil {
		t.Fatalf("SaveSequence: %v", err)
	}

	seq.Remove(a.ID)
	if err := repo.SaveSequence(ctx, seq); err != nil {
		t.Fatalf("SaveSequence after remove: %v", err)
	}

	loaded, err := repo.LoadSequence(ctx)
	if err != nil {
		t.Fatalf("LoadSequence: %v", err)
	}
	if len(loaded.Scenes) != 1 {
		t.Errorf("deleted scene survived the save, got %d scenes", len(loaded.Scenes))
	}
}

func TestLoadSequence_DropsDanglingActiveID(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	seq := sequence.New("Film")
	seq.ActiveID = "no-such-scene"
	if err := repo.SaveSequence(ctx, seq); err != nil {
		t.Fatalf("SaveSequence: %v", err)
	}

	loaded, err := repo.LoadSequence(ctx)
	if err != nil {
		t.Fatalf("LoadSequence: %v", err)
	}
	if loaded.ActiveID != "" {
		t.Errorf("dangling active id should be cleared, got %q", loaded.ActiveID)
	}
}

func TestSaveAndLoadAssets(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	set := assets.NewSet()
	mira, _ := set.Add(assets.TypeCharacter, "Mira")
	mira.TriggerWord = "mira_v1"
	mira.Image = "data:image/png;base64,MIRA"
	set.Add(assets.TypeLocation, "Warehouse")

	if err := repo.SaveAssets(ctx, set); err != nil {
		t.Fatalf("SaveAssets: %v", err)
	}

	loaded, err := repo.LoadAssets(ctx)
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("got %d assets, want 2", loaded.Len())
	}
	all := loaded.All()
	if all[0].Name != "Mira" || all[1].Name != "Warehouse" {
		t.Errorf("asset order not preserved: %v, %v", all[0].Name, all[1].Name)
	}
	if all[0].TriggerWord != "mira_v1" || all[0].Image != "data:image/png;base64,MIRA" {
		t.Errorf("asset fields not round-tripped: %+v", all[0])
	}
}

func TestConfigRoundTrip(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	val, err := repo.GetConfig(ctx, "device_id")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if val != "" {
		t.Errorf("missing key should read as empty, got %q", val)
	}

	if err := repo.SetConfig(ctx, "device_id", "dev-123"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := repo.SetConfig(ctx, "device_id", "dev-456"); err != nil {
		t.Fatalf("SetConfig update: %v", err)
	}

	val, err = repo.GetConfig(ctx, "device_id")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if val != "dev-456" {
		t.Errorf("config value = %q, want dev-456", val)
	}
}
