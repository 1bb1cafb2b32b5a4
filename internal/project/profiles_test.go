package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cellholder/internal/model"
)

func testProfiles() []model.GCodeProfile {
	return []model.GCodeProfile{
		{
			Name:          "ShopRouter",
			Description:   "Shop router with ER11 collet",
			Units:         "mm",
			StartCode:     []string{"G90", "G21"},
			SpindleStart:  "M3 S%d",
			SpindleStop:   "M5",
			AbsoluteMode:  "G90",
			FeedMode:      "G94",
			RapidMove:     "G0",
			FeedMove:      "G1",
			EndCode:       []string{"M5", "M2"},
			CommentPrefix: ";",
			DecimalPlaces: 3,
		},
		{
			Name:          "FiberLaser",
			Description:   "20 W fiber laser",
			IsBuiltIn:     true, // must be cleared on load
			Units:         "mm",
			StartCode:     []string{"G90", "G21"},
			SpindleStart:  "M4 S%d",
			SpindleStop:   "M5",
			AbsoluteMode:  "G90",
			FeedMode:      "G94",
			RapidMove:     "G0",
			FeedMove:      "G1",
			Laser:         true,
			EndCode:       []string{"M5", "M2"},
			CommentPrefix: "(",
			CommentSuffix: ")",
			DecimalPlaces: 4,
		},
	}
}

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	if err := SaveCustomProfiles(path, testProfiles()); err != nil {
		t.Fatalf("SaveCustomProfiles: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Name != "ShopRouter" || loaded[1].Name != "FiberLaser" {
		t.Errorf("unexpected names %q, %q", loaded[0].Name, loaded[1].Name)
	}
	if !loaded[1].Laser || loaded[1].CommentSuffix != ")" || loaded[1].DecimalPlaces != 4 {
		t.Errorf("laser profile fields lost: %+v", loaded[1])
	}
	for _, p := range loaded {
		if p.IsBuiltIn {
			t.Errorf("profile %s should not be marked as built-in", p.Name)
		}
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", profiles)
	}
}

func TestLoadCustomProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("[{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestRegisterCustomProfiles(t *testing.T) {
	saved := model.CustomProfiles
	t.Cleanup(func() { model.CustomProfiles = saved })
	model.CustomProfiles = nil

	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := SaveCustomProfiles(path, testProfiles()); err != nil {
		t.Fatal(err)
	}

	n, err := RegisterCustomProfiles(path)
	if err != nil {
		t.Fatalf("RegisterCustomProfiles: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 profiles registered, got %d", n)
	}
	if p := model.GetProfile("FiberLaser"); !p.Laser {
		t.Error("registered laser profile should be resolvable by name")
	}
}

func TestRegisterCustomProfiles_RejectsBuiltInName(t *testing.T) {
	saved := model.CustomProfiles
	t.Cleanup(func() { model.CustomProfiles = saved })
	model.CustomProfiles = nil

	clash := testProfiles()[:1]
	clash[0].Name = "Grbl"
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := SaveCustomProfiles(path, clash); err != nil {
		t.Fatal(err)
	}

	if _, err := RegisterCustomProfiles(path); err == nil {
		t.Fatal("expected error when a custom profile reuses a built-in name")
	}
}

func TestExportAndImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported.json")

	original := testProfiles()[1]
	if err := ExportProfile(path, original); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}

	imported, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if imported.Name != "FiberLaser" {
		t.Errorf("expected name FiberLaser, got %s", imported.Name)
	}
	if imported.IsBuiltIn {
		t.Error("imported profile should not be marked as built-in")
	}
	if len(imported.StartCode) != 2 {
		t.Errorf("expected 2 start codes, got %d", len(imported.StartCode))
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"description": "no name"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Fatal("expected error for profile without name")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "profiles.json")

	if err := SaveCustomProfiles(path, []model.GCodeProfile{}); err != nil {
		t.Fatalf("SaveCustomProfiles should create directories: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("file was not created in nested directory")
	}
}
