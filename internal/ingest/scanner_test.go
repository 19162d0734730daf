package ingest_test

import (
	"context"
	"path/filepath"
	"testing"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/ingest"
	"shoebox/internal/testsupport"
)

func TestScanCatalogsMediaRecursively(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "IMG_0001.jpg"), 64)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "dcim", "MOV_0001.MP4"), 64)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "dcim", "notes.txt"), 64)

	scanner := ingest.NewScanner(cfg, store, nil)
	result, err := scanner.Scan(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Discovered != 2 {
		t.Fatalf("discovered = %d, want 2", result.Discovered)
	}
	if result.Ignored != 1 {
		t.Fatalf("ignored = %d, want 1", result.Ignored)
	}

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("cataloged %d items, want 2", len(items))
	}
	kinds := map[catalog.Kind]int{}
	for _, item := range items {
		kinds[item.Kind]++
		if item.RunID != "run-1" {
			t.Fatalf("run id = %q, want run-1", item.RunID)
		}
	}
	if kinds[catalog.KindPhoto] != 1 || kinds[catalog.KindVideo] != 1 {
		t.Fatalf("unexpected kind split: %v", kinds)
	}
}

func TestScanSecondPassCountsKnown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "IMG_0001.jpg"), 64)

	scanner := ingest.NewScanner(cfg, store, nil)
	if _, err := scanner.Scan(context.Background(), "run-1"); err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}
	result, err := scanner.Scan(context.Background(), "run-2")
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if result.Discovered != 0 || result.Known != 1 {
		t.Fatalf("unexpected rescan result: %#v", result)
	}
}

func TestScanHonorsPhotoOnlyMode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModePhoto))
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "IMG_0001.jpg"), 64)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "MOV_0001.mp4"), 64)

	scanner := ingest.NewScanner(cfg, store, nil)
	result, err := scanner.Scan(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Discovered != 1 {
		t.Fatalf("discovered = %d, want 1 (photo only)", result.Discovered)
	}
	if result.Ignored != 1 {
		t.Fatalf("ignored = %d, want 1 (video out of scope)", result.Ignored)
	}
}
