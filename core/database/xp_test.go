package database

import (
	"context"
	"fmt"
	"testing"
)

func TestLoadXP_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	records, err := db.LoadXP(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty collection, got %d records", len(records))
	}
}

func TestSaveXP_RoundTripKeepsOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	want := []XPRecord{{"300", 15}, {"100", 50}, {"200", 5}}
	if err := db.SaveXP(ctx, want); err != nil {
		t.Fatalf("Failed to save xp: %v", err)
	}

	got, err := db.LoadXP(ctx)
	if err != nil {
		t.Fatalf("Failed to load xp: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Record %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSaveXP_ReplacesSnapshot(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := db.SaveXP(ctx, []XPRecord{{"1", 10}, {"2", 20}}); err != nil {
		t.Fatalf("Failed to save xp: %v", err)
	}
	if err := db.SaveXP(ctx, []XPRecord{{"2", 25}}); err != nil {
		t.Fatalf("Failed to save xp: %v", err)
	}

	got, err := db.LoadXP(ctx)
	if err != nil {
		t.Fatalf("Failed to load xp: %v", err)
	}
	if len(got) != 1 || got[0] != (XPRecord{"2", 25}) {
		t.Errorf("Expected only {2 25}, got %+v", got)
	}
}

func TestSaveXP_LargeCollectionIsBatched(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	records := make([]XPRecord, 2*xpInsertBatch+7)
	for i := range records {
		records[i] = XPRecord{User: fmt.Sprintf("user-%d", i), XP: int64(i)}
	}
	if err := db.SaveXP(ctx, records); err != nil {
		t.Fatalf("Failed to save xp: %v", err)
	}

	got, err := db.LoadXP(ctx)
	if err != nil {
		t.Fatalf("Failed to load xp: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(got))
	}
	if got[len(got)-1] != records[len(records)-1] {
		t.Errorf("Expected last record %+v, got %+v", records[len(records)-1], got[len(got)-1])
	}
}

func TestSaveXP_DuplicateUserFailsWithoutLosingData(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := db.SaveXP(ctx, []XPRecord{{"1", 10}}); err != nil {
		t.Fatalf("Failed to save xp: %v", err)
	}
	if err := db.SaveXP(ctx, []XPRecord{{"2", 1}, {"2", 2}}); err == nil {
		t.Fatal("Expected duplicate user to fail, got nil error")
	}

	// The failed save was rolled back
	records, err := db.LoadXP(ctx)
	if err != nil {
		t.Fatalf("Failed to load xp: %v", err)
	}
	if len(records) != 1 || records[0] != (XPRecord{"1", 10}) {
		t.Errorf("Expected only 1=10 after rollback, got %v", records)
	}
}
