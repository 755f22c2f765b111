package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/safecase/internal/adapters/sqlite"
	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/secondary"
)

func TestTemplateRepository_PublishFlow(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTemplateRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tpl := &secondary.TemplateRecord{
		ID:         "tpl-1",
		FacilityID: "FAC-001",
		Type:       checklist.TypeDebrief,
		Name:       "Post-Op Debrief",
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	version := &secondary.TemplateVersionRecord{
		ID:            "ver-1",
		TemplateID:    "tpl-1",
		VersionNumber: 1,
		Items: []checklist.Item{
			{Key: "counts_correct", Label: "Counts correct", Kind: checklist.KindCheckbox, Required: true},
			{Key: "wound_class", Label: "Wound class", Kind: checklist.KindSelect, Options: []string{"I", "II"}, VisibleWhen: "counts_correct=true"},
		},
		Signatures: []checklist.RequiredSignature{
			{Role: checklist.RoleCirculator, Required: true},
			{Role: checklist.RoleScrub, Required: true, Conditional: true, Conditions: []string{"equipment_issue!=empty"}},
		},
		CreatedBy: "USR-001",
		CreatedAt: now.Add(time.Minute),
	}

	err := repo.WithinTx(ctx, func(tx secondary.TemplateRepository) error {
		if err := tx.CreateVersion(ctx, version); err != nil {
			return err
		}
		return tx.SetCurrentVersion(ctx, "tpl-1", "ver-1")
	})
	if err != nil {
		t.Fatalf("WithinTx failed: %v", err)
	}

	got, err := repo.GetTemplate(ctx, "FAC-001", checklist.TypeDebrief)
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.CurrentVersionID != "ver-1" {
		t.Errorf("CurrentVersionID = %q, want %q", got.CurrentVersionID, "ver-1")
	}
	if !got.UpdatedAt.Equal(version.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, version.CreatedAt)
	}

	stored, err := repo.GetVersion(ctx, "ver-1")
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if len(stored.Items) != 2 || stored.Items[1].Options[1] != "II" || stored.Items[1].VisibleWhen != "counts_correct=true" {
		t.Errorf("items did not round-trip: %+v", stored.Items)
	}
	if !stored.Signatures[1].Conditional || stored.Signatures[1].Conditions[0] != "equipment_issue!=empty" {
		t.Errorf("signatures did not round-trip: %+v", stored.Signatures)
	}
	if stored.CreatedBy != "USR-001" {
		t.Errorf("CreatedBy = %q, want USR-001", stored.CreatedBy)
	}

	numbers, err := repo.VersionNumbers(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("VersionNumbers failed: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != 1 {
		t.Errorf("VersionNumbers = %v, want [1]", numbers)
	}
}

func TestTemplateRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTemplateRepository(db)
	ctx := context.Background()
	seedTemplateVersion(t, db, "tpl-1", "ver-1", "FAC-001", "TIMEOUT")
	seedTemplateVersion(t, db, "tpl-2", "ver-2", "FAC-001", "DEBRIEF")

	t.Run("missing template is nil", func(t *testing.T) {
		got, err := repo.GetTemplate(ctx, "FAC-002", checklist.TypeTimeout)
		if err != nil {
			t.Fatalf("GetTemplate failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("missing version is nil", func(t *testing.T) {
		got, err := repo.GetVersion(ctx, "ver-404")
		if err != nil {
			t.Fatalf("GetVersion failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("by ID", func(t *testing.T) {
		got, err := repo.GetTemplateByID(ctx, "tpl-2")
		if err != nil {
			t.Fatalf("GetTemplateByID failed: %v", err)
		}
		if got.Type != checklist.TypeDebrief {
			t.Errorf("Type = %q, want DEBRIEF", got.Type)
		}
	})

	t.Run("list in display order", func(t *testing.T) {
		list, err := repo.ListTemplates(ctx, "FAC-001")
		if err != nil {
			t.Fatalf("ListTemplates failed: %v", err)
		}
		if len(list) != 2 || list[0].Type != checklist.TypeTimeout {
			t.Errorf("ListTemplates = %+v, want TIMEOUT first", list)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		if err := repo.SetActive(ctx, "tpl-1", false); err != nil {
			t.Fatalf("SetActive failed: %v", err)
		}
		got, _ := repo.GetTemplateByID(ctx, "tpl-1")
		if got.IsActive {
			t.Error("expected template to be inactive")
		}
		if err := repo.SetActive(ctx, "tpl-404", false); err == nil {
			t.Error("expected error for missing template")
		}
	})
}

func TestTemplateRepository_DuplicateVersionNumberConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTemplateRepository(db)
	ctx := context.Background()
	seedTemplateVersion(t, db, "tpl-1", "ver-1", "FAC-001", "TIMEOUT")

	err := repo.CreateVersion(ctx, &secondary.TemplateVersionRecord{
		ID:            "ver-dup",
		TemplateID:    "tpl-1",
		VersionNumber: 1,
		Items:         []checklist.Item{{Key: "a", Kind: checklist.KindCheckbox}},
		CreatedAt:     time.Now(),
	})
	if !errors.Is(err, secondary.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	err = repo.CreateTemplate(ctx, &secondary.TemplateRecord{
		ID: "tpl-dup", FacilityID: "FAC-001", Type: checklist.TypeTimeout, Name: "dup",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	if !errors.Is(err, secondary.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate template, got %v", err)
	}
}

func TestTemplateRepository_WithinTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTemplateRepository(db)
	ctx := context.Background()
	seedTemplateVersion(t, db, "tpl-1", "ver-1", "FAC-001", "TIMEOUT")

	boom := errors.New("boom")
	err := repo.WithinTx(ctx, func(tx secondary.TemplateRepository) error {
		if err := tx.CreateVersion(ctx, &secondary.TemplateVersionRecord{
			ID:            "ver-2",
			TemplateID:    "tpl-1",
			VersionNumber: 2,
			Items:         []checklist.Item{{Key: "a", Kind: checklist.KindCheckbox}},
			CreatedAt:     time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := repo.GetVersion(ctx, "ver-2")
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if got != nil {
		t.Error("expected version insert to be rolled back")
	}
}
