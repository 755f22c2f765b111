package checklist

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
)

func signed(roles ...Role) mapset.Set[Role] {
	return mapset.NewThreadUnsafeSet(roles...)
}

func TestEvaluateCompletion(t *testing.T) {
	spongeItems := []Item{{Key: "sponge_count", Label: "Sponge count", Kind: KindCheckbox, Required: true}}
	circulatorOnly := []RequiredSignature{{Role: RoleCirculator, Required: true}}

	debriefItems := []Item{
		{Key: "counts_status", Label: "Counts", Kind: KindSelect, Required: true, Options: []string{"normal", "exception"}},
		{Key: "equipment_issue", Label: "Equipment issues", Kind: KindText},
	}
	debriefSigs := []RequiredSignature{
		{Role: RoleCirculator, Required: true},
		{Role: RoleScrub, Conditional: true, Conditions: []string{"equipment_issue!=empty"}},
		{Role: RoleSurgeon, Conditional: true, Conditions: []string{"counts_status=exception"}},
	}

	tests := []struct {
		name          string
		in            CompletionInput
		wantKind      ErrorKind
		wantSubject   string
		wantPending   PendingReviews
		wantUnflagged []Role
	}{
		{
			name: "all items and signatures present",
			in: CompletionInput{
				Items:       spongeItems,
				Signatures:  circulatorOnly,
				Responses:   map[string]string{"sponge_count": "confirmed"},
				SignedRoles: signed(RoleCirculator),
			},
		},
		{
			name: "missing required item",
			in: CompletionInput{
				Items:       []Item{{Key: "a", Label: "a", Kind: KindCheckbox, Required: true}},
				SignedRoles: signed(),
			},
			wantKind:    KindMissingRequiredItem,
			wantSubject: "a",
		},
		{
			name: "blank response counts as missing",
			in: CompletionInput{
				Items:       spongeItems,
				Signatures:  circulatorOnly,
				Responses:   map[string]string{"sponge_count": "  \t"},
				SignedRoles: signed(RoleCirculator),
			},
			wantKind:    KindMissingRequiredItem,
			wantSubject: "Sponge count",
		},
		{
			name: "readonly and role restricted items are exempt",
			in: CompletionInput{
				Items: []Item{
					{Key: "patient_name", Label: "Patient", Kind: KindReadonly, Required: true},
					{Key: "implant_lot", Label: "Implant lot", Kind: KindText, Required: true, RoleRestriction: RoleScrub},
				},
				Signatures:  circulatorOnly,
				SignedRoles: signed(RoleCirculator),
			},
		},
		{
			name: "missing non-conditional signature",
			in: CompletionInput{
				Items:       spongeItems,
				Signatures:  circulatorOnly,
				Responses:   map[string]string{"sponge_count": "confirmed"},
				SignedRoles: signed(),
			},
			wantKind:    KindMissingSignature,
			wantSubject: "CIRCULATOR",
		},
		{
			name: "item check runs before signature check",
			in: CompletionInput{
				Items:       spongeItems,
				Signatures:  circulatorOnly,
				SignedRoles: signed(),
			},
			wantKind:    KindMissingRequiredItem,
			wantSubject: "Sponge count",
		},
		{
			name: "optional baseline roles still need one signature",
			in: CompletionInput{
				Items:       spongeItems,
				Signatures:  []RequiredSignature{{Role: RoleCirculator, Required: false}},
				Responses:   map[string]string{"sponge_count": "confirmed"},
				SignedRoles: signed(),
			},
			wantKind: KindNoSignatures,
		},
		{
			name: "no signature rules at all",
			in: CompletionInput{
				Items:     spongeItems,
				Responses: map[string]string{"sponge_count": "confirmed"},
			},
		},
		{
			name: "conditional scrub becomes pending",
			in: CompletionInput{
				Items:       debriefItems,
				Signatures:  debriefSigs,
				Responses:   map[string]string{"counts_status": "normal", "equipment_issue": "broken clamp"},
				SignedRoles: signed(RoleCirculator),
			},
			wantPending: PendingReviews{Scrub: true},
		},
		{
			name: "both reviews pending",
			in: CompletionInput{
				Items:       debriefItems,
				Signatures:  debriefSigs,
				Responses:   map[string]string{"counts_status": "exception", "equipment_issue": "broken clamp"},
				SignedRoles: signed(RoleCirculator),
			},
			wantPending: PendingReviews{Scrub: true, Surgeon: true},
		},
		{
			name: "conditional already signed is not pending",
			in: CompletionInput{
				Items:       debriefItems,
				Signatures:  debriefSigs,
				Responses:   map[string]string{"counts_status": "exception"},
				SignedRoles: signed(RoleCirculator, RoleSurgeon),
			},
		},
		{
			name: "conditional not triggered",
			in: CompletionInput{
				Items:       debriefItems,
				Signatures:  debriefSigs,
				Responses:   map[string]string{"counts_status": "normal"},
				SignedRoles: signed(RoleCirculator),
			},
		},
		{
			name: "conditional role without review flag is reported",
			in: CompletionInput{
				Items: spongeItems,
				Signatures: []RequiredSignature{
					{Role: RoleCirculator, Required: true},
					{Role: RoleAnesthesia, Conditional: true, Conditions: []string{"sponge_count=confirmed"}},
				},
				Responses:   map[string]string{"sponge_count": "confirmed"},
				SignedRoles: signed(RoleCirculator),
			},
			wantUnflagged: []Role{RoleAnesthesia},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := EvaluateCompletion(tt.in)
			if tt.wantKind != "" {
				if !IsKind(err, tt.wantKind) {
					t.Fatalf("err = %v, want kind %s", err, tt.wantKind)
				}
				if tt.wantSubject != "" {
					if got := err.(*Error).Subject; got != tt.wantSubject {
						t.Errorf("Subject = %q, want %q", got, tt.wantSubject)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.Pending != tt.wantPending {
				t.Errorf("Pending = %+v, want %+v", outcome.Pending, tt.wantPending)
			}
			if len(outcome.Unflagged) != len(tt.wantUnflagged) {
				t.Fatalf("Unflagged = %v, want %v", outcome.Unflagged, tt.wantUnflagged)
			}
			for i := range tt.wantUnflagged {
				if outcome.Unflagged[i] != tt.wantUnflagged[i] {
					t.Errorf("Unflagged[%d] = %s, want %s", i, outcome.Unflagged[i], tt.wantUnflagged[i])
				}
			}
		})
	}
}

func TestPendingReviews(t *testing.T) {
	var p PendingReviews
	if p.Any() {
		t.Fatal("zero value should have nothing pending")
	}
	if !p.Mark(RoleScrub) || !p.IsPending(RoleScrub) {
		t.Error("expected SCRUB pending after Mark")
	}
	if p.Mark(RoleCirculator) {
		t.Error("CIRCULATOR has no review flag")
	}
	if p.IsPending(RoleSurgeon) {
		t.Error("SURGEON should not be pending")
	}
	p.Clear(RoleScrub)
	if p.Any() {
		t.Error("expected nothing pending after Clear")
	}
}

func TestNotesKey(t *testing.T) {
	if got := NotesKey(RoleScrub); got != "scrub_notes" {
		t.Errorf("NotesKey(SCRUB) = %q", got)
	}
	if got := NotesKey(RoleSurgeon); got != "surgeon_notes" {
		t.Errorf("NotesKey(SURGEON) = %q", got)
	}
}
