package fix

import (
	"testing"

	"amend/internal/diag"
)

func TestLazyOptions(t *testing.T) {
	thunk := diag.FixThunkFunc{Key: "k", Fn: func(diag.FixBuildContext) (diag.Fix, error) { return diag.Fix{}, nil }}
	fix := Lazy("Later", thunk,
		WithID("later"),
		WithKind(diag.FixKindSourceAction),
		WithApplicability(diag.FixApplicabilityManualReview),
		Preferred(),
		nil,
	)
	if fix.Thunk == nil || len(fix.Edits) != 0 {
		t.Fatalf("lazy fix must keep its thunk and carry no edits: %+v", fix)
	}
	if fix.ID != "later" || fix.Kind != diag.FixKindSourceAction || !fix.IsPreferred {
		t.Errorf("options not applied: %+v", fix)
	}
	if fix.Applicability != diag.FixApplicabilityManualReview {
		t.Errorf("expected manual review, got %s", fix.Applicability)
	}
}

func TestLazyDefaults(t *testing.T) {
	fix := Lazy("Now", nil)
	if fix.Kind != diag.FixKindQuickFix || fix.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Fatalf("unexpected defaults %+v", fix)
	}
}
