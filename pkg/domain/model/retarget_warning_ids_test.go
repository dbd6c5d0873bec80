// 指示: miu200521358
package model

import "testing"

func TestRetargetWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	if RetargetWarningReportKey != "MU_RETARGET_warnings" {
		t.Fatalf("report key mismatch: got=%s want=%s", RetargetWarningReportKey, "MU_RETARGET_warnings")
	}

	seen := map[string]struct{}{}
	for _, warningID := range RetargetWarningIDs() {
		if warningID == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[warningID]; exists {
			t.Fatalf("warning id should be unique: %s", warningID)
		}
		seen[warningID] = struct{}{}
	}
	if len(seen) != 6 {
		t.Fatalf("warning id count mismatch: %d", len(seen))
	}
}
