package model

import "testing"

func TestAlertTypeValid(t *testing.T) {
	for _, at := range []AlertType{AlertTypeError, AlertTypeWarning, AlertTypeInfo} {
		if !at.Valid() {
			t.Errorf("expected %s to be valid", at)
		}
	}
	for _, raw := range []string{"urgent", "ERROR", ""} {
		if AlertType(raw).Valid() {
			t.Errorf("expected %q to be invalid", raw)
		}
	}
}
