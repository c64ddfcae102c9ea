package statsig

import "testing"

func TestUnitIDFallsBackToUserID(t *testing.T) {
	u := User{UserID: "u1"}
	if got := u.unitID("employeeID"); got != "u1" {
		t.Errorf("unitID with empty customIDs = %q, want %q", got, "u1")
	}
}

func TestUnitIDUsesCustomID(t *testing.T) {
	u := User{UserID: "u1", CustomIDs: map[string]string{"employeeID": "e1"}}
	if got := u.unitID("employeeID"); got != "e1" {
		t.Errorf("unitID = %q, want %q", got, "e1")
	}
}

func TestUnitIDUserIDCaseInsensitive(t *testing.T) {
	u := User{UserID: "u1"}
	if got := u.unitID("UserID"); got != "u1" {
		t.Errorf("unitID(\"UserID\") = %q, want %q", got, "u1")
	}
}

func TestGetFieldCaseInsensitive(t *testing.T) {
	u := User{Email: "a@b.com"}
	if v, ok := u.getField("EMAIL"); !ok || v != "a@b.com" {
		t.Errorf("getField(EMAIL) = (%q, %v), want (%q, true)", v, ok, "a@b.com")
	}
}

func TestGetFieldCustomFallback(t *testing.T) {
	u := User{Custom: map[string]string{"plan": "pro"}}
	if v, ok := u.getField("plan"); !ok || v != "pro" {
		t.Errorf("getField(plan) = (%q, %v), want (%q, true)", v, ok, "pro")
	}
}

func TestGetEnvironmentFieldOnlyTier(t *testing.T) {
	u := User{Environment: Environment{Tier: "staging"}}
	if v, ok := u.getEnvironmentField("tier"); !ok || v != "staging" {
		t.Errorf("getEnvironmentField(tier) = (%q, %v), want (%q, true)", v, ok, "staging")
	}
	if _, ok := u.getEnvironmentField("region"); ok {
		t.Error("expected getEnvironmentField(region) to be absent")
	}
}

func TestSanitizedForLoggingStripsPrivateAttributes(t *testing.T) {
	u := User{UserID: "u1", PrivateAttributes: map[string]string{"secret": "x"}}
	sanitized := u.sanitizedForLogging()
	if sanitized.PrivateAttributes != nil {
		t.Error("expected PrivateAttributes to be stripped for logging")
	}
}
