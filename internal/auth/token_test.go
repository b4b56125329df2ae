package auth

import (
	"testing"
	"time"
)

func TestStaffToken_RoundTrip(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s, err := IssueStaffToken(secret, "jan", "Jan", 8*time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := VerifyStaffToken(s, secret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Subject != "jan" || got.Name != "Jan" {
		t.Fatalf("identity mismatch: %+v", got)
	}
}

func TestStaffToken_Expired(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s, err := IssueStaffToken(secret, "jan", "", time.Minute, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifyStaffToken(s, secret, now.Add(2*time.Minute)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestStaffToken_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)

	s, err := IssueStaffToken("right", "jan", "", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifyStaffToken(s, "wrong", now); err == nil {
		t.Fatalf("expected signature error")
	}
}
