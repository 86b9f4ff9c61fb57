package auth

import (
	"testing"
	"time"
)

func newTestOTPIssuer() *otpStore {
	return &otpStore{
		entries:     make(map[string]*otpEntry),
		ttl:         5 * time.Minute,
		maxAttempts: 3,
	}
}

func TestOTP_IssueFormat(t *testing.T) {
	store := newTestOTPIssuer()
	for i := 0; i < 100; i++ {
		code, err := store.Issue("9876543210")
		if err != nil {
			t.Fatalf("Issue() failed: %v", err)
		}
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("Issue() = %q, want 6-digit code in [100000,999999]", code)
		}
	}
}

func TestOTP_VerifyConsumesEntry(t *testing.T) {
	store := newTestOTPIssuer()
	code, _ := store.Issue("9876543210")

	if !store.Verify("9876543210", code) {
		t.Fatal("Verify() with correct code = false, want true")
	}
	// a code is usable at most once
	if store.Verify("9876543210", code) {
		t.Fatal("Verify() after successful use = true, want false")
	}
}

func TestOTP_UnknownMobile(t *testing.T) {
	store := newTestOTPIssuer()
	if store.Verify("0000000000", "123456") {
		t.Fatal("Verify() with no entry = true, want false")
	}
}

func TestOTP_AttemptsExhausted(t *testing.T) {
	store := newTestOTPIssuer()
	code, _ := store.Issue("9876543210")

	for i := 0; i < 3; i++ {
		if store.Verify("9876543210", "000000") {
			t.Fatalf("Verify() with wrong code = true on attempt %d", i+1)
		}
	}
	// even the correct code fails on the 4th try
	if store.Verify("9876543210", code) {
		t.Fatal("Verify() after 3 failed attempts = true, want false")
	}
}

func TestOTP_TwoWrongThenCorrect(t *testing.T) {
	store := newTestOTPIssuer()
	code, _ := store.Issue("9876543210")

	for i := 0; i < 2; i++ {
		if store.Verify("9876543210", "000000") {
			t.Fatal("Verify() with wrong code = true, want false")
		}
	}
	// attempts=2: still valid
	if !store.Verify("9876543210", code) {
		t.Fatal("Verify() with correct code on 3rd attempt = false, want true")
	}

	// a fresh issuance works afterward
	newCode, err := store.Issue("9876543210")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if !store.Verify("9876543210", newCode) {
		t.Fatal("Verify() after re-issue = false, want true")
	}
}

func TestOTP_ReissueInvalidatesPriorCode(t *testing.T) {
	store := newTestOTPIssuer()
	first, _ := store.Issue("9876543210")
	second, _ := store.Issue("9876543210")

	if first != second && store.Verify("9876543210", first) {
		t.Fatal("Verify() with superseded code = true, want false")
	}
	if !store.Verify("9876543210", second) {
		t.Fatal("Verify() with current code = false, want true")
	}
}

func TestOTP_Expiry(t *testing.T) {
	store := newTestOTPIssuer()
	code, _ := store.Issue("9876543210")

	nowFunc = func() time.Time { return time.Now().Add(6 * time.Minute) }
	defer func() { nowFunc = time.Now }()

	if store.Verify("9876543210", code) {
		t.Fatal("Verify() with expired code = true, want false")
	}
	// expired entry was deleted
	if _, ok := store.entries["9876543210"]; ok {
		t.Fatal("expired entry still present, want deleted")
	}
}
