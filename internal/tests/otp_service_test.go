package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/usecase/services"
)

const otpTTL = 5 * time.Minute

func newOTPFixture(t *testing.T) (*services.OTPService, *memory.OTPStore) {
	t.Helper()
	store := memory.NewOTPStore()
	return services.NewOTPService(store, otpTTL), store
}

func TestOTPServiceIssueAndVerify(t *testing.T) {
	svc, _ := newOTPFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeCredit)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	outcome, err := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeCredit, code)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if outcome != domain.VerifyOutcomeOK {
		t.Fatalf("expected outcome %s, got %s", domain.VerifyOutcomeOK, outcome)
	}
}

func TestOTPServiceVerifyIsSingleUse(t *testing.T) {
	svc, _ := newOTPFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeDebit)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeDebit, code); outcome != domain.VerifyOutcomeOK {
		t.Fatalf("first verify: expected OK, got %s", outcome)
	}

	outcome, err := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeDebit, code)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if outcome != domain.VerifyOutcomeAlreadyUsed {
		t.Fatalf("second verify: expected %s, got %s", domain.VerifyOutcomeAlreadyUsed, outcome)
	}
}

func TestOTPServiceVerifyMismatchLeavesCodeUsable(t *testing.T) {
	svc, _ := newOTPFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeCredit)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeCredit, wrong); outcome != domain.VerifyOutcomeMismatch {
		t.Fatalf("expected %s, got %s", domain.VerifyOutcomeMismatch, outcome)
	}

	// A mismatch must not consume the code.
	if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeCredit, code); outcome != domain.VerifyOutcomeOK {
		t.Fatalf("expected OK after mismatch, got %s", outcome)
	}
}

func TestOTPServiceVerifyUnknownAccount(t *testing.T) {
	svc, _ := newOTPFixture(t)

	outcome, err := svc.Verify(context.Background(), "MINI9999999999", domain.OTPPurposeCredit, "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if outcome != domain.VerifyOutcomeNotFound {
		t.Fatalf("expected %s, got %s", domain.VerifyOutcomeNotFound, outcome)
	}
}

func TestOTPServiceVerifyScopedByPurpose(t *testing.T) {
	svc, _ := newOTPFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeCredit)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	outcome, err := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeDebit, code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if outcome != domain.VerifyOutcomeNotFound {
		t.Fatalf("expected %s for wrong purpose, got %s", domain.VerifyOutcomeNotFound, outcome)
	}
}

func TestOTPServiceVerifyExpiryWindow(t *testing.T) {
	svc, store := newOTPFixture(t)
	ctx := context.Background()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return issuedAt })

	code, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeTransfer)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	svc.SetClock(func() time.Time { return issuedAt.Add(otpTTL - time.Second) })
	if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeTransfer, code); outcome != domain.VerifyOutcomeOK {
		t.Fatalf("expected OK just inside the window, got %s", outcome)
	}

	code, err = svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeTransfer)
	if err != nil {
		t.Fatalf("issue second otp: %v", err)
	}

	svc.SetClock(func() time.Time { return issuedAt.Add(otpTTL + time.Second) })
	if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeTransfer, code); outcome != domain.VerifyOutcomeExpired {
		t.Fatalf("expected %s just outside the window, got %s", domain.VerifyOutcomeExpired, outcome)
	}
}

func TestOTPServiceLatestCodeWins(t *testing.T) {
	svc, _ := newOTPFixture(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeCredit)
	if err != nil {
		t.Fatalf("issue first otp: %v", err)
	}
	second, err := svc.Issue(ctx, "MINI0000000001", domain.OTPPurposeCredit)
	if err != nil {
		t.Fatalf("issue second otp: %v", err)
	}

	if first != second {
		if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeCredit, first); outcome != domain.VerifyOutcomeMismatch {
			t.Fatalf("expected stale code to mismatch, got %s", outcome)
		}
	}

	if outcome, _ := svc.Verify(ctx, "MINI0000000001", domain.OTPPurposeCredit, second); outcome != domain.VerifyOutcomeOK {
		t.Fatalf("expected latest code to verify, got %s", outcome)
	}
}
