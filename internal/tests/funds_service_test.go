package services_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/notification"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/usecase/services"
)

var codePattern = regexp.MustCompile(`Your OTP is: (\d{6})`)

// captureGateway records deliveries so tests can read the code out of the
// message body the way a customer would.
type captureGateway struct {
	deliveries []capturedDelivery
	fail       bool
}

type capturedDelivery struct {
	address string
	subject string
	body    string
}

func (g *captureGateway) Deliver(_ context.Context, address, subject, body string) error {
	if g.fail {
		return errors.New("mailer endpoint returned status 503")
	}
	g.deliveries = append(g.deliveries, capturedDelivery{address: address, subject: subject, body: body})
	return nil
}

func (g *captureGateway) lastCode(t *testing.T) string {
	t.Helper()
	if len(g.deliveries) == 0 {
		t.Fatal("no deliveries captured")
	}
	match := codePattern.FindStringSubmatch(g.deliveries[len(g.deliveries)-1].body)
	if match == nil {
		t.Fatal("delivered body carries no code")
	}
	return match[1]
}

type fundsFixture struct {
	svc     *services.FundsService
	store   *memory.Store
	gateway *captureGateway
}

func newFundsFixture(t *testing.T) *fundsFixture {
	t.Helper()

	store := memory.NewStore()
	gateway := &captureGateway{}
	otpService := services.NewOTPService(memory.NewOTPStore(), otpTTL)

	svc := services.NewFundsService(
		store,
		store,
		memory.NewPendingCache(otpTTL),
		otpService,
		gateway,
		notification.NewComposer("Mini Banking System"),
	)

	return &fundsFixture{svc: svc, store: store, gateway: gateway}
}

func (f *fundsFixture) seedAccount(t *testing.T, accountNumber, balance string) {
	t.Helper()

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatalf("parse balance %q: %v", balance, err)
	}

	_, err = f.store.Create(context.Background(), domain.Account{
		AccountNumber: accountNumber,
		FirstName:     "Asha",
		LastName:      "Rao",
		Gender:        "F",
		Phone:         "9" + accountNumber[5:],
		Email:         fmt.Sprintf("%s@example.com", accountNumber),
		Aadhar:        "123412341234",
		IFSC:          "MINI0001",
		Branch:        "Main Branch",
		Address:       "12 MG Road",
		City:          "Bengaluru",
		Pincode:       "560001",
		Balance:       amount,
		AccountType:   domain.AccountTypeSavings,
		Status:        domain.AccountStatusActive,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", accountNumber, err)
	}
}

func (f *fundsFixture) balance(t *testing.T, accountNumber string) string {
	t.Helper()
	account, err := f.store.GetByAccountNumber(context.Background(), accountNumber)
	if err != nil {
		t.Fatalf("fetch account %s: %v", accountNumber, err)
	}
	return account.Balance.StringFixed(2)
}

func fundsPrincipal() domain.Principal {
	return domain.Principal{
		ChannelID:    "BranchAdmin",
		Capabilities: []domain.Capability{domain.CapabilityFundsMovement},
	}
}

func TestFundsServiceCreditLifecycle(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "1000")

	challenge, err := f.svc.RequestCredit(ctx, fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if err != nil {
		t.Fatalf("request credit: %v", err)
	}
	if challenge.Data == nil || challenge.Data.InteractionToken == "" {
		t.Fatal("expected an interaction token in the challenge")
	}

	confirmation, err := f.svc.ConfirmCredit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              f.gateway.lastCode(t),
	})
	if err != nil {
		t.Fatalf("confirm credit: %v", err)
	}
	if confirmation.Data == nil || confirmation.Data.Balance != "1500.00" {
		t.Fatalf("expected balance 1500.00 in response, got %+v", confirmation.Data)
	}
	if got := f.balance(t, "MINI0000000001"); got != "1500.00" {
		t.Fatalf("expected stored balance 1500.00, got %s", got)
	}

	entries, err := f.store.ListByAccount(ctx, "MINI0000000001", 10)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Remarks != "Amount credited" || entries[0].Kind != domain.EntryKindCredit {
		t.Fatalf("unexpected ledger entries: %+v", entries)
	}
}

func TestFundsServiceSubCentAmountRejectedBeforeOTP(t *testing.T) {
	f := newFundsFixture(t)
	f.seedAccount(t, "MINI0000000001", "1000")

	resp, err := f.svc.RequestCredit(context.Background(), fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "0.005",
	})
	if err == nil {
		t.Fatal("expected validation error for sub-cent amount")
	}
	if resp.Message != "validation failed" {
		t.Fatalf("expected validation failed, got %q", resp.Message)
	}
	if len(f.gateway.deliveries) != 0 {
		t.Fatal("no OTP should be delivered for a rejected amount")
	}
	if got := f.balance(t, "MINI0000000001"); got != "1000.00" {
		t.Fatalf("expected balance unchanged at 1000.00, got %s", got)
	}
}

func TestFundsServiceDebitRejectedBeforeOTPWhenBalanceShort(t *testing.T) {
	f := newFundsFixture(t)
	f.seedAccount(t, "MINI0000000001", "100")

	resp, err := f.svc.RequestDebit(context.Background(), fundsPrincipal(), models.DebitRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if !errors.Is(err, commons.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if resp.Message != "Insufficient balance" {
		t.Fatalf("expected Insufficient balance message, got %q", resp.Message)
	}
	if len(f.gateway.deliveries) != 0 {
		t.Fatal("no OTP should be delivered when the balance falls short")
	}
}

func TestFundsServiceDebitLifecycle(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "1000")

	challenge, err := f.svc.RequestDebit(ctx, fundsPrincipal(), models.DebitRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "250.50",
	})
	if err != nil {
		t.Fatalf("request debit: %v", err)
	}

	confirmation, err := f.svc.ConfirmDebit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              f.gateway.lastCode(t),
	})
	if err != nil {
		t.Fatalf("confirm debit: %v", err)
	}
	if confirmation.Data == nil || confirmation.Data.Balance != "749.50" {
		t.Fatalf("expected balance 749.50, got %+v", confirmation.Data)
	}
}

func TestFundsServiceTransferLifecycle(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "1000")
	f.seedAccount(t, "MINI0000000002", "200")

	challenge, err := f.svc.RequestTransfer(ctx, fundsPrincipal(), models.TransferRequest{
		FromAccountNumber: "MINI0000000001",
		ToAccountNumber:   "MINI0000000002",
		Amount:            "300",
	})
	if err != nil {
		t.Fatalf("request transfer: %v", err)
	}

	// The challenge goes to the source holder only.
	if len(f.gateway.deliveries) != 1 || f.gateway.deliveries[0].address != "MINI0000000001@example.com" {
		t.Fatalf("expected one delivery to the source holder, got %+v", f.gateway.deliveries)
	}

	confirmation, err := f.svc.ConfirmTransfer(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              f.gateway.lastCode(t),
	})
	if err != nil {
		t.Fatalf("confirm transfer: %v", err)
	}
	if confirmation.Data == nil || confirmation.Data.Reference == "" {
		t.Fatal("expected a reference on the transfer response")
	}

	if got := f.balance(t, "MINI0000000001"); got != "700.00" {
		t.Fatalf("expected source balance 700.00, got %s", got)
	}
	if got := f.balance(t, "MINI0000000002"); got != "500.00" {
		t.Fatalf("expected destination balance 500.00, got %s", got)
	}

	outgoing, err := f.store.ListByAccount(ctx, "MINI0000000001", 10)
	if err != nil {
		t.Fatalf("list source entries: %v", err)
	}
	incoming, err := f.store.ListByAccount(ctx, "MINI0000000002", 10)
	if err != nil {
		t.Fatalf("list destination entries: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].Remarks != "Transferred to MINI0000000002" {
		t.Fatalf("unexpected source entries: %+v", outgoing)
	}
	if len(incoming) != 1 || incoming[0].Remarks != "Received from MINI0000000001" {
		t.Fatalf("unexpected destination entries: %+v", incoming)
	}
	if outgoing[0].Reference != incoming[0].Reference || outgoing[0].Reference != confirmation.Data.Reference {
		t.Fatal("transfer legs must share the response reference")
	}
}

func TestFundsServiceConfirmTransferUnknownToken(t *testing.T) {
	f := newFundsFixture(t)
	f.seedAccount(t, "MINI0000000001", "1000")

	resp, err := f.svc.ConfirmTransfer(context.Background(), fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: "never-staged",
		OTP:              "123456",
	})
	if !errors.Is(err, commons.ErrNoPendingOperation) {
		t.Fatalf("expected ErrNoPendingOperation, got %v", err)
	}
	if resp.Message != "No pending operation" || resp.Success {
		t.Fatalf("expected failed No pending operation envelope, got %+v", resp)
	}
	if resp.Data != nil {
		t.Fatal("error envelope must carry no data")
	}
}

func TestFundsServiceTransferToSameAccountRejected(t *testing.T) {
	f := newFundsFixture(t)
	f.seedAccount(t, "MINI0000000001", "1000")

	_, err := f.svc.RequestTransfer(context.Background(), fundsPrincipal(), models.TransferRequest{
		FromAccountNumber: "MINI0000000001",
		ToAccountNumber:   "MINI0000000001",
		Amount:            "300",
	})
	if !errors.Is(err, commons.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
}

func TestFundsServiceWrongOTPDiscardsPendingOperation(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "1000")

	challenge, err := f.svc.RequestCredit(ctx, fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if err != nil {
		t.Fatalf("request credit: %v", err)
	}

	code := f.gateway.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err = f.svc.ConfirmCredit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              wrong,
	})
	if !errors.Is(err, commons.ErrOTPRejected) {
		t.Fatalf("expected ErrOTPRejected, got %v", err)
	}

	// The failed attempt already consumed the staged operation; even the
	// right code cannot land it now.
	_, err = f.svc.ConfirmCredit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              code,
	})
	if !errors.Is(err, commons.ErrNoPendingOperation) {
		t.Fatalf("expected ErrNoPendingOperation on retry, got %v", err)
	}

	if got := f.balance(t, "MINI0000000001"); got != "1000.00" {
		t.Fatalf("expected balance unchanged at 1000.00, got %s", got)
	}
}

func TestFundsServiceConfirmTokenIsSingleUse(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "1000")

	challenge, err := f.svc.RequestCredit(ctx, fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if err != nil {
		t.Fatalf("request credit: %v", err)
	}

	code := f.gateway.lastCode(t)
	if _, err := f.svc.ConfirmCredit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              code,
	}); err != nil {
		t.Fatalf("confirm credit: %v", err)
	}

	_, err = f.svc.ConfirmCredit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              code,
	})
	if !errors.Is(err, commons.ErrNoPendingOperation) {
		t.Fatalf("expected ErrNoPendingOperation on replay, got %v", err)
	}

	if got := f.balance(t, "MINI0000000001"); got != "1500.00" {
		t.Fatalf("expected single credit to 1500.00, got %s", got)
	}
}

func TestFundsServiceConfirmPurposeMustMatch(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "1000")

	challenge, err := f.svc.RequestCredit(ctx, fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if err != nil {
		t.Fatalf("request credit: %v", err)
	}

	_, err = f.svc.ConfirmDebit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              f.gateway.lastCode(t),
	})
	if !errors.Is(err, commons.ErrNoPendingOperation) {
		t.Fatalf("expected ErrNoPendingOperation for wrong purpose, got %v", err)
	}
}

func TestFundsServiceDeliveryFailureFailsRequest(t *testing.T) {
	f := newFundsFixture(t)
	f.seedAccount(t, "MINI0000000001", "1000")
	f.gateway.fail = true

	resp, err := f.svc.RequestCredit(context.Background(), fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if !errors.Is(err, commons.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if resp.Message != "Failed to deliver OTP" {
		t.Fatalf("expected delivery failure message, got %q", resp.Message)
	}
}

func TestFundsServiceRequiresFundsMovementCapability(t *testing.T) {
	f := newFundsFixture(t)
	f.seedAccount(t, "MINI0000000001", "1000")

	readOnly := domain.Principal{ChannelID: "Viewer"}
	_, err := f.svc.RequestCredit(context.Background(), readOnly, models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if !errors.Is(err, commons.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestFundsServiceUnknownAccount(t *testing.T) {
	f := newFundsFixture(t)

	resp, err := f.svc.RequestCredit(context.Background(), fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI9999999999",
		Amount:        "500",
	})
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if resp.Message != "Account not found" {
		t.Fatalf("expected Account not found message, got %q", resp.Message)
	}
}

func TestFundsServicePhaseTwoRecheckStopsOverdraw(t *testing.T) {
	f := newFundsFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "MINI0000000001", "500")

	challenge, err := f.svc.RequestDebit(ctx, fundsPrincipal(), models.DebitRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "400",
	})
	if err != nil {
		t.Fatalf("request debit: %v", err)
	}

	// The balance moves between the phases; the posting guard must catch it.
	if err := f.store.Debit(ctx, "MINI0000000001", decimal.NewFromInt(200), "Amount debited"); err != nil {
		t.Fatalf("interleaved debit: %v", err)
	}

	resp, err := f.svc.ConfirmDebit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              f.gateway.lastCode(t),
	})
	if !errors.Is(err, commons.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if resp.Message != "Insufficient balance" {
		t.Fatalf("expected Insufficient balance message, got %q", resp.Message)
	}

	// The OTP and the staged operation are both consumed; the caller must
	// restart from phase 1.
	_, err = f.svc.ConfirmDebit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              f.gateway.lastCode(t),
	})
	if !errors.Is(err, commons.ErrNoPendingOperation) {
		t.Fatalf("expected ErrNoPendingOperation on retry, got %v", err)
	}

	if got := f.balance(t, "MINI0000000001"); got != "300.00" {
		t.Fatalf("expected balance 300.00, got %s", got)
	}
}

func TestFundsServiceStalePendingOperationExpires(t *testing.T) {
	store := memory.NewStore()
	gateway := &captureGateway{}
	pending := memory.NewPendingCache(otpTTL)
	otpService := services.NewOTPService(memory.NewOTPStore(), otpTTL)
	svc := services.NewFundsService(store, store, pending, otpService, gateway, notification.NewComposer("Mini Banking System"))

	f := &fundsFixture{svc: svc, store: store, gateway: gateway}
	f.seedAccount(t, "MINI0000000001", "1000")
	ctx := context.Background()

	challenge, err := svc.RequestCredit(ctx, fundsPrincipal(), models.CreditRequest{
		AccountNumber: "MINI0000000001",
		Amount:        "500",
	})
	if err != nil {
		t.Fatalf("request credit: %v", err)
	}

	pending.SetClock(func() time.Time { return time.Now().Add(otpTTL + time.Minute) })

	_, err = svc.ConfirmCredit(ctx, fundsPrincipal(), models.ConfirmRequest{
		InteractionToken: challenge.Data.InteractionToken,
		OTP:              gateway.lastCode(t),
	})
	if !errors.Is(err, commons.ErrNoPendingOperation) {
		t.Fatalf("expected ErrNoPendingOperation for stale token, got %v", err)
	}
}
