package models

import "testing"

func TestCreditRequestValidateAmountPrecision(t *testing.T) {
	cases := []struct {
		amount string
		valid  bool
	}{
		{"500", true},
		{"250.50", true},
		{"0.01", true},
		{"0.005", false},
		{"100.999", false},
		{"0", false},
		{"-5", false},
		{"abc", false},
	}

	for _, tc := range cases {
		req := CreditRequest{AccountNumber: "MINI0000000001", Amount: tc.amount}
		err := req.Validate()
		if tc.valid && err != nil {
			t.Errorf("amount %q: unexpected error %v", tc.amount, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("amount %q: expected validation error", tc.amount)
		}
	}
}

func TestTransferRequestValidateRejectsSubCentAmount(t *testing.T) {
	req := TransferRequest{
		FromAccountNumber: "MINI0000000001",
		ToAccountNumber:   "MINI0000000002",
		Amount:            "0.005",
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for sub-cent amount")
	}
}

func TestCreateAccountRequestValidateRejectsSubCentDeposit(t *testing.T) {
	req := CreateAccountRequest{
		FirstName:      "Asha",
		LastName:       "Rao",
		Gender:         "F",
		Phone:          "9876543210",
		DOB:            "1992-04-15",
		Aadhar:         "123412341234",
		IFSC:           "MINI0001",
		Branch:         "Main Branch",
		Address:        "12 MG Road",
		City:           "Bengaluru",
		Pincode:        "560001",
		InitialDeposit: "100.005",
		AccountType:    "SAVINGS",
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for sub-cent initial deposit")
	}
}
