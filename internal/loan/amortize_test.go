package loan

import (
	"errors"
	"math"
	"testing"
)

func TestComputePayment_StandardLoan(t *testing.T) {
	// 50,000 at 12% p.a. over 12 months
	result, err := ComputePayment(50000, 0.12, 12)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if math.Abs(result.PeriodicPayment-4442.44) > 0.01 {
		t.Errorf("expected periodic payment ~4442.44, got %.4f", result.PeriodicPayment)
	}
	if math.Abs(result.TotalPayable-result.PeriodicPayment*12) > 1e-6 {
		t.Errorf("total payable %.6f is not payment*months %.6f", result.TotalPayable, result.PeriodicPayment*12)
	}
	if math.Abs(result.TotalInterest-(result.TotalPayable-50000)) > 1e-6 {
		t.Errorf("total interest %.6f is not payable-principal %.6f", result.TotalInterest, result.TotalPayable-50000)
	}
}

func TestComputePayment_ZeroRate(t *testing.T) {
	result, err := ComputePayment(12000, 0, 12)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.PeriodicPayment != 1000 {
		t.Errorf("expected payment exactly 1000, got %v", result.PeriodicPayment)
	}
	if result.TotalInterest != 0 {
		t.Errorf("expected zero interest, got %v", result.TotalInterest)
	}
}

func TestComputePayment_Identities(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		months    int
	}{
		{1000, 0.05, 6},
		{250000, 0.0799, 60},
		{75000, 0.18, 36},
		{500, 0, 3},
	}

	for _, tc := range cases {
		result, err := ComputePayment(tc.principal, tc.rate, tc.months)
		if err != nil {
			t.Fatalf("ComputePayment(%v, %v, %d): %v", tc.principal, tc.rate, tc.months, err)
		}
		if math.Abs(result.TotalPayable-result.PeriodicPayment*float64(tc.months)) > 1e-6 {
			t.Errorf("(%v, %v, %d): payable/payment identity broken", tc.principal, tc.rate, tc.months)
		}
		if math.Abs(result.TotalInterest-(result.TotalPayable-tc.principal)) > 1e-6 {
			t.Errorf("(%v, %v, %d): interest identity broken", tc.principal, tc.rate, tc.months)
		}
		if result.PeriodicPayment <= 0 {
			t.Errorf("(%v, %v, %d): non-positive payment %v", tc.principal, tc.rate, tc.months, result.PeriodicPayment)
		}
	}
}

func TestComputePayment_InvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		months    int
	}{
		{"zero principal", 0, 0.1, 12},
		{"negative principal", -500, 0.1, 12},
		{"zero months", 1000, 0.1, 0},
		{"negative months", 1000, 0.1, -3},
		{"negative rate", 1000, -0.1, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputePayment(tc.principal, tc.rate, tc.months)
			if err == nil {
				t.Fatal("expected an error")
			}
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %T", err)
			}
		})
	}
}
