package models

import "testing"

func TestComputeTTC(t *testing.T) {
	cases := []struct {
		ht, tva, want float64
	}{
		{1000, 20, 1200},
		{500, 0, 500},
		{0, 20, 0},
		{100, 5.5, 105.5},
	}
	for _, c := range cases {
		inv := Invoice{AmountHT: c.ht, TVA: c.tva}
		if got := inv.ComputeTTC(); got != c.want {
			t.Errorf("ComputeTTC(ht=%v, tva=%v) = %v, want %v", c.ht, c.tva, got, c.want)
		}
	}
}

func TestTaxAmount(t *testing.T) {
	inv := Invoice{AmountHT: 1000, TVA: 20}
	if got := inv.TaxAmount(); got != 200 {
		t.Fatalf("TaxAmount = %v, want 200", got)
	}
}

func TestValidInvoiceStatus(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue} {
		if !ValidInvoiceStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []InvoiceStatus{"", "DRAFT", "cancelled", "archived"} {
		if ValidInvoiceStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidProjectStatus(t *testing.T) {
	for _, s := range []ProjectStatus{ProjectStatusTodo, ProjectStatusInProgress, ProjectStatusCompleted} {
		if !ValidProjectStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if ValidProjectStatus("paused") {
		t.Error("expected paused to be invalid")
	}
}

func TestOwnableImplementations(t *testing.T) {
	var _ Ownable = &Client{UserID: 1}
	var _ Ownable = &Project{UserID: 1}
	var _ Ownable = &Invoice{UserID: 1}

	inv := Invoice{UserID: 7}
	if inv.GetUserID() != 7 {
		t.Fatalf("GetUserID = %d, want 7", inv.GetUserID())
	}
}
