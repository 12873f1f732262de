package settlement

import (
	"testing"

	"github.com/mmeshcher/transferdesk/internal/model"
)

func strPtr(s string) *string { return &s }

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		rec  model.ServiceRecord
		want Settlement
	}{
		{
			name: "cash with deposit",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				Deposit:       2000,
				PaymentMethod: model.PaymentCash,
			},
			want: Settlement{
				BalanceDue:           8000,
				CollectedByFulfiller: 8000,
				NetToFulfiller:       -8000,
				AgencyMargin:         10000,
			},
		},
		{
			name: "prepaid with deposit",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				Deposit:       2000,
				PaymentMethod: model.PaymentPrepaid,
			},
			want: Settlement{
				BalanceDue:           0,
				CollectedByFulfiller: 0,
				NetToFulfiller:       0,
				AgencyMargin:         10000,
			},
		},
		{
			name: "outsourced pay to the driver",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				SupplierCost:  6000,
				PaymentMethod: model.PaymentToDriver,
				SupplierID:    strPtr("sup-1"),
			},
			want: Settlement{
				BalanceDue:           10000,
				CollectedByFulfiller: 10000,
				NetToFulfiller:       -4000,
				AgencyMargin:         4000,
			},
		},
		{
			name: "prepaid with extras",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				ExtrasAmount:  1500,
				PaymentMethod: model.PaymentPrepaid,
			},
			want: Settlement{
				BalanceDue:           0,
				CollectedByFulfiller: 1500,
				NetToFulfiller:       -1500,
				AgencyMargin:         11500,
			},
		},
		{
			name: "deposit plus balance to the driver",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				Deposit:       3000,
				PaymentMethod: model.PaymentDepositBalance,
			},
			want: Settlement{
				BalanceDue:           7000,
				CollectedByFulfiller: 7000,
				NetToFulfiller:       -7000,
				AgencyMargin:         10000,
			},
		},
		{
			name: "future invoice",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				Deposit:       1000,
				PaymentMethod: model.PaymentFutureInvoice,
			},
			want: Settlement{
				BalanceDue:           0,
				CollectedByFulfiller: 0,
				NetToFulfiller:       0,
				AgencyMargin:         10000,
			},
		},
		{
			name: "deposit exceeds price is clamped",
			rec: model.ServiceRecord{
				ClientPrice:   5000,
				Deposit:       8000,
				PaymentMethod: model.PaymentCash,
			},
			want: Settlement{
				BalanceDue:           0,
				CollectedByFulfiller: 0,
				NetToFulfiller:       0,
				AgencyMargin:         5000,
			},
		},
		{
			name: "unknown payment method does not collect cash",
			rec: model.ServiceRecord{
				ClientPrice:   10000,
				Deposit:       2000,
				PaymentMethod: "Barter",
			},
			want: Settlement{
				BalanceDue:           8000,
				CollectedByFulfiller: 0,
				NetToFulfiller:       0,
				AgencyMargin:         10000,
			},
		},
		{
			name: "empty payment method does not collect cash",
			rec: model.ServiceRecord{
				ClientPrice: 10000,
			},
			want: Settlement{
				BalanceDue:           10000,
				CollectedByFulfiller: 0,
				NetToFulfiller:       0,
				AgencyMargin:         10000,
			},
		},
		{
			name: "zero record",
			rec:  model.ServiceRecord{},
			want: Settlement{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.rec)
			if got != tt.want {
				t.Fatalf("Calculate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCalculate_BalanceDueNeverNegative(t *testing.T) {
	for _, m := range model.PaymentMethods {
		rec := model.ServiceRecord{
			ClientPrice:   1000,
			Deposit:       99999,
			PaymentMethod: m,
		}
		if got := Calculate(rec).BalanceDue; got < 0 {
			t.Fatalf("method %q: BalanceDue = %d, want >= 0", m, got)
		}
	}
}

func TestCalculate_MarginIndependentOfFulfiller(t *testing.T) {
	internal := model.ServiceRecord{
		ClientPrice:   12000,
		Deposit:       2000,
		ExtrasAmount:  500,
		PaymentMethod: model.PaymentCash,
		DriverID:      strPtr("drv-1"),
	}
	outsourced := internal
	outsourced.DriverID = nil
	outsourced.SupplierID = strPtr("sup-1")
	outsourced.SupplierCost = 0

	a := Calculate(internal).AgencyMargin
	b := Calculate(outsourced).AgencyMargin
	if a != b {
		t.Fatalf("margin differs by fulfillment branch: internal %d, outsourced %d", a, b)
	}
}

func TestSettlement_FulfillerDirection(t *testing.T) {
	tests := []struct {
		name string
		net  int64
		want Direction
	}{
		{"agency owes supplier", 4000, DirectionAgencyPays},
		{"zero treated as agency side", 0, DirectionAgencyPays},
		{"supplier owes agency", -4000, DirectionCounterpartyPays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settlement{NetToFulfiller: tt.net}
			if got := s.FulfillerDirection(); got != tt.want {
				t.Fatalf("FulfillerDirection() = %s, want %s", got, tt.want)
			}
			wantAmount := tt.net
			if wantAmount < 0 {
				wantAmount = -wantAmount
			}
			if got := s.FulfillerAmount(); got != wantAmount {
				t.Fatalf("FulfillerAmount() = %d, want %d", got, wantAmount)
			}
		})
	}
}

func TestCollectsCash(t *testing.T) {
	collecting := map[model.PaymentMethod]bool{
		model.PaymentPrepaid:        false,
		model.PaymentToDriver:       true,
		model.PaymentDepositBalance: true,
		model.PaymentFutureInvoice:  false,
		model.PaymentCash:           true,
		"":                          false,
		"Unknown":                   false,
	}

	for m, want := range collecting {
		if got := CollectsCash(m); got != want {
			t.Fatalf("CollectsCash(%q) = %v, want %v", m, got, want)
		}
	}
}
