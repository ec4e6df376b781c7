package finance

import "testing"

func TestCreditScore(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		completed int
		active    []ActiveCreditStanding
		want      float64
	}{
		{
			name: "no history scores the neutral base",
			want: 50,
		},
		{
			name:  "completion rate raises the score",
			total: 4, completed: 2,
			want: 65, // 50 + 0.5 x 30
		},
		{
			name:  "active repayment progress counts",
			total: 2, completed: 1,
			active: []ActiveCreditStanding{{AmountPaid: 500, TotalAmount: 1000}},
			want:   70, // 50 + 15 + 5
		},
		{
			name:  "overdue installments lower the score",
			total: 2, completed: 1,
			active: []ActiveCreditStanding{{AmountPaid: 500, TotalAmount: 1000, OverdueInstallments: 2}},
			want:   60, // 50 + 15 + 5 - 10
		},
		{
			name:  "clamped at zero",
			total: 1, completed: 0,
			active: []ActiveCreditStanding{{OverdueInstallments: 20}},
			want:   0,
		},
		{
			name:  "unpaid active credit adds nothing",
			total: 1, completed: 0,
			active: []ActiveCreditStanding{{AmountPaid: 0, TotalAmount: 1000}},
			want:   50,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CreditScore(tc.total, tc.completed, tc.active); got != tc.want {
				t.Errorf("CreditScore(%d, %d, %v) = %.2f, want %.2f", tc.total, tc.completed, tc.active, got, tc.want)
			}
		})
	}
}

func TestCreditScoreClampedAtHundred(t *testing.T) {
	active := make([]ActiveCreditStanding, 10)
	for i := range active {
		active[i] = ActiveCreditStanding{AmountPaid: 900, TotalAmount: 1000}
	}
	if got := CreditScore(10, 10, active); got != 100 {
		t.Errorf("score = %.2f, want clamp at 100", got)
	}
}
