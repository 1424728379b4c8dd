package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/theirongolddev/cbudget/internal/model"
)

func largeBody(n int) []byte {
	var b strings.Builder
	b.WriteString(`{"budgetPlan":"bench","budgetBreakdown":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"category":"Category %d","amount":%d.25}`, i, i*10)
	}
	b.WriteString(`]}`)
	return []byte(b.String())
}

func BenchmarkValidate(b *testing.B) {
	body := largeBody(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Validate(body); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDerive(b *testing.B) {
	resp, err := Validate(largeBody(500))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Derive(resp.Breakdown, 100000, model.BasisBreakdownSum)
	}
}
