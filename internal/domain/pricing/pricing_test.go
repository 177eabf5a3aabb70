package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type rule struct {
	kind  Kind
	value int64
}

func (r rule) Kind() Kind   { return r.kind }
func (r rule) Value() int64 { return r.value }

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		rule  Rule
		want  Breakdown
	}{
		{
			name:  "no coupon",
			lines: []Line{{UnitPrice: 1999, Quantity: 2}},
			want:  Breakdown{Subtotal: 3998, Discount: 0, Total: 3998},
		},
		{
			name:  "percent rounds half up",
			lines: []Line{{UnitPrice: 1999, Quantity: 2}},
			rule:  rule{kind: KindPercent, value: 10},
			want:  Breakdown{Subtotal: 3998, Discount: 400, Total: 3598},
		},
		{
			name:  "percent exact half",
			lines: []Line{{UnitPrice: 5, Quantity: 1}},
			rule:  rule{kind: KindPercent, value: 50},
			want:  Breakdown{Subtotal: 5, Discount: 3, Total: 2},
		},
		{
			name:  "fixed below subtotal",
			lines: []Line{{UnitPrice: 2999, Quantity: 1}, {UnitPrice: 1999, Quantity: 1}},
			rule:  rule{kind: KindFixed, value: 200},
			want:  Breakdown{Subtotal: 4998, Discount: 200, Total: 4798},
		},
		{
			name:  "fixed above subtotal floors total only",
			lines: []Line{{UnitPrice: 100, Quantity: 1}},
			rule:  rule{kind: KindFixed, value: 150},
			want:  Breakdown{Subtotal: 100, Discount: 150, Total: 0},
		},
		{
			name:  "full percent",
			lines: []Line{{UnitPrice: 2499, Quantity: 3}},
			rule:  rule{kind: KindPercent, value: 100},
			want:  Breakdown{Subtotal: 7497, Discount: 7497, Total: 0},
		},
		{
			name: "empty",
			rule: rule{kind: KindPercent, value: 10},
			want: Breakdown{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.lines, tt.rule))
		})
	}
}

func TestDiscount_NilRule(t *testing.T) {
	assert.Zero(t, Discount(3998, nil))
}

func TestPercentDiscountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.Int64Range(0, 1_000_000_000).Draw(t, "subtotal")
		p := rapid.Int64Range(0, 100).Draw(t, "percent")

		want := decimal.NewFromInt(s * p).Div(decimal.NewFromInt(100)).Round(0).IntPart()
		got := Total(s, Discount(s, rule{kind: KindPercent, value: p}))

		if got != s-want {
			t.Fatalf("total(%d, %d%%) = %d, want %d", s, p, got, s-want)
		}
		if got < 0 {
			t.Fatalf("negative total %d", got)
		}
	})
}

func TestFixedDiscountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.Int64Range(0, 1_000_000_000).Draw(t, "subtotal")
		f := rapid.Int64Range(0, 2_000_000_000).Draw(t, "fixed")

		got := Total(s, Discount(s, rule{kind: KindFixed, value: f}))
		want := max(0, s-f)
		if got != want {
			t.Fatalf("total(%d, fixed %d) = %d, want %d", s, f, got, want)
		}
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "৳19.99", Format(1999))
	assert.Equal(t, "৳1.50", Format(150))
	assert.Equal(t, "৳0.00", Format(0))
}

func TestParseMajor(t *testing.T) {
	v, err := ParseMajor("19.99")
	require.NoError(t, err)
	assert.Equal(t, int64(1999), v)

	v, err = ParseMajor("200")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), v)

	_, err = ParseMajor("1.999")
	require.ErrorIs(t, err, ErrPrecision)

	_, err = ParseMajor("-1")
	require.Error(t, err)

	_, err = ParseMajor("abc")
	require.Error(t, err)
}
