package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
)

func TestPositive(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "400", want: "400.00"},
		{in: "400.000", want: "400.00"},
		{in: "0.01", want: "0.01"},
		{in: "99999999.99", want: "99999999.99"},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "0.004", wantErr: true},
		{in: "0.001", wantErr: true},
		{in: "10.005", wantErr: true},
		{in: "100000000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Positive("price", decimal.RequireFromString(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestNonNegativeAdmitsZero(t *testing.T) {
	got, err := NonNegative("amount", decimal.Zero)
	require.NoError(t, err)
	require.True(t, got.IsZero())

	_, err = NonNegative("amount", decimal.RequireFromString("-0.01"))
	require.Error(t, err)
	_, err = NonNegative("amount", decimal.RequireFromString("0.009"))
	require.Error(t, err)
}
