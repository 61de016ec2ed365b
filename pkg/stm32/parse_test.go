package stm32

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Sample
		wantErr bool
	}{
		{
			name: "documented example",
			line: "A0: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV",
			want: Sample{
				Channel:   0,
				Min:       123,
				Max:       456,
				Amplitude: 123456,
				RMS:       789012,
			},
		},
		{
			name: "negative min and max",
			line: "A3: MIN= -512 MAX=  -12 AMP=0.402mV RMS=0.120mV",
			want: Sample{
				Channel:   3,
				Min:       -512,
				Max:       -12,
				Amplitude: 402,
				RMS:       120,
			},
		},
		{
			name: "last channel",
			line: "A5: MIN=0 MAX=4095 AMP=3299.194mV RMS=1166.549mV",
			want: Sample{
				Channel:   5,
				Min:       0,
				Max:       4095,
				Amplitude: 3299194,
				RMS:       1166549,
			},
		},
		{
			name: "trailing carriage return and surrounding whitespace",
			line: "  A1: MIN=   10 MAX=   20 AMP=0.008mV RMS=0.002mV\r\x00 ",
			want: Sample{
				Channel:   1,
				Min:       10,
				Max:       20,
				Amplitude: 8,
				RMS:       2,
			},
		},
		{
			name: "short fraction scales up",
			line: "A2: MIN=1 MAX=2 AMP=12.45mV RMS=3.5mV",
			want: Sample{
				Channel:   2,
				Min:       1,
				Max:       2,
				Amplitude: 12450,
				RMS:       3500,
			},
		},
		{
			name: "long fraction truncates past microvolts",
			line: "A4: MIN=1 MAX=2 AMP=123.4567mV RMS=1.23456789mV",
			want: Sample{
				Channel:   4,
				Min:       1,
				Max:       2,
				Amplitude: 123456,
				RMS:       1234,
			},
		},
		{
			name:    "channel digit out of range",
			line:    "A9: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV",
			wantErr: true,
		},
		{
			name:    "channel digit six",
			line:    "A6: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV",
			wantErr: true,
		},
		{
			name:    "missing RMS field",
			line:    "A0: MIN=  123 MAX=  456 AMP=123.456mV",
			wantErr: true,
		},
		{
			name:    "non-numeric MIN",
			line:    "A0: MIN=  abc MAX=  456 AMP=123.456mV RMS=789.012mV",
			wantErr: true,
		},
		{
			name:    "wrong prefix",
			line:    "B0: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV",
			wantErr: true,
		},
		{
			name:    "MIN overflows int",
			line:    "A0: MIN=99999999999999999999 MAX=456 AMP=1.000mV RMS=1.000mV",
			wantErr: true,
		},
		{
			name:    "AMP whole part overflows",
			line:    "A0: MIN=1 MAX=2 AMP=99999999999999999999.000mV RMS=1.000mV",
			wantErr: true,
		},
		{
			name:    "trailing garbage",
			line:    "A0: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV extra",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Timestamp.IsZero(), "parser must not stamp samples")
			assert.Equal(t, tt.want.Channel, got.Channel)
			assert.Equal(t, tt.want.Min, got.Min)
			assert.Equal(t, tt.want.Max, got.Max)
			assert.Equal(t, tt.want.Amplitude, got.Amplitude)
			assert.Equal(t, tt.want.RMS, got.RMS)
		})
	}
}

// The fixed-point composition must be exact for any whole/frac combination,
// with no floating point involved.
func TestParseLine_FixedPointExact(t *testing.T) {
	for _, whole := range []int64{0, 1, 9, 123, 4095, 99999} {
		for _, frac := range []int64{0, 1, 12, 123, 999} {
			line := fmt.Sprintf("A0: MIN=0 MAX=1 AMP=%d.%03dmV RMS=%d.%03dmV", whole, frac, whole, frac)
			got, err := parseLine(line)
			require.NoError(t, err, line)
			assert.Equal(t, Microvolts(whole*1000+frac), got.Amplitude, line)
			assert.Equal(t, Microvolts(whole*1000+frac), got.RMS, line)
		}
	}
}

func TestMicrovolts(t *testing.T) {
	assert.Equal(t, 123.456, Microvolts(123456).Millivolts())
	assert.Equal(t, "123.456mV", Microvolts(123456).String())
	assert.Equal(t, "0.007mV", Microvolts(7).String())
	assert.Equal(t, "-1.002mV", Microvolts(-1002).String())
}
