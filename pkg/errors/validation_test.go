package errors

import (
	"math"
	"testing"
)

func TestValidateDPI(t *testing.T) {
	tests := []struct {
		dpi     int
		wantErr bool
	}{
		{300, false},
		{72, false},
		{1200, false},
		{71, true},
		{1201, true},
		{0, true},
		{-300, true},
	}
	for _, tt := range tests {
		err := ValidateDPI(tt.dpi)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDPI(%d) error = %v, wantErr %v", tt.dpi, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateDPI(%d) code = %v, want %v", tt.dpi, GetCode(err), ErrCodeInvalidInput)
		}
	}
}

func TestValidateWidthCm(t *testing.T) {
	tests := []struct {
		cm      float64
		wantErr bool
	}{
		{30, false},
		{1, false},
		{200, false},
		{0.5, true},
		{250, true},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		if err := ValidateWidthCm(tt.cm); (err != nil) != tt.wantErr {
			t.Errorf("ValidateWidthCm(%v) error = %v, wantErr %v", tt.cm, err, tt.wantErr)
		}
	}
}

func TestValidateAspectRatio(t *testing.T) {
	tests := []struct {
		r       float64
		wantErr bool
	}{
		{1, false},
		{4.0 / 3.0, false},
		{0.75, false},
		{0, true},
		{-1, true},
		{math.Inf(1), true},
		{20, true},
	}
	for _, tt := range tests {
		if err := ValidateAspectRatio(tt.r); (err != nil) != tt.wantErr {
			t.Errorf("ValidateAspectRatio(%v) error = %v, wantErr %v", tt.r, err, tt.wantErr)
		}
	}
}

func TestValidatePalette(t *testing.T) {
	for _, n := range []int{0, 2, 16, 256} {
		if err := ValidatePalette(n); err != nil {
			t.Errorf("ValidatePalette(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{1, -4, 257} {
		if err := ValidatePalette(n); err == nil {
			t.Errorf("ValidatePalette(%d) = nil, want error", n)
		}
	}
}

func TestValidateBrightness(t *testing.T) {
	if err := ValidateBrightness(15); err != nil {
		t.Errorf("ValidateBrightness(15) = %v", err)
	}
	if err := ValidateBrightness(-101); err == nil {
		t.Error("ValidateBrightness(-101) = nil, want error")
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"#fff", false},
		{"#1A2b3C", false},
		{"fff", true},
		{"#ffff", true},
		{"#gggggg", true},
	}
	for _, tt := range tests {
		err := ValidateHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidColor) {
			t.Errorf("ValidateHexColor(%q) code = %v", tt.in, GetCode(err))
		}
	}
}
