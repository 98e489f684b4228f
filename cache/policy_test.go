package cache

import (
	"testing"
	"time"
)

func TestPolicy_EffectiveTTL(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name         string
		requested    time.Duration
		cacheControl string
		want         time.Duration
	}{
		{"caller ttl wins without header", 10 * time.Minute, "", 10 * time.Minute},
		{"max-age overrides caller ttl", 10 * time.Minute, "max-age=300", 5 * time.Minute},
		{"max-age with other directives", 10 * time.Minute, "public, max-age=120, must-revalidate", 2 * time.Minute},
		{"max-age zero wins over caller ttl", 10 * time.Minute, "max-age=0", 0},
		{"max-age zero wins over default", 0, "no-cache, max-age=0", 0},
		{"non-numeric max-age ignored", 10 * time.Minute, "max-age=soon", 10 * time.Minute},
		{"negative max-age ignored", 10 * time.Minute, "max-age=-5", 10 * time.Minute},
		{"zero requested falls back to default", 0, "", policy.DefaultTTL},
		{"clamped to max ttl", 48 * time.Hour, "", policy.MaxTTL},
		{"max-age clamped to max ttl", 0, "max-age=172800", policy.MaxTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.EffectiveTTL(tt.requested, tt.cacheControl)
			if got != tt.want {
				t.Errorf("EffectiveTTL(%v, %q) = %v, want %v", tt.requested, tt.cacheControl, got, tt.want)
			}
		})
	}
}

func TestPolicy_NegativeTTL(t *testing.T) {
	policy := DefaultPolicy()

	if got := policy.NegativeTTL(time.Hour); got != 2*time.Hour {
		t.Errorf("NegativeTTL(1h) = %v, want 2h", got)
	}
	if got := policy.NegativeTTL(0); got != 2*policy.DefaultTTL {
		t.Errorf("NegativeTTL(0) = %v, want %v", got, 2*policy.DefaultTTL)
	}

	custom := Policy{DefaultTTL: time.Minute, NegativeFactor: 3}
	if got := custom.NegativeTTL(time.Minute); got != 3*time.Minute {
		t.Errorf("NegativeTTL with factor 3 = %v, want 3m", got)
	}
}

func TestValidateKey(t *testing.T) {
	if err := ValidateKey("req:u:abcdef"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := ValidateKey(""); err == nil {
		t.Error("empty key should be invalid")
	}
	if err := ValidateKey("  "); err == nil {
		t.Error("blank key should be invalid")
	}
	if err := ValidateKey("line\nbreak"); err == nil {
		t.Error("key with newline should be invalid")
	}

	long := make([]byte, MaxKeyLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateKey(string(long)); err == nil {
		t.Error("over-length key should be invalid")
	}
}
