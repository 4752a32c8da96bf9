package backoff

import (
	"testing"
	"time"
)

func TestExponential_Delay(t *testing.T) {
	calc := NewExponential(Config{
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}, 5)

	// First attempt (4 left after decrement): 1*2^0 = 1s
	if d := calc.Delay(4); d != 1*time.Second {
		t.Errorf("expected 1s, got %v", d)
	}

	// Second attempt (3 left): 1*2^1 = 2s
	if d := calc.Delay(3); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}

	// Third attempt (2 left): 1*2^2 = 4s
	if d := calc.Delay(2); d != 4*time.Second {
		t.Errorf("expected 4s, got %v", d)
	}

	// Last attempt (0 left): 1*2^4 = 16s, capped at 10s
	if d := calc.Delay(0); d != 10*time.Second {
		t.Errorf("expected 10s cap, got %v", d)
	}
}

func TestExponential_MonotonicAsAttemptsConsumed(t *testing.T) {
	calc := NewExponential(Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}, 8)

	prev := time.Duration(0)
	for left := 7; left >= 0; left-- {
		d := calc.Delay(left)
		if d < prev {
			t.Errorf("delay decreased: %v after %v at attemptsLeft=%d", d, prev, left)
		}
		prev = d
	}
}

func TestExponential_Defaults(t *testing.T) {
	calc := NewExponential(Config{}, 3)
	if d := calc.Delay(2); d != DefaultConfig.InitialDelay {
		t.Errorf("expected default initial delay, got %v", d)
	}
}
