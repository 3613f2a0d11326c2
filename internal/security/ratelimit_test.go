package security

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestSlidingWindowLimiterAllowsUpToMax(t *testing.T) {
	rl := NewSlidingWindowLimiter(10, time.Minute)

	for i := 1; i <= 10; i++ {
		exceeded, _ := rl.Check("operator-1")
		if exceeded {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	exceeded, resetAt := rl.Check("operator-1")
	if !exceeded {
		t.Error("11th request within the window should be rejected")
	}
	if resetAt.Before(time.Now()) {
		t.Error("resetAt should be in the future for a rejected request")
	}
}

func TestSlidingWindowLimiterIndependentIdentifiers(t *testing.T) {
	rl := NewSlidingWindowLimiter(1, time.Minute)

	if exceeded, _ := rl.Check("a"); exceeded {
		t.Error("first request for a should be allowed")
	}
	if exceeded, _ := rl.Check("b"); exceeded {
		t.Error("first request for b should be allowed")
	}
	if exceeded, _ := rl.Check("a"); !exceeded {
		t.Error("second request for a should be rejected")
	}
}

func TestSlidingWindowLimiterResetsAfterWindow(t *testing.T) {
	rl := NewSlidingWindowLimiter(1, 20*time.Millisecond)

	rl.Check("op")
	if exceeded, _ := rl.Check("op"); !exceeded {
		t.Fatal("second request inside window should be rejected")
	}

	time.Sleep(30 * time.Millisecond)

	if exceeded, _ := rl.Check("op"); exceeded {
		t.Error("first request after window reset should be allowed")
	}
}

func TestSlidingWindowLimiterCountsRejectedRequests(t *testing.T) {
	rl := NewSlidingWindowLimiter(2, time.Minute)

	rl.Check("op")
	rl.Check("op")
	// Rejected attempts keep counting; the limiter never "frees up"
	// mid-window no matter how often it is hammered.
	for i := 0; i < 5; i++ {
		if exceeded, _ := rl.Check("op"); !exceeded {
			t.Fatalf("request %d over the limit should be rejected", i+3)
		}
	}
}

func TestSlidingWindowLimiterConcurrentChecks(t *testing.T) {
	rl := NewSlidingWindowLimiter(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	rejected := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if exceeded, _ := rl.Check("shared"); exceeded {
				mu.Lock()
				rejected++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if rejected != 50 {
		t.Errorf("expected exactly 50 rejections for 100 concurrent checks, got %d", rejected)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{"x-forwarded-for wins", "203.0.113.7", "198.51.100.1", "192.0.2.1:1234", "203.0.113.7"},
		{"x-real-ip next", "", "198.51.100.1", "192.0.2.1:1234", "198.51.100.1"},
		{"remote addr fallback", "", "", "192.0.2.1:1234", "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
