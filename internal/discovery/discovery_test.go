package discovery

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHosts(t *testing.T) {
	hosts := Hosts("192.168.1")
	require.Len(t, hosts, 254)
	assert.Equal(t, "192.168.1.1", hosts[0])
	assert.Equal(t, "192.168.1.254", hosts[253])
}

func TestParseSubnet(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"192.168.1", "192.168.1", false},
		{" 10.0.0.17 ", "10.0.0", false},
		{"172.16.4.0/24", "172.16.4", false},
		{"172.16.4.0/16", "", true},
		{"10.0", "", true},
		{"10.0.300", "", true},
		{"a.b.c", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSubnet(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSubnetFromAddrs(t *testing.T) {
	addrs := []net.Addr{
		&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
		&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
		&net.IPNet{IP: net.ParseIP("8.8.8.8"), Mask: net.CIDRMask(24, 32)},
		&net.IPNet{IP: net.ParseIP("192.168.50.23"), Mask: net.CIDRMask(24, 32)},
	}
	got, ok := subnetFromAddrs(addrs)
	require.True(t, ok)
	assert.Equal(t, "192.168.50", got)

	_, ok = subnetFromAddrs(addrs[:3])
	assert.False(t, ok)
}

func TestSweep_FindsHost(t *testing.T) {
	var calls atomic.Int32
	s := Sweeper{
		Port:        31010,
		Concurrency: 10,
		Timeout:     time.Second,
		Prober: ProberFunc(func(ctx context.Context, baseURL string) bool {
			calls.Add(1)
			return baseURL == "http://10.1.2.42:31010"
		}),
	}

	got, err := s.Sweep(context.Background(), "10.1.2")
	require.NoError(t, err)
	assert.Equal(t, "http://10.1.2.42:31010", got)
	assert.Less(t, int(calls.Load()), 254, "sweep should stop early after a match")
}

func TestSweep_CancelsInFlightProbes(t *testing.T) {
	var cancelled atomic.Int32
	s := Sweeper{
		Concurrency: 20,
		Timeout:     5 * time.Second,
		Prober: ProberFunc(func(ctx context.Context, baseURL string) bool {
			if baseURL == "http://10.1.2.3:31010" {
				return true
			}
			<-ctx.Done()
			cancelled.Add(1)
			return false
		}),
	}

	start := time.Now()
	got, err := s.Sweep(context.Background(), "10.1.2")
	require.NoError(t, err)
	assert.Equal(t, "http://10.1.2.3:31010", got)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Positive(t, cancelled.Load())
}

func TestSweep_RespectsConcurrencyLimit(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		highest int
	)
	s := Sweeper{
		Concurrency: 5,
		Timeout:     time.Second,
		Prober: ProberFunc(func(ctx context.Context, baseURL string) bool {
			mu.Lock()
			active++
			if active > highest {
				highest = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return false
		}),
	}

	_, err := s.Sweep(context.Background(), "10.9.9")
	require.ErrorIs(t, err, ErrNotFound)
	assert.LessOrEqual(t, highest, 5)
}

func TestSweep_ProbeTimeout(t *testing.T) {
	s := Sweeper{
		Concurrency: 254,
		Timeout:     20 * time.Millisecond,
		Prober: ProberFunc(func(ctx context.Context, baseURL string) bool {
			<-ctx.Done()
			return false
		}),
	}
	start := time.Now()
	_, err := s.Sweep(context.Background(), "10.0.0")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSweep_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := Sweeper{
		Concurrency: 4,
		Timeout:     5 * time.Second,
		Prober: ProberFunc(func(pctx context.Context, baseURL string) bool {
			cancel()
			<-pctx.Done()
			return false
		}),
	}
	_, err := s.Sweep(ctx, "10.0.0")
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}

func TestSweep_Validation(t *testing.T) {
	_, err := Sweeper{}.Sweep(context.Background(), "10.0.0")
	assert.Error(t, err)

	s := Sweeper{Prober: ProberFunc(func(context.Context, string) bool { return false })}
	_, err = s.Sweep(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSubnet)
}
