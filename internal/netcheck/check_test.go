package netcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	tkerrors "github.com/r3dlabs/termkit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_OpenPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	res := New(time.Second, 1).Check(context.Background(), "127.0.0.1", port)

	assert.True(t, res.Open)
	assert.Equal(t, FailNone, res.Reason)
	assert.NoError(t, res.Err)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), res.Address())
}

func TestCheck_ClosedPort(t *testing.T) {
	c := &Checker{
		Timeout: time.Second,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
		},
	}

	res := c.Check(context.Background(), "db.internal", 5432)
	assert.False(t, res.Open)
	assert.Equal(t, FailRefused, res.Reason)
	assert.Equal(t, "closed", res.Reason.String())
	assert.Equal(t, "PostgreSQL", res.Service())
}

func TestCheck_Timeout(t *testing.T) {
	c := &Checker{
		Timeout: 20 * time.Millisecond,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	start := time.Now()
	res := c.Check(context.Background(), "10.255.255.1", 80)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, FailTimeout, res.Reason)
}

func TestCheckPorts_OrderAndWorkerCap(t *testing.T) {
	var inFlight, peak int32
	c := &Checker{
		Timeout: time.Second,
		Workers: 3,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)

			_, port, _ := net.SplitHostPort(address)
			if port == "443" {
				client, server := net.Pipe()
				server.Close()
				return client, nil
			}
			return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
		},
	}

	ports := []int{22, 80, 443, 8080, 9000, 9001, 9002}
	results := c.CheckPorts(context.Background(), "example.com", ports)

	require.Len(t, results, len(ports))
	for i, r := range results {
		assert.Equal(t, ports[i], r.Port, "results keep input order")
		assert.Equal(t, r.Port == 443, r.Open)
	}
	assert.Equal(t, 1, OpenCount(results))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestCheckPorts_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	c := &Checker{
		Workers: 1,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			once.Do(cancel)
			return nil, errors.New("boom")
		},
	}

	results := c.CheckPorts(ctx, "example.com", []int{1, 2, 3})
	require.Len(t, results, 3)
	for _, r := range results[1:] {
		assert.False(t, r.Open)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestCheckPorts_Empty(t *testing.T) {
	assert.Empty(t, New(0, 0).CheckPorts(context.Background(), "example.com", nil))
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		args    []string
		want    []int
		wantErr bool
	}{
		{args: []string{"443"}, want: []int{443}},
		{args: []string{"80,22", "443"}, want: []int{22, 80, 443}},
		{args: []string{"8000-8003"}, want: []int{8000, 8001, 8002, 8003}},
		{args: []string{"22", "22,22"}, want: []int{22}},
		{args: []string{"0"}, wantErr: true},
		{args: []string{"70000"}, wantErr: true},
		{args: []string{"ssh"}, wantErr: true},
		{args: []string{"90-80"}, wantErr: true},
		{args: []string{","}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.args), func(t *testing.T) {
			got, err := ParsePorts(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, tkerrors.IsCode(err, tkerrors.ErrNet))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailReason
	}{
		{"nil", nil, FailNone},
		{"dns", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, FailDNS},
		{"deadline", context.DeadlineExceeded, FailTimeout},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), FailRefused},
		{"no route", errors.New("connect: no route to host"), FailUnreachable},
		{"unreachable", errors.New("connect: network is unreachable"), FailUnreachable},
		{"other", errors.New("something odd"), FailUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categorize(tt.err))
		})
	}
}
