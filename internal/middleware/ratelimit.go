package middleware

import (
	"context"
	"net"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/rpc"
)

// ForwardedFor carries the browser's address on calls relayed by the
// grpc-web bridge.
const ForwardedFor = "x-forwarded-for"

const (
	evictEvery = time.Minute
	idleAfter  = 3 * time.Minute
)

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per remote host.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		every:   rate.Limit(rps),
		burst:   burst,
	}
}

// Run drops idle hosts until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	t := time.NewTicker(evictEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.evict(idleAfter)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	cutoff := time.Now().Add(-idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for host, b := range rl.buckets {
		if !b.lastSeen.After(cutoff) {
			delete(rl.buckets, host)
		}
	}
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// calls that create accounts, sessions or requests on someone else's calendar
var limited = map[string]bool{
	rpc.MethodRegister:      true,
	rpc.MethodLogin:         true,
	rpc.MethodCreateBooking: true,
}

// peerHost is the caller's address without the port, so that several
// connections from one host share a bucket. Calls from loopback are the
// local bridge, so its forwarded address is used instead.
func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host := p.Addr.String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return host
	}
	md, _ := metadata.FromIncomingContext(ctx)
	if vals := md.Get(ForwardedFor); len(vals) > 0 {
		first, _, _ := strings.Cut(vals[0], ",")
		if fwd := strings.TrimSpace(first); fwd != "" {
			return fwd
		}
	}
	return host
}

func RateLimit(rl *RateLimiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if limited[info.FullMethod] && !rl.Allow(peerHost(ctx)) {
			return nil, status.Errorf(codes.ResourceExhausted, "too many %s requests", path.Base(info.FullMethod))
		}
		return next(ctx, req)
	}
}
