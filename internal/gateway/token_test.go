package gateway_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/gateway"
	"github.com/aingelmo/HCGateway-dashboard/internal/mockgw"
	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// testClock is a controllable clock shared by manager and assertions.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newManagerWithMock(t *testing.T, clock *testClock, opts ...mockgw.Option) (*gateway.Manager, *mockgw.Server) {
	t.Helper()

	opts = append([]mockgw.Option{mockgw.WithNowFunc(clock.Now)}, opts...)
	mock := mockgw.New("alice", "hunter2", opts...)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	mgr, err := gateway.NewManager(
		gateway.Credentials{Username: "alice", Password: "hunter2"},
		srv.URL,
		gateway.WithHTTPClient(srv.Client()),
		gateway.WithNowFunc(clock.Now),
	)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return mgr, mock
}

func TestManagerLogin(t *testing.T) {
	convey.Convey("Given a manager against the mock gateway", t, func() {
		ctx := context.Background()
		clock := newTestClock()
		mgr, mock := newManagerWithMock(t, clock)

		convey.Convey("When logging in with valid credentials", func() {
			tok, err := mgr.Login(ctx)

			convey.Convey("Then a non-expired token should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(tok.Access, convey.ShouldNotBeEmpty)
				convey.So(tok.Refresh, convey.ShouldNotBeEmpty)
				convey.So(tok.ExpiresAt.After(clock.Now()), convey.ShouldBeTrue)
			})

			convey.Convey("Then Token should reuse it without network calls", func() {
				convey.So(err, convey.ShouldBeNil)
				got, terr := mgr.Token(ctx)
				convey.So(terr, convey.ShouldBeNil)
				convey.So(got.Access, convey.ShouldEqual, tok.Access)
				convey.So(mock.LoginCalls(), convey.ShouldEqual, 1)
				convey.So(mock.RefreshCalls(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the credentials are rejected", func() {
			mock.FailLogin(true)
			_, err := mgr.Login(ctx)

			convey.Convey("Then it should fail with an auth error", func() {
				convey.So(errors.Is(err, gateway.ErrAuth), convey.ShouldBeTrue)
			})
		})
	})
}

func TestManagerConstruction(t *testing.T) {
	convey.Convey("Given manager construction", t, func() {
		convey.Convey("When credentials are missing", func() {
			_, err := gateway.NewManager(gateway.Credentials{}, "http://example.test")

			convey.Convey("Then it should fail with an auth error", func() {
				convey.So(errors.Is(err, gateway.ErrAuth), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the base URL is missing", func() {
			_, err := gateway.NewManager(gateway.Credentials{Username: "a", Password: "b"}, "")

			convey.Convey("Then it should fail with an API error", func() {
				convey.So(errors.Is(err, gateway.ErrAPI), convey.ShouldBeTrue)
			})
		})
	})
}

func TestManagerRenewal(t *testing.T) {
	convey.Convey("Given a logged-in manager", t, func() {
		ctx := context.Background()
		clock := newTestClock()
		mgr, mock := newManagerWithMock(t, clock)

		_, err := mgr.Login(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(mock.LoginCalls(), convey.ShouldEqual, 1)

		convey.Convey("When the token expires", func() {
			clock.Advance(2 * time.Hour)

			tok, terr := mgr.Token(ctx)

			convey.Convey("Then exactly one refresh call should renew it", func() {
				convey.So(terr, convey.ShouldBeNil)
				convey.So(tok.ExpiresAt.After(clock.Now()), convey.ShouldBeTrue)
				convey.So(mock.RefreshCalls(), convey.ShouldEqual, 1)
				convey.So(mock.LoginCalls(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the token is inside the expiry margin", func() {
			// Tokens live one hour; the default margin is five minutes.
			clock.Advance(57 * time.Minute)

			_, terr := mgr.Token(ctx)

			convey.Convey("Then it should renew eagerly", func() {
				convey.So(terr, convey.ShouldBeNil)
				convey.So(mock.RefreshCalls(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the refresh is rejected server-side", func() {
			clock.Advance(2 * time.Hour)
			mock.FailRefresh(true)

			tok, terr := mgr.Token(ctx)

			convey.Convey("Then it should fall back to a full login", func() {
				convey.So(terr, convey.ShouldBeNil)
				convey.So(tok.Access, convey.ShouldNotBeEmpty)
				convey.So(mock.RefreshCalls(), convey.ShouldEqual, 1)
				convey.So(mock.LoginCalls(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When both refresh and re-login fail", func() {
			clock.Advance(2 * time.Hour)
			mock.FailRefresh(true)
			mock.FailLogin(true)

			_, terr := mgr.Token(ctx)

			convey.Convey("Then it should surface an auth error", func() {
				convey.So(errors.Is(terr, gateway.ErrAuth), convey.ShouldBeTrue)
			})

			convey.Convey("Then a later renewal should recover once the gateway does", func() {
				convey.So(terr, convey.ShouldNotBeNil)
				mock.FailRefresh(false)
				mock.FailLogin(false)

				tok, rerr := mgr.Token(ctx)
				convey.So(rerr, convey.ShouldBeNil)
				convey.So(tok.Access, convey.ShouldNotBeEmpty)
			})
		})
	})
}

func TestManagerConcurrentRenewal(t *testing.T) {
	convey.Convey("Given a manager with an expired token", t, func() {
		ctx := context.Background()
		clock := newTestClock()
		mgr, mock := newManagerWithMock(t, clock)

		_, err := mgr.Login(ctx)
		convey.So(err, convey.ShouldBeNil)
		clock.Advance(2 * time.Hour)

		convey.Convey("When many goroutines request a token at once", func() {
			const callers = 32

			var wg sync.WaitGroup
			errs := make([]error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = mgr.Token(ctx)
				}(i)
			}
			wg.Wait()

			convey.Convey("Then all callers should succeed from a single renewal", func() {
				for _, e := range errs {
					convey.So(e, convey.ShouldBeNil)
				}
				convey.So(mock.RefreshCalls(), convey.ShouldEqual, 1)
				convey.So(mock.LoginCalls(), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestManagerInvalidate(t *testing.T) {
	convey.Convey("Given a manager with a fresh token", t, func() {
		ctx := context.Background()
		clock := newTestClock()
		mgr, mock := newManagerWithMock(t, clock)

		first, err := mgr.Login(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the token is invalidated", func() {
			mgr.Invalidate()

			tok, terr := mgr.Token(ctx)

			convey.Convey("Then the next Token call should renew via refresh", func() {
				convey.So(terr, convey.ShouldBeNil)
				convey.So(tok.Access, convey.ShouldNotEqual, first.Access)
				convey.So(mock.RefreshCalls(), convey.ShouldEqual, 1)
				convey.So(mock.LoginCalls(), convey.ShouldEqual, 1)
			})
		})
	})
}
