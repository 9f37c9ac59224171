package integration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/app"
	"github.com/GopherJ/xactor/core/service"
	"github.com/GopherJ/xactor/internal/counter"
)

type (
	visit     struct{ Who string }
	visitResp struct {
		Greeting string
		Visitors int
	}
)

// greeter counts visitors through the process-wide counter service.
type greeter struct{}

func (g *greeter) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.HandleRequest[visit, visitResp](func(hc actor.HandlerCtx, v visit) (*visitResp, error) {
			addr, err := service.FromRegistry[counter.Counter](hc)
			if err != nil {
				return nil, err
			}
			n, err := counter.Add(hc, addr, 1)
			if err != nil {
				return nil, err
			}
			return &visitResp{Greeting: "hello " + v.Who, Visitors: n}, nil
		}),
	}
}

// TestIntegration runs everything against the process-wide registry, so it
// is the only test of this package touching it.
func TestIntegration(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelInfo)
	ctx := t.Context()

	t.Run("counter scenario", func(t *testing.T) {
		var totals []int
		for range 3 {
			addr, err := service.FromRegistry[counter.Counter](ctx)
			require.NoError(t, err)
			n, err := counter.Add(ctx, addr, 1)
			require.NoError(t, err)
			totals = append(totals, n)
		}
		require.Equal(t, []int{1, 2, 3}, totals)
	})

	t.Run("services resolve each other", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				addr, err := service.FromRegistry[greeter](ctx)
				if !assert.NoError(t, err) {
					return
				}
				resp, err := actor.Request[visit, visitResp](ctx, addr, visit{Who: fmt.Sprint(i)})
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, "hello "+fmt.Sprint(i), resp.Greeting)
			}()
		}
		wg.Wait()

		addr, err := service.FromRegistry[counter.Counter](ctx)
		require.NoError(t, err)
		n, err := counter.Get(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, 3+16, n)

		l, err := service.Default().Len(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, l)
	})
}

func TestIntegration_app_scopes(t *testing.T) {
	a, err := app.Run(app.Config{
		Context: t.Context(),
		Local:   app.LocalConfig{Contexts: 3, Seed: "integration"},
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Shutdown(context.Background())) }()

	shared, err := app.Resolve[counter.Counter](t.Context(), a)
	require.NoError(t, err)

	// Every context gets its own counter, separate from the app-wide one.
	ids := map[string]struct{}{shared.ID(): {}}
	for _, name := range a.Local().Names() {
		for want := 1; want <= 2; want++ {
			err := a.Local().RunOn(t.Context(), name, func(ctx context.Context) error {
				addr, err := service.FromLocalRegistry[counter.Counter](ctx)
				if err != nil {
					return err
				}
				ids[addr.ID()] = struct{}{}
				n, err := counter.Add(ctx, addr, 1)
				if err != nil {
					return err
				}
				if n != want {
					return fmt.Errorf("%s: got %d, want %d", name, n, want)
				}
				return nil
			})
			require.NoError(t, err)
		}
	}
	require.Len(t, ids, 1+len(a.Local().Names()))

	n, err := counter.Get(t.Context(), shared)
	require.NoError(t, err)
	require.Zero(t, n)
}
