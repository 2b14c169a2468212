package state_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/mdblog/state"
)

func TestSetPageReplacesUnconditionally(t *testing.T) {
	for _, prev := range []int{0, 1, 2, 7, -3} {
		s := state.NewStore(state.WithInitial(state.State{Page: prev}))
		s.Dispatch(state.SetPage{Page: 2})
		require.Equal(t, 2, s.State().Page)
	}
}

func TestSetPageNotClamped(t *testing.T) {
	s := state.NewStore()
	require.Equal(t, 99, s.Dispatch(state.SetPage{Page: 99}).Page)
	require.Equal(t, -1, s.Dispatch(state.SetPage{Page: -1}).Page)
}

func TestSetTagsReplaces(t *testing.T) {
	s := state.NewStore()
	s.Dispatch(state.SetTags{Tags: []string{"Go"}})
	s.Dispatch(state.SetTags{Tags: []string{"Kotlin", "Spring"}})
	require.Equal(t, []string{"Kotlin", "Spring"}, s.State().Tags)
}

func TestSetTagsCopiesInput(t *testing.T) {
	tags := []string{"Go"}
	s := state.NewStore()
	s.Dispatch(state.SetTags{Tags: tags})
	tags[0] = "Rust"
	require.Equal(t, []string{"Go"}, s.State().Tags)

	got := s.State()
	got.Tags[0] = "Zig"
	require.Equal(t, []string{"Go"}, s.State().Tags)
}

func TestToggleTag(t *testing.T) {
	s := state.NewStore()
	s.Dispatch(state.ToggleTag{Tag: "Go"})
	s.Dispatch(state.ToggleTag{Tag: "Spring"})
	require.Equal(t, []string{"Go", "Spring"}, s.State().Tags)

	s.Dispatch(state.ToggleTag{Tag: "Go"})
	require.Equal(t, []string{"Spring"}, s.State().Tags)

	s.Dispatch(state.ClearTags{})
	require.Empty(t, s.State().Tags)
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	before := state.State{Page: 1, Tags: []string{"a", "b"}}
	after := state.Reduce(state.Reduce(before, state.ToggleTag{Tag: "c"}), state.ToggleTag{Tag: "c"})
	require.Equal(t, before, after)
}

func TestSlicesAreIndependent(t *testing.T) {
	s := state.State{Page: 3, Tags: []string{"Go"}}
	require.Equal(t, []string{"Go"}, state.Reduce(s, state.SetPage{Page: 1}).Tags)
	require.Equal(t, 3, state.Reduce(s, state.SetTags{Tags: nil}).Page)
}

func TestFilterChangeResetsPage(t *testing.T) {
	s := state.NewStore()
	s.Dispatch(state.SetPage{Page: 3})
	require.Equal(t, 0, s.Dispatch(state.ToggleTag{Tag: "Go"}).Page)

	s.Dispatch(state.SetPage{Page: 2})
	require.Equal(t, 2, s.Dispatch(state.SetTags{Tags: []string{"Go"}}).Page, "same tags leave the page alone")
}

func TestPageResetDisabled(t *testing.T) {
	s := state.NewStore(state.WithPageReset(false))
	s.Dispatch(state.SetPage{Page: 3})
	require.Equal(t, 3, s.Dispatch(state.ToggleTag{Tag: "Go"}).Page)
}

func TestSubscribe(t *testing.T) {
	s := state.NewStore()

	var got []state.State
	unsubscribe := s.Subscribe(func(prev, next state.State, a state.Action) {
		got = append(got, next)
	})

	s.Dispatch(state.SetPage{Page: 1})
	s.Dispatch(state.ToggleTag{Tag: "Go"})
	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].Page)
	require.Equal(t, state.State{Page: 0, Tags: []string{"Go"}}, got[1])

	unsubscribe()
	s.Dispatch(state.SetPage{Page: 5})
	require.Len(t, got, 2)
}

func TestSubscribeSeesPrevious(t *testing.T) {
	s := state.NewStore()
	s.Dispatch(state.SetPage{Page: 4})

	var prevPage int
	var action state.Action
	s.Subscribe(func(prev, next state.State, a state.Action) {
		prevPage = prev.Page
		action = a
	})
	s.Dispatch(state.SetPage{Page: 1})
	require.Equal(t, 4, prevPage)
	require.Equal(t, state.SetPage{Page: 1}, action)
}

func TestConcurrentDispatch(t *testing.T) {
	s := state.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(state.SetPage{Page: i})
		}(i)
	}
	wg.Wait()
	page := s.State().Page
	require.GreaterOrEqual(t, page, 0)
	require.Less(t, page, 50)
}

func TestRegistryGet(t *testing.T) {
	var created []string
	r := state.NewRegistry(state.OnCreate(func(key string, _ *state.Store) {
		created = append(created, key)
	}))

	a, isNew := r.Get("a")
	require.True(t, isNew)
	a.Dispatch(state.SetPage{Page: 2})

	again, isNew := r.Get("a")
	require.False(t, isNew)
	require.Same(t, a, again)
	require.Equal(t, 2, again.State().Page)

	b, _ := r.Get("b")
	require.Equal(t, 0, b.State().Page)
	require.Equal(t, []string{"a", "b"}, created)
	require.Equal(t, 2, r.Len())

	_, ok := r.Lookup("c")
	require.False(t, ok)
	r.Delete("a")
	_, ok = r.Lookup("a")
	require.False(t, ok)
}

func TestRegistryStoreOptions(t *testing.T) {
	r := state.NewRegistry(state.WithStoreOptions(state.WithPageReset(false)))
	s, _ := r.Get("a")
	s.Dispatch(state.SetPage{Page: 3})
	require.Equal(t, 3, s.Dispatch(state.ToggleTag{Tag: "x"}).Page)

	loose := r.NewStore()
	loose.Dispatch(state.SetPage{Page: 3})
	require.Equal(t, 3, loose.Dispatch(state.ToggleTag{Tag: "x"}).Page)
	require.Equal(t, 1, r.Len())
}

func TestRegistrySweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := state.NewRegistry(state.WithClock(func() time.Time { return now }))

	r.Get("old")
	now = now.Add(20 * time.Minute)
	r.Get("fresh")
	now = now.Add(5 * time.Minute)

	require.Equal(t, 1, r.Sweep(15*time.Minute))
	_, ok := r.Lookup("old")
	require.False(t, ok)
	_, ok = r.Lookup("fresh")
	require.True(t, ok)
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	r := state.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, time.Millisecond, time.Hour)
	}()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
