package tracker

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
	"github.com/asyncflow/asyncflow/task"
)

// captureSink records enqueued tasks in order.
type captureSink struct {
	mu    sync.Mutex
	tasks []*task.Task
	err   error
}

func (s *captureSink) Enqueue(t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, t)
	return nil
}

func (s *captureSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.ID
	}
	return out
}

func noop(ctx context.Context, inputs []interface{}) (interface{}, error) {
	return nil, nil
}

func TestRegisterNoInputs(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	tk := task.New("t-1", noop, nil)
	tr.Register(tk)

	if got := sink.ids(); len(got) != 1 || got[0] != "t-1" {
		t.Fatalf("enqueued = %v, want [t-1]", got)
	}
	if tk.Status() != task.StatusReady {
		t.Errorf("Status() = %v, want ready", tk.Status())
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", tr.Pending())
	}
}

func TestRegisterResolvedInputs(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	in := handle.New("h-in")
	in.Resolve(1)

	tk := task.New("t-2", noop, []*handle.Handle{in})
	tr.Register(tk)

	if got := sink.ids(); len(got) != 1 {
		t.Fatalf("enqueued = %v, want one task", got)
	}
}

func TestRegisterWaitsForInputs(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	a := handle.New("h-a")
	b := handle.New("h-b")
	tk := task.New("t-3", noop, []*handle.Handle{a, b})
	tr.Register(tk)

	if len(sink.ids()) != 0 {
		t.Fatal("task with unresolved inputs must not be enqueued")
	}
	if tr.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", tr.Pending())
	}

	a.Resolve(1)
	if len(sink.ids()) != 0 {
		t.Fatal("task must wait for every input, not just one")
	}

	b.Resolve(2)
	if got := sink.ids(); len(got) != 1 || got[0] != "t-3" {
		t.Fatalf("enqueued = %v, want [t-3]", got)
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", tr.Pending())
	}
}

func TestFailedInputAtRegistration(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	in := handle.New("h-bad")
	in.Fail(errors.TaskFailed("t-up", stderrors.New("boom")))

	tk := task.New("t-4", noop, []*handle.Handle{in})
	tr.Register(tk)

	if len(sink.ids()) != 0 {
		t.Fatal("task with failed input must never be enqueued")
	}
	if tk.Status() != task.StatusFailed {
		t.Errorf("Status() = %v, want failed", tk.Status())
	}

	err := tk.Output.Err()
	if !errors.IsDependencyFailure(err) {
		t.Errorf("output error = %v, want dependency failure", err)
	}
}

func TestFailurePropagatesTransitively(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	root := stderrors.New("boom")

	a := handle.New("h-a") // will fail
	b := task.New("t-b", noop, []*handle.Handle{a})
	tr.Register(b)
	c := task.New("t-c", noop, []*handle.Handle{b.Output})
	tr.Register(c)
	d := task.New("t-d", noop, []*handle.Handle{c.Output})
	tr.Register(d)

	a.Fail(errors.TaskFailed("t-a", root))

	for _, tk := range []*task.Task{b, c, d} {
		if tk.Status() != task.StatusFailed {
			t.Errorf("task %s status = %v, want failed", tk.ID, tk.Status())
		}
		err := tk.Output.Err()
		if !errors.IsDependencyFailure(err) {
			t.Errorf("task %s error = %v, want dependency failure", tk.ID, err)
		}
		if !stderrors.Is(err, root) {
			t.Errorf("task %s lost the root cause", tk.ID)
		}
	}
	if len(sink.ids()) != 0 {
		t.Fatalf("enqueued = %v, want none", sink.ids())
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after propagation", tr.Pending())
	}
}

func TestMixedFailureOnlyHitsDependents(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	bad := handle.New("h-bad")
	good := handle.New("h-good")

	dependent := task.New("t-dep", noop, []*handle.Handle{bad})
	tr.Register(dependent)
	unrelated := task.New("t-ok", noop, []*handle.Handle{good})
	tr.Register(unrelated)

	bad.Fail(errors.TaskFailed("t-up", stderrors.New("boom")))
	good.Resolve("fine")

	if got := sink.ids(); len(got) != 1 || got[0] != "t-ok" {
		t.Fatalf("enqueued = %v, want [t-ok]", got)
	}
	if dependent.Status() != task.StatusFailed {
		t.Errorf("dependent status = %v, want failed", dependent.Status())
	}
	if unrelated.Status() != task.StatusReady {
		t.Errorf("unrelated status = %v, want ready", unrelated.Status())
	}
}

func TestDiamond(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	top := handle.New("h-top")
	left := task.New("t-left", noop, []*handle.Handle{top})
	right := task.New("t-right", noop, []*handle.Handle{top})
	tr.Register(left)
	tr.Register(right)
	bottom := task.New("t-bottom", noop, []*handle.Handle{left.Output, right.Output})
	tr.Register(bottom)

	top.Resolve(1)

	// left and right become ready; bottom still waits on their outputs.
	if got := sink.ids(); len(got) != 2 {
		t.Fatalf("enqueued = %v, want left and right", got)
	}
	if bottom.Status() != task.StatusPending {
		t.Errorf("bottom status = %v, want pending", bottom.Status())
	}

	left.Output.Resolve(10)
	right.Output.Resolve(20)

	if got := sink.ids(); len(got) != 3 || got[2] != "t-bottom" {
		t.Fatalf("enqueued = %v, want bottom last", got)
	}
}

func TestDuplicateInputCountedPerEdge(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	in := handle.New("h-dup")
	tk := task.New("t-dup", noop, []*handle.Handle{in, in})
	tr.Register(tk)

	in.Resolve(7)

	if got := sink.ids(); len(got) != 1 {
		t.Fatalf("enqueued = %v, want [t-dup]", got)
	}
}

func TestSinkRejection(t *testing.T) {
	sink := &captureSink{err: stderrors.New("queue closed")}
	tr := New(sink, nil)

	tk := task.New("t-rej", noop, nil)
	tr.Register(tk)

	if tk.Status() != task.StatusFailed {
		t.Errorf("Status() = %v, want failed", tk.Status())
	}
	if err := tk.Output.Err(); !errors.Is(err, errors.ErrCodeEngineClosed) {
		t.Errorf("output error = %v, want ENGINE_CLOSED", err)
	}
}

func TestConcurrentResolutionAndRegistration(t *testing.T) {
	sink := &captureSink{}
	tr := New(sink, nil)

	const n = 200
	inputs := make([]*handle.Handle, n)
	for i := range inputs {
		inputs[i] = handle.New(fmt.Sprintf("h-%d", i))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			tk := task.New(fmt.Sprintf("t-%d", i), noop, []*handle.Handle{inputs[i]})
			tr.Register(tk)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			inputs[i].Resolve(i)
		}
	}()
	wg.Wait()

	if got := len(sink.ids()); got != n {
		t.Fatalf("enqueued %d tasks, want %d", got, n)
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", tr.Pending())
	}
}
