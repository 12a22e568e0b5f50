package conversation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"
)

func TestList_Load(t *testing.T) {
	tests := []struct {
		name    string
		initial []Message
		remote  *testremote
		wantErr error
		want    []Message
	}{
		{
			name:    "ReplacesNotMerges",
			initial: []Message{{Name: "a"}},
			remote: &testremote{
				fetch: func(t *testing.T) ([]Message, error) {
					return []Message{{Name: "b"}, {Name: "c"}}, nil
				},
			},
			want: []Message{{Name: "b"}, {Name: "c"}},
		},
		{
			name:    "FetchErrorKeepsPriorState",
			initial: []Message{{Name: "a"}},
			remote: &testremote{
				fetch: func(t *testing.T) ([]Message, error) {
					return nil, errors.New("connection refused")
				},
			},
			wantErr: ErrFetch,
			want:    []Message{{Name: "a"}},
		},
		{
			name:    "NullConversation",
			initial: []Message{{Name: "a"}},
			remote: &testremote{
				fetch: func(t *testing.T) ([]Message, error) {
					return nil, nil
				},
			},
			want: []Message{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.remote.T = t
			l := New(tt.remote, slogt.New(t))
			l.conversation = tt.initial

			err := l.Load(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Got error %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(l.Messages(), tt.want); diff != "" {
				t.Errorf("Diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestList_Append(t *testing.T) {
	tests := []struct {
		name        string
		initial     []Message
		remote      *testremote
		wantErr     error
		want        []Message
		wantFetches int
		containsLog string
	}{
		{
			name: "OK",
			remote: &testremote{
				post: func(t *testing.T, name string) error {
					if name != "new" {
						t.Errorf("Got name %q, want new", name)
					}
					return nil
				},
				fetch: func(t *testing.T) ([]Message, error) {
					return []Message{{Name: "x"}, {Name: "new"}}, nil
				},
			},
			want:        []Message{{Name: "x"}, {Name: "new"}},
			wantFetches: 1,
		},
		{
			name:    "PostErrorDoesNotReload",
			initial: []Message{{Name: "x"}},
			remote: &testremote{
				post: func(t *testing.T, name string) error {
					return errors.New("something went wrong")
				},
				fetch: func(t *testing.T) ([]Message, error) {
					t.Error("Unexpected fetch after failed post")
					return nil, nil
				},
			},
			wantErr:     ErrSubmit,
			want:        []Message{{Name: "x"}},
			containsLog: "Error adding message",
		},
		{
			name:    "ReloadError",
			initial: []Message{{Name: "x"}},
			remote: &testremote{
				post: func(t *testing.T, name string) error {
					return nil
				},
				fetch: func(t *testing.T) ([]Message, error) {
					return nil, errors.New("something went wrong")
				},
			},
			wantErr:     ErrFetch,
			want:        []Message{{Name: "x"}},
			wantFetches: 1,
			containsLog: "Error fetching conversation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.remote.T = t
			l := New(tt.remote, slog.New(slog.NewTextHandler(buf, nil)))
			if tt.initial != nil {
				l.conversation = tt.initial
			}

			err := l.Append(context.Background(), "new")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Got error %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(l.Messages(), tt.want); diff != "" {
				t.Errorf("Diff (-got +want)\n%s", diff)
			}
			if got := int(tt.remote.fetches.Load()); got != tt.wantFetches {
				t.Errorf("Got %d fetches, want %d", got, tt.wantFetches)
			}
			if s := buf.String(); tt.containsLog != "" && !strings.Contains(s, tt.containsLog) {
				t.Errorf("Log does not contain %q", tt.containsLog)
			}
		})
	}
}

// Overlapping loads are not sequenced; the response that resolves last
// replaces the conversation even when its request was issued first.
func TestList_Load_LastResponseWins(t *testing.T) {
	first := make(chan []Message)
	second := make(chan []Message)
	entered := make(chan struct{})

	var mu sync.Mutex
	calls := 0
	remote := &testremote{
		T: t,
		fetch: func(t *testing.T) ([]Message, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			entered <- struct{}{}
			if n == 1 {
				return <-first, nil
			}
			return <-second, nil
		},
	}
	l := New(remote, slogt.New(t))

	done1 := make(chan error)
	go func() { done1 <- l.Load(context.Background()) }()
	<-entered

	done2 := make(chan error)
	go func() { done2 <- l.Load(context.Background()) }()
	<-entered

	second <- []Message{{Name: "x"}, {Name: "y"}}
	if err := <-done2; err != nil {
		t.Fatal(err)
	}
	first <- []Message{{Name: "x"}}
	if err := <-done1; err != nil {
		t.Fatal(err)
	}

	want := []Message{{Name: "x"}}
	if diff := cmp.Diff(l.Messages(), want); diff != "" {
		t.Errorf("Diff (-got +want)\n%s", diff)
	}
}

func TestList_Messages_ReturnsCopy(t *testing.T) {
	l := New(&testremote{}, slogt.New(t))
	l.conversation = []Message{{Name: "a"}}

	got := l.Messages()
	got[0].Name = "changed"

	if diff := cmp.Diff(l.Messages(), []Message{{Name: "a"}}); diff != "" {
		t.Errorf("Diff (-got +want)\n%s", diff)
	}
}

type testremote struct {
	T       *testing.T
	fetch   func(t *testing.T) ([]Message, error)
	post    func(t *testing.T, name string) error
	fetches atomic.Int32
}

func (r *testremote) FetchConversation(_ context.Context) ([]Message, error) {
	r.fetches.Add(1)
	return r.fetch(r.T)
}

func (r *testremote) PostMessage(_ context.Context, name string) error {
	return r.post(r.T, name)
}
