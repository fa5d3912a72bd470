package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aieduca/biaslab/internal/screen"
)

type stubScreen struct {
	title   string
	inits   int
	updates int
}

func (s *stubScreen) Init() tea.Cmd { s.inits++; return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	s.updates++
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func titles(r *Router) []string {
	out := make([]string, len(r.stack))
	for i, s := range r.stack {
		out[i] = s.Title()
	}
	return out
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.Msg
		want []string
	}{
		{"push", []tea.Msg{PushScreenMsg{&stubScreen{title: "simulator"}}}, []string{"home", "simulator"}},
		{"push then pop", []tea.Msg{PushScreenMsg{&stubScreen{title: "simulator"}}, PopScreenMsg{}}, []string{"home"}},
		{"pop keeps the root", []tea.Msg{PopScreenMsg{}, PopScreenMsg{}}, []string{"home"}},
		{"replace root", []tea.Msg{ReplaceScreenMsg{&stubScreen{title: "home-2"}}}, []string{"home-2"}},
		{"replace top only", []tea.Msg{
			PushScreenMsg{&stubScreen{title: "simulator"}},
			ReplaceScreenMsg{&stubScreen{title: "result"}},
		}, []string{"home", "result"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubScreen{title: "home"})
			for _, msg := range tt.msgs {
				r.Update(msg)
			}
			got := titles(r)
			if len(got) != len(tt.want) {
				t.Fatalf("stack = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("stack = %v, want %v", got, tt.want)
				}
			}
			if r.Depth() != len(tt.want) || r.Active().Title() != tt.want[len(tt.want)-1] {
				t.Fatalf("depth %d active %q", r.Depth(), r.Active().Title())
			}
		})
	}
}

func TestNewScreensAreInitialized(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	pushed := &stubScreen{title: "library"}
	replaced := &stubScreen{title: "case"}

	r.Push(pushed)
	r.Replace(replaced)

	if pushed.inits != 1 || replaced.inits != 1 {
		t.Fatalf("inits: pushed=%d replaced=%d, want 1 each", pushed.inits, replaced.inits)
	}
}

func TestOtherMessagesGoToActiveScreen(t *testing.T) {
	home := &stubScreen{title: "home"}
	top := &stubScreen{title: "dashboard"}
	r := New(home)
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})

	if top.updates != 1 || home.updates != 0 {
		t.Fatalf("updates: top=%d home=%d", top.updates, home.updates)
	}
}
