package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/linanwx/minichat/screen"
)

var responseRegion = screen.Region{Row: 10, Col: 3, Width: 70, Height: 7}

type fakeSource struct {
	fragments []string
	err       error
	cur       string
	nexts     int
	closed    int
}

func (s *fakeSource) Next() bool {
	s.nexts++
	if len(s.fragments) == 0 {
		return false
	}
	s.cur, s.fragments = s.fragments[0], s.fragments[1:]
	return true
}

func (s *fakeSource) Current() string { return s.cur }
func (s *fakeSource) Err() error      { return s.err }
func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

func TestRenderStripsAccentsWithoutWrapping(t *testing.T) {
	t.Parallel()

	rec := screen.NewRecorder(24, 80)
	src := &fakeSource{fragments: []string{"Ah, l'", "él", "ectricité m'", "ébah", "it fort!"}}

	res, err := Render(rec, responseRegion, src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Ah, l'electricite m'ebahit fort!"
	got := rec.Text(responseRegion)
	if diff := cmp.Diff([]string{want, "", "", "", "", "", ""}, got); diff != "" {
		t.Fatalf("region mismatch (-want +got):\n%s", diff)
	}
	if res.Halted || res.Written != len(want) || res.Cursor.Row != 0 || res.Cursor.Col != len(want) {
		t.Fatalf("Result = %+v", res)
	}
	if src.closed != 1 {
		t.Fatalf("source closed %d times, want 1", src.closed)
	}
}

func TestRenderHaltsWhenRegionIsFull(t *testing.T) {
	t.Parallel()

	rec := screen.NewRecorder(24, 80)
	frags := make([]string, 12)
	for i := range frags {
		frags[i] = strings.Repeat("x", 50)
	}
	src := &fakeSource{fragments: frags}

	res, err := Render(rec, responseRegion, src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !res.Halted {
		t.Fatal("Render() should halt on overflow")
	}
	if res.Written != 7*70 {
		t.Fatalf("Written = %d, want %d", res.Written, 7*70)
	}
	for i, line := range rec.Text(responseRegion) {
		if line != strings.Repeat("x", 70) {
			t.Fatalf("row %d = %q, want 70 x", i, line)
		}
	}
	for row := 1; row <= 24; row++ {
		if row >= responseRegion.Row && row < responseRegion.Bottom() {
			if rec.Cell(row, 2) != ' ' || rec.Cell(row, 73) != ' ' {
				t.Fatalf("row %d written outside the region columns: %q", row, rec.Line(row))
			}
			continue
		}
		if rec.Line(row) != "" {
			t.Fatalf("row %d outside the region was written: %q", row, rec.Line(row))
		}
	}
	if src.nexts != 10 {
		t.Fatalf("Next() called %d times, want 10 (no reads after the halt)", src.nexts)
	}
	if src.closed != 1 {
		t.Fatalf("source closed %d times, want 1", src.closed)
	}
}

func TestRenderNewlines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		frags  []string
		want   []string
		halted bool
	}{
		{
			name:  "leading newline does not consume a row",
			frags: []string{"\nBonjour"},
			want:  []string{"Bonjour", "", "", "", "", "", ""},
		},
		{
			name:  "several leading newlines",
			frags: []string{"\n", "\n\nSalut"},
			want:  []string{"Salut", "", "", "", "", "", ""},
		},
		{
			name:  "newline after text advances",
			frags: []string{"Fort\nbien"},
			want:  []string{"Fort", "bien", "", "", "", "", ""},
		},
		{
			name:  "blank line in the middle",
			frags: []string{"a\n", "\nb"},
			want:  []string{"a", "", "b", "", "", "", ""},
		},
		{
			name:   "too many lines halt",
			frags:  []string{"1\n2\n3\n4\n5\n6\n7\n8\n9"},
			want:   []string{"1", "2", "3", "4", "5", "6", "7"},
			halted: true,
		},
		{
			name:  "controls dropped and tab widened",
			frags: []string{"a\rb\tc\x07"},
			want:  []string{"ab c", "", "", "", "", "", ""},
		},
		{
			name:  "combining mark split across fragments",
			frags: []string{"ne", "́"},
			want:  []string{"ne", "", "", "", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := screen.NewRecorder(24, 80)
			res, err := Render(rec, responseRegion, &fakeSource{fragments: tt.frags})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, rec.Text(responseRegion)); diff != "" {
				t.Fatalf("region mismatch (-want +got):\n%s", diff)
			}
			if res.Halted != tt.halted {
				t.Fatalf("Halted = %v, want %v", res.Halted, tt.halted)
			}
			if rec.Line(responseRegion.Bottom()) != "" {
				t.Fatalf("row below region written: %q", rec.Line(responseRegion.Bottom()))
			}
		})
	}
}

func TestRenderReturnsSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	src := &fakeSource{fragments: []string{"Ah"}, err: boom}
	rec := screen.NewRecorder(24, 80)

	res, err := Render(rec, responseRegion, src)
	if !errors.Is(err, boom) {
		t.Fatalf("Render() error = %v, want %v", err, boom)
	}
	if res.Written != 2 || src.closed != 1 {
		t.Fatalf("Written = %d closed = %d", res.Written, src.closed)
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	rec := screen.NewRecorder(24, 80)
	msg := "Error: " + strings.Repeat("z", 80)
	res := Text(rec, responseRegion, msg)
	if res.Halted || res.Written != len(msg) {
		t.Fatalf("Text() = %+v", res)
	}
	rows := rec.Text(responseRegion)
	if len(rows[0]) != 70 || rows[1] != strings.Repeat("z", 17) {
		t.Fatalf("rows = %q", rows[:2])
	}
}

func TestCursor(t *testing.T) {
	t.Parallel()

	c := NewCursor(responseRegion)
	if !c.Newline() || c.Row != 0 || c.Col != 0 {
		t.Fatalf("newline at top moved the cursor: %+v", c)
	}
	for i := 0; i < 69; i++ {
		c.Advance()
	}
	if row, col := c.Cell(); row != 10 || col != 72 {
		t.Fatalf("Cell() = (%d,%d), want (10,72)", row, col)
	}
	if !c.Advance() || c.Row != 1 || c.Col != 0 {
		t.Fatalf("wrap = %+v, want row 1 col 0", c)
	}
	c.Row = 6
	if c.Newline() {
		t.Fatal("newline past the last row should report out of bounds")
	}
}
