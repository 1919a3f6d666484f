package model

import (
	"reflect"
	"testing"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"", PriorityLow, false},
		{"low", PriorityLow, false},
		{" Medium ", PriorityMedium, false},
		{"HIGH", PriorityHigh, false},
		{"urgent", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriorityNextCycles(t *testing.T) {
	p := PriorityLow
	seen := []Priority{p}
	for i := 0; i < 3; i++ {
		p = p.Next()
		seen = append(seen, p)
	}
	want := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityLow}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("cycle = %v, want %v", seen, want)
	}
	if Priority("bogus").Next() != PriorityLow {
		t.Error("unknown priority should cycle back to low")
	}
}

func TestRichProfileRoundTrip(t *testing.T) {
	tasks := []Task{
		{ID: "a", Name: "Buy milk", Priority: PriorityLow},
		{ID: "b", Name: "File taxes", Description: "before April", Priority: PriorityHigh, Completed: true},
	}
	s, err := ProfileRich.Encode(tasks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := ProfileRich.Decode(s)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("round trip = %+v, want %+v", got, tasks)
	}
}

func TestRichProfileWireNames(t *testing.T) {
	s, err := ProfileRich.Encode([]Task{{ID: "x", Name: "Walk", Priority: PriorityMedium}})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":"x","taskName":"Walk","taskDescription":"","priorityLevel":"medium","isCompleted":false}]`
	if s != want {
		t.Errorf("Encode = %s, want %s", s, want)
	}
}

func TestMinimalProfile(t *testing.T) {
	s, err := ProfileMinimal.Encode([]Task{{ID: "x", Name: "Walk", Description: "dropped", Priority: PriorityHigh, Completed: true}})
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"id":"x","todo":"Walk","isCompleted":true}]`; s != want {
		t.Errorf("Encode = %s, want %s", s, want)
	}
	got, err := ProfileMinimal.Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	want := []Task{{ID: "x", Name: "Walk", Priority: PriorityLow, Completed: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %+v, want %+v", got, want)
	}
}

func TestEncodeNilIsEmptyArray(t *testing.T) {
	for _, p := range []Profile{ProfileRich, ProfileMinimal} {
		s, err := p.Encode(nil)
		if err != nil {
			t.Fatal(err)
		}
		if s != "[]" {
			t.Errorf("%s Encode(nil) = %q, want []", p, s)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := ProfileRich.Decode("{not json"); err == nil {
		t.Error("expected error for malformed value")
	}
	got, err := ProfileRich.Decode("null")
	if err != nil || len(got) != 0 || got == nil {
		t.Errorf("Decode(null) = %v, %v; want empty non-nil slice", got, err)
	}
}

func TestVisible(t *testing.T) {
	tasks := []Task{{ID: "1"}, {ID: "2", Completed: true}, {ID: "3"}}
	if got := Visible(tasks, true); len(got) != 3 {
		t.Errorf("show all: got %d tasks", len(got))
	}
	got := Visible(tasks, false)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("hide completed = %+v", got)
	}
	if len(tasks) != 3 {
		t.Error("Visible must not modify its input")
	}
	d, p := Stats(tasks)
	if d != 1 || p != 2 {
		t.Errorf("Stats = %d, %d", d, p)
	}
}

func TestParseProfile(t *testing.T) {
	if p, err := ParseProfile(""); err != nil || p != ProfileRich {
		t.Errorf("default profile = %q, %v", p, err)
	}
	if p, err := ParseProfile("Minimal"); err != nil || p != ProfileMinimal {
		t.Errorf("ParseProfile(Minimal) = %q, %v", p, err)
	}
	if _, err := ParseProfile("v2"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestDecodeRejectsRecordsWithoutName(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		in      string
	}{
		{"rich data read as minimal", ProfileMinimal, `[{"id":"a","taskName":"Buy milk","isCompleted":false}]`},
		{"minimal data read as rich", ProfileRich, `[{"id":"a","todo":"Buy milk","isCompleted":false}]`},
		{"blank name", ProfileRich, `[{"id":"a","taskName":"   "}]`},
		{"missing id", ProfileMinimal, `[{"todo":"Buy milk"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := tt.profile.Decode(tt.in); err == nil {
				t.Errorf("Decode = %+v, want error", got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	in := Task{ID: "x", Name: "Walk", Description: "park", Priority: PriorityHigh, Completed: true}
	if got := ProfileRich.Normalize(in); got != in {
		t.Errorf("rich Normalize = %+v", got)
	}
	want := Task{ID: "x", Name: "Walk", Priority: PriorityLow, Completed: true}
	if got := ProfileMinimal.Normalize(in); got != want {
		t.Errorf("minimal Normalize = %+v, want %+v", got, want)
	}
	s, err := ProfileMinimal.Encode([]Task{in})
	if err != nil {
		t.Fatal(err)
	}
	back, err := ProfileMinimal.Decode(s)
	if err != nil || len(back) != 1 || back[0] != want {
		t.Errorf("Decode(Encode) = %+v, %v; want %+v", back, err, want)
	}
}
