package dub

import (
	"fmt"
	"reflect"
	"testing"
)

// parseCommand parses a line that must hold exactly one command.
func parseCommand(input string) (Command, error) {
	cmds, err := ParseLine(input)
	if err != nil {
		return Command{}, err
	}
	switch len(cmds) {
	case 0:
		return Command{}, fmt.Errorf("empty command")
	case 1:
		return cmds[0], nil
	}
	return Command{}, fmt.Errorf("expected one command, got %d", len(cmds))
}

func TestParse(t *testing.T) {
	type test struct {
		input string
		want  Command
	}
	tests := []test{
		{
			input: "emit voice 1 -2.5 0",
			want: Command{
				Name: Identifier("emit"),
				Args: []Node{Identifier("voice"), Int(1), Float(-2.5), Int(0)},
			},
		},
		{
			input: "collect",
			want:  Command{Name: Identifier("collect")},
		},
		{
			input: `load "a/file.wav"`,
			want: Command{
				Name: Identifier("load"),
				Args: []Node{String("a/file.wav")},
			},
		},
		{
			input: `load ""`,
			want: Command{
				Name: Identifier("load"),
				Args: []Node{String("")},
			},
		},
		{
			input: `load "tab\there"`,
			want: Command{
				Name: Identifier("load"),
				Args: []Node{String("tab\there")},
			},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		got, err := parseCommand(test.input)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(test.want, got) {
			t.Errorf("\nwant: %+v\ngot:  %+v", test.want, got)
		}
	}
}

func TestParseLine(t *testing.T) {
	got, err := ParseLine("tone a 440; ; emit a 1 0 0 # left")
	if err != nil {
		t.Fatal(err)
	}
	want := []Command{
		{Name: "tone", Args: []Node{Identifier("a"), Int(440)}},
		{Name: "emit", Args: []Node{Identifier("a"), Int(1), Int(0), Int(0)}},
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("\nwant: %+v\ngot:  %+v", want, got)
	}

	got, err = ParseLine("   # nothing here")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no commands, got %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"1 2",
		`"load" a`,
		"a; b",
	} {
		if _, err := parseCommand(input); err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}

func TestFormat(t *testing.T) {
	args := []Node{String("a b.wav"), Int(2), Float(0.5), Identifier("x"), nil}
	var got []string
	for _, n := range args {
		got = append(got, Format(n))
	}
	if want := []string{`"a b.wav"`, "2", "0.5", "x", ""}; !reflect.DeepEqual(want, got) {
		t.Errorf("want %q, got %q", want, got)
	}
	for _, n := range []Node{Int(3), Float(3)} {
		if v, ok := Number(n); !ok || v != 3 {
			t.Errorf("Number(%#v) = %v, %v", n, v, ok)
		}
	}
	if _, ok := Number(String("3")); ok {
		t.Errorf("string should not be a number")
	}
}
