package frame

import (
	"encoding/json"
	"testing"

	"gitlab.com/tinyland/lab/pulsebar/pkg/protocol"
)

func str(s string) *string { return &s }

func texts(blocks []protocol.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.FullText
	}
	return out
}

func TestAssembleWithoutMedia(t *testing.T) {
	blocks := Assemble(Readings{
		Addresses: []string{"10.0.0.2"},
		Time:      "2024-01-01 00:00:00",
	}, DefaultStyle())

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %v", len(blocks), texts(blocks))
	}
	if blocks[0].FullText != "10.0.0.2" || blocks[1].FullText != "2024-01-01 00:00:00" {
		t.Errorf("order = %v, want [network clock]", texts(blocks))
	}
}

func TestAssembleWithMedia(t *testing.T) {
	blocks := Assemble(Readings{
		Title:     str("So What"),
		Addresses: []string{"10.0.0.2"},
		Time:      "2024-01-01 00:00:00",
	}, DefaultStyle())

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	want := []string{"So What", "10.0.0.2", "2024-01-01 00:00:00"}
	for i, w := range want {
		if blocks[i].FullText != w {
			t.Errorf("blocks[%d] = %q, want %q", i, blocks[i].FullText, w)
		}
	}
	if blocks[0].Color == nil || *blocks[0].Color != DefaultMediaColor {
		t.Errorf("media color = %v, want %s", blocks[0].Color, DefaultMediaColor)
	}
}

func TestAssembleEmptyTitleStillEmitsBlock(t *testing.T) {
	blocks := Assemble(Readings{Title: str(""), Time: "t"}, DefaultStyle())
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[0].FullText != "" {
		t.Errorf("media text = %q, want empty", blocks[0].FullText)
	}
}

func TestAssembleJoinsAddresses(t *testing.T) {
	tests := []struct {
		name  string
		addrs []string
		want  string
	}{
		{"none", nil, ""},
		{"empty", []string{}, ""},
		{"one", []string{"192.168.1.5"}, "192.168.1.5"},
		{"many", []string{"192.168.1.5", "2001:db8::1", "10.0.0.2"}, "192.168.1.5 2001:db8::1 10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Assemble(Readings{Addresses: tt.addrs}, DefaultStyle())
			if blocks[0].FullText != tt.want {
				t.Errorf("network text = %q, want %q", blocks[0].FullText, tt.want)
			}
		})
	}
}

func TestAssembleOnlyPopulatesTextColorAndSeparator(t *testing.T) {
	blocks := Assemble(Readings{
		Title:     str("x"),
		Addresses: []string{"10.0.0.2"},
		Time:      "t",
	}, DefaultStyle())

	for i, b := range blocks {
		if b.SeparatorBlockWidth == nil || *b.SeparatorBlockWidth != 20 {
			t.Errorf("blocks[%d] separator_block_width = %v, want 20", i, b.SeparatorBlockWidth)
		}
		stripped := b
		stripped.FullText = ""
		stripped.Color = nil
		stripped.SeparatorBlockWidth = nil
		data, _ := json.Marshal(stripped)
		if string(data) != `{"full_text":""}` {
			t.Errorf("blocks[%d] has extra fields: %s", i, data)
		}
	}
	if blocks[2].Color != nil {
		t.Errorf("clock color = %q, want unset", *blocks[2].Color)
	}
}

func TestAssembleEndToEndJSON(t *testing.T) {
	blocks := Assemble(Readings{
		Addresses: []string{"10.0.0.2"},
		Time:      "2024-01-01 00:00:00",
	}, DefaultStyle())

	data, err := json.Marshal(blocks)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"full_text":"10.0.0.2","color":"#91a4a8","separator_block_width":20},{"full_text":"2024-01-01 00:00:00","separator_block_width":20}]`
	if string(data) != want {
		t.Errorf("frame =\n%s\nwant\n%s", data, want)
	}
}

func TestAssembleOptionalBlocksOrder(t *testing.T) {
	s := DefaultStyle()
	s.TailscaleColor = "#aaaaaa"
	s.ClockColor = "#ffffff"

	blocks := Assemble(Readings{
		Title:     str("song"),
		Addresses: []string{"10.0.0.2"},
		Tailscale: str("ts 100.64.0.1"),
		Load:      str("load 0.10 mem 20%"),
		Time:      "t",
	}, s)

	want := []string{"song", "10.0.0.2", "ts 100.64.0.1", "load 0.10 mem 20%", "t"}
	got := texts(blocks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("blocks[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if blocks[2].Color == nil || *blocks[2].Color != "#aaaaaa" {
		t.Errorf("tailscale color = %v", blocks[2].Color)
	}
	if blocks[3].Color != nil {
		t.Errorf("load color = %q, want unset", *blocks[3].Color)
	}
	if blocks[4].Color == nil || *blocks[4].Color != "#ffffff" {
		t.Errorf("clock color = %v, want #ffffff", blocks[4].Color)
	}
}
