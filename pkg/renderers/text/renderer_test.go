package text

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/render"
	"github.com/goliatone/go-s42/pkg/rendition"
	"github.com/goliatone/go-s42/pkg/rules"
	"github.com/goliatone/go-s42/pkg/testsupport"
)

func TestRenderer_Render(t *testing.T) {
	tpl := testsupport.MustLoadTemplate(t,
		filepath.Join("..", "..", "..", "testdata", "patdl", "S42-6-NL-PATDL.v.2.6.xml"),
		patdl.MustConfig(rules.Builtin()...))
	result, err := rendition.Render(tpl, address.MustFromMap(map[string]string{
		"40.21-1-1": "Dorpsstraat",
		"40.24":     "12",
		"40.13":     "1234AB",
		"40.16":     "Amsterdam",
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	tests := []struct {
		name string
		opts render.RenderOptions
		want string
	}{
		{name: "default break", want: "Dorpsstraat 12\n1234 AB AMSTERDAM"},
		{name: "crlf", opts: render.RenderOptions{LineBreak: "\r\n"}, want: "Dorpsstraat 12\r\n1234 AB AMSTERDAM"},
		{
			name: "recipient",
			opts: render.RenderOptions{Recipient: []string{"J. Jansen"}},
			want: "J. Jansen\nDorpsstraat 12\n1234 AB AMSTERDAM",
		},
	}

	renderer := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := renderer.Render(context.Background(), result, tc.opts)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("want %q, got %q", tc.want, string(got))
			}
		})
	}

	if _, err := renderer.Render(context.Background(), nil, render.RenderOptions{}); err == nil {
		t.Fatalf("expected nil rendition to fail")
	}
}
