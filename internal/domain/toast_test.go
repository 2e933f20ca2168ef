package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

func TestToastRequest_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		variant domain.Variant
		want    domain.Variant
	}{
		{"missing variant defaults", "", domain.VariantDefault},
		{"unknown variant defaults", "warning", domain.VariantDefault},
		{"default kept", domain.VariantDefault, domain.VariantDefault},
		{"destructive kept", domain.VariantDestructive, domain.VariantDestructive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ToastRequest{Title: "x", Variant: tc.variant}.Normalize()
			if got.Variant != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got.Variant)
			}
			if got.Title != "x" {
				t.Fatalf("expected title to be preserved, got %q", got.Title)
			}
		})
	}
}

func TestToastRequest_UnmarshalLenient(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    domain.ToastRequest
		wantErr bool
	}{
		{"all strings", `{"title":"t","description":"d","variant":"destructive"}`,
			domain.ToastRequest{Title: "t", Description: "d", Variant: domain.VariantDestructive}, false},
		{"numeric variant dropped", `{"title":"t","variant":7}`, domain.ToastRequest{Title: "t"}, false},
		{"numeric title dropped", `{"title":5,"description":"d"}`, domain.ToastRequest{Description: "d"}, false},
		{"array description dropped", `{"description":["a"]}`, domain.ToastRequest{}, false},
		{"null fields dropped", `{"title":null,"variant":null}`, domain.ToastRequest{}, false},
		{"unknown keys ignored", `{"duration":100}`, domain.ToastRequest{}, false},
		{"not an object", `[1,2]`, domain.ToastRequest{}, true},
		{"bare string", `"hello"`, domain.ToastRequest{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got domain.ToastRequest
			err := json.Unmarshal([]byte(tc.body), &got)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
