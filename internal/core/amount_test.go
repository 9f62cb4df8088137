package core_test

import (
	"encoding/json"
	"testing"

	"invoizo/internal/core"
)

func TestAmount_UnmarshalIsLenient(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`12.5`, "12.5"},
		{`"12.5"`, "12.5"},
		{`"  300 "`, "300"},
		{`"12.5kg"`, "12.5"},
		{`"abc"`, "0"},
		{`""`, "0"},
		{`null`, "0"},
		{`true`, "0"},
		{`{"x":1}`, "0"},
		{`-4`, "-4"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var got struct {
				V core.Amount `json:"v"`
			}
			if err := json.Unmarshal([]byte(`{"v":`+tt.raw+`}`), &got); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.raw, err)
			}
			assertAmount(t, tt.raw, got.V, tt.want)
		})
	}
}

func TestAmount_MarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(struct {
		V core.Amount `json:"v"`
	}{V: amt("1000.50")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"v":1000.5}` {
		t.Errorf("want plain number, got %s", b)
	}
}

func TestProduct_PiecesPerCase(t *testing.T) {
	tests := []struct {
		packaging string
		want      string
	}{
		{"12", "12"},
		{"24 pcs", "24"},
		{"", "1"},
		{"box", "1"},
		{"0", "1"},
	}
	for _, tt := range tests {
		got := core.Product{Packaging: tt.packaging}.PiecesPerCase()
		assertAmount(t, "packaging "+tt.packaging, got, tt.want)
	}
}
