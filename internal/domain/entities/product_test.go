package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_HideAndUnhide(t *testing.T) {
	p := Product{"nombre": "Mesa", "stock": int64(3)}

	p.Hide("stock")
	p.Hide("inexistente")
	assert.Equal(t, []string{"nombre"}, p.Fields())
	assert.Equal(t, map[string]any{"stock": int64(3)}, p.Hidden())

	v, ok := p.Unhide("stock")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
	assert.Equal(t, int64(3), p["stock"])
	assert.NotContains(t, p, HiddenFieldsKey)

	_, ok = p.Unhide("stock")
	assert.False(t, ok)
}

func TestProduct_CloneIsDeep(t *testing.T) {
	p := Product{"nombre": "Mesa", HiddenFieldsKey: map[string]any{"color": "rojo"}}

	c := p.Clone()
	c.Hidden()["color"] = "azul"
	c["nombre"] = "Silla"

	assert.Equal(t, "Mesa", p["nombre"])
	assert.Equal(t, "rojo", p.Hidden()["color"])
	assert.Nil(t, Product(nil).Clone())
}

func TestProduct_Equal(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Product
		expected bool
	}{
		{name: "identical", a: Product{"a": "x"}, b: Product{"a": "x"}, expected: true},
		{name: "int and float", a: Product{"n": int64(120)}, b: Product{"n": 120.0}, expected: true},
		{name: "different values", a: Product{"a": "x"}, b: Product{"a": "y"}, expected: false},
		{name: "extra key", a: Product{"a": "x"}, b: Product{"a": "x", "b": "y"}, expected: false},
		{name: "string and number", a: Product{"n": "1"}, b: Product{"n": int64(1)}, expected: false},
		{name: "nested hidden", a: Product{HiddenFieldsKey: map[string]any{"c": int64(1)}}, b: Product{HiddenFieldsKey: map[string]any{"c": 1.0}}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: ""},
		{name: "string", value: "Mesa", expected: "Mesa"},
		{name: "bool", value: true, expected: "true"},
		{name: "int64", value: int64(42), expected: "42"},
		{name: "float", value: 120.5, expected: "120.5"},
		{name: "whole float", value: 120.0, expected: "120"},
		{name: "number", value: json.Number("7.25"), expected: "7.25"},
		{name: "map", value: map[string]any{"a": int64(1)}, expected: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.value))
		})
	}
}

func TestUnmarshalProduct_NormalizesNumbers(t *testing.T) {
	p, err := UnmarshalProduct([]byte(`{"nombre":"Mesa","precio":120.5,"stock":3,"activo":true,"_campos_ocultos":{"peso":2}}`))

	require.NoError(t, err)
	assert.Equal(t, Product{
		"nombre":        "Mesa",
		"precio":        120.5,
		"stock":         int64(3),
		"activo":        true,
		HiddenFieldsKey: map[string]any{"peso": int64(2)},
	}, p)
}

func TestUnmarshalProduct_Invalid(t *testing.T) {
	_, err := UnmarshalProduct([]byte(`[1,2]`))
	require.Error(t, err)

	p, err := UnmarshalProduct([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, p)
}
