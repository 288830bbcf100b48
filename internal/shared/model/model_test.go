package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalPresence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		want    int
	}{
		{"absent", `{}`, false, 0},
		{"null", `{"v":null}`, false, 0},
		{"zero", `{"v":0}`, true, 0},
		{"value", `{"v":7}`, true, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				V Optional[int] `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.wantSet, got.V.Set)
			assert.Equal(t, tt.want, got.V.Value)
		})
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var got struct {
		V Optional[bool] `json:"v"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"v":"yes"}`), &got))
}

func TestOptionalFallbacks(t *testing.T) {
	assert.Equal(t, "old", Optional[string]{}.Or("old"))
	assert.Equal(t, "", Some("").Or("old"))
	assert.Equal(t, "old", Some("").OrNonZero("old"))
	assert.Equal(t, "new", Some("new").OrNonZero("old"))
	assert.False(t, Some(false).Or(true))
}

func TestProductInputDefaults(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Tea","price":5}`), &in))
	assert.Empty(t, in.MissingForCreate())

	p := in.NewProduct()
	assert.Equal(t, "Tea", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 0, p.StockQuantity)
	assert.True(t, p.IsAvailable)
	assert.False(t, p.IsFeatured)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, "", p.ImageURL)
}

func TestProductInputMissingFields(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"description":"x"}`), &in))
	assert.Equal(t, []string{"name", "price"}, in.MissingForCreate())

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Tea","price":0}`), &in))
	assert.Empty(t, in.MissingForCreate())
}

func TestProductInputApply(t *testing.T) {
	orig := Product{
		ID:            1,
		Name:          "Tea",
		Description:   "green",
		Price:         decimal.NewFromInt(5),
		StockQuantity: 10,
		Category:      "drinks",
		ImageURL:      "/uploads/products/a.png",
		IsAvailable:   true,
		IsFeatured:    true,
	}

	t.Run("price only", func(t *testing.T) {
		var in ProductInput
		require.NoError(t, json.Unmarshal([]byte(`{"price":6}`), &in))
		got := in.Apply(orig)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(6)))
		got.Price = orig.Price
		assert.Equal(t, orig, got)
	})

	t.Run("empty strings", func(t *testing.T) {
		var in ProductInput
		require.NoError(t, json.Unmarshal([]byte(`{"name":"","category":"","description":"","image_url":""}`), &in))
		got := in.Apply(orig)
		assert.Equal(t, "Tea", got.Name)
		assert.Equal(t, "drinks", got.Category)
		assert.Equal(t, "", got.Description)
		assert.Equal(t, "", got.ImageURL)
	})

	t.Run("zero values overwrite", func(t *testing.T) {
		var in ProductInput
		require.NoError(t, json.Unmarshal([]byte(`{"stock_quantity":0,"is_available":false,"is_featured":false}`), &in))
		got := in.Apply(orig)
		assert.Equal(t, 0, got.StockQuantity)
		assert.False(t, got.IsAvailable)
		assert.False(t, got.IsFeatured)
	})
}

func TestUserPatchApply(t *testing.T) {
	orig := User{ID: 3, Name: "Ann", Email: "ann@example.com", Role: UserRoleUser}

	var p UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"","role":"admin"}`), &p))
	got := p.Apply(orig)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, UserRoleAdmin, got.Role)
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestUserJSONOmitsPassword(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Name: "A", Email: "a@x.io", PasswordHash: "secret", Role: UserRoleAdmin})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(Product{Price: decimal.RequireFromString("5.50")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":5.5`)
}
