package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type moneyDoc struct {
	Amount decimal.Decimal `bson:"amount"`
}

func TestDecimalCodec_EncodesDecimal128(t *testing.T) {
	reg := NewBSONRegistry()

	raw, err := bson.MarshalWithRegistry(reg, moneyDoc{Amount: decimal.RequireFromString("1098.50")})
	require.NoError(t, err)

	val := bson.Raw(raw).Lookup("amount")
	d128, ok := val.Decimal128OK()
	require.True(t, ok, "amount should be stored as Decimal128")
	assert.Equal(t, "1098.5", d128.String())

	var back moneyDoc
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &back))
	assert.True(t, back.Amount.Equal(decimal.RequireFromString("1098.5")))
}

func TestDecimalCodec_ReadsLegacyNumbers(t *testing.T) {
	reg := NewBSONRegistry()
	d128, err := primitive.ParseDecimal128("12.34")
	require.NoError(t, err)

	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"double", 499.5, "499.5"},
		{"int32", int32(99), "99"},
		{"int64", int64(1099), "1099"},
		{"string", "1199.00", "1199"},
		{"decimal128", d128, "12.34"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"amount": tc.in})
			require.NoError(t, err)

			var doc moneyDoc
			require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &doc))
			assert.True(t, doc.Amount.Equal(decimal.RequireFromString(tc.want)), "got %s", doc.Amount)
		})
	}
}

func TestDecimalCodec_RejectsGarbage(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"amount": "not-a-number"})
	require.NoError(t, err)

	var doc moneyDoc
	assert.Error(t, bson.UnmarshalWithRegistry(NewBSONRegistry(), raw, &doc))
}

func TestProductDocument_NormalizesLegacyImages(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := productDocument{
		ID:     oid,
		Name:   "Linen Shirt",
		Price:  decimal.NewFromInt(1299),
		Images: []string{" ", "https://cdn.example.com/b.jpg"},
		Image:  "https://cdn.example.com/c.jpg",
	}

	p, err := doc.toProduct()
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), p.ID)
	assert.Equal(t, []string{"https://cdn.example.com/b.jpg"}, p.Images)

	doc.ImageURLs = []string{"https://cdn.example.com/a.jpg"}
	p, err = doc.toProduct()
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.PrimaryImage())

	doc.Name = ""
	_, err = doc.toProduct()
	assert.Error(t, err)
}
