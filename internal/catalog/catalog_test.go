package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoryDoc = `{"title":"Cennik 2026","categories":{"krzesła":{"X":{"prices":{"grupa I":100,"grupa II":"120,5"},"image":"x.jpg","sizes":[{"dimension":"80x200","prices":300},{"dimension":"90x200","prices":{"a":1}}]},"Y":{"prices":{"grupa I":50}}},"stoły":{}}}`

const elementsDoc = `{"categories":{"sofy":{"S":{"prices":{"grupa I":900},"elements":{"2R":{"grupa I":100,"grupa II":{"A":10,"B":20}}}}}}}`

const flatDoc = `[{"name":"A","prices":{"p":10},"elements":[{"code":"E1","price":5},{"name":"E2","prices":{"g":7}}]},"junk",{"MODEL":"B","prices":{"p":3}}]`

const rowsDoc = `{"Arkusz1":[{"MODEL":"A","grupa I":500,"opis":"x"},{"MODEL":"B","grupa I":"1 250,50","cena":12}],"meta":"kept"}`

func TestDecodeCategory(t *testing.T) {
	doc, err := Decode(LayoutCategory, []byte(categoryDoc))
	require.NoError(t, err)
	require.Len(t, doc.Categories, 2)

	cat, ok := doc.Category("krzesła")
	require.True(t, ok)
	require.Len(t, cat.Products, 2)

	x, ok := cat.Product("X")
	require.True(t, ok)
	v, ok := x.Price("grupa I")
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
	v, ok = x.Price("grupa II")
	assert.True(t, ok)
	assert.Equal(t, 120.5, v)

	require.Len(t, x.Sizes, 2)
	assert.True(t, x.Sizes[0].Scalar)
	assert.Equal(t, 300.0, x.Sizes[0].Price)
	assert.False(t, x.Sizes[1].Scalar)

	p, catName, ok := doc.FindProduct("Y")
	require.True(t, ok)
	assert.Equal(t, "krzesła", catName)
	assert.Equal(t, "Y", p.Key)

	empty, ok := doc.Category("stoły")
	require.True(t, ok)
	assert.Empty(t, empty.Products)
}

func TestDecodeElements(t *testing.T) {
	doc, err := Decode(LayoutElements, []byte(elementsDoc))
	require.NoError(t, err)

	p, _, ok := doc.FindProduct("S")
	require.True(t, ok)
	el, ok := p.Element("2R")
	require.True(t, ok)

	v, ok := el.GroupPrice("grupa I")
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok = el.ClassPrice("grupa II", "B")
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	_, ok = el.ClassPrice("grupa II", "C")
	assert.False(t, ok)
}

func TestDecodeFlat(t *testing.T) {
	doc, err := Decode(LayoutFlat, []byte(flatDoc))
	require.NoError(t, err)
	require.Len(t, doc.Products, 2)

	a := doc.Products[0]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, 0, a.Index)
	require.Len(t, a.Elements, 2)
	assert.True(t, a.Elements[0].HasPrice)
	assert.Equal(t, 5.0, a.Elements[0].Price)
	assert.Equal(t, "E2", a.Elements[1].Code)
	assert.True(t, a.Elements[1].HasPrices)

	b := doc.Products[1]
	assert.Equal(t, "B", b.Name)
	assert.Equal(t, 2, b.Index, "index is the array position, junk entries included")
}

func TestDecodeFlatWrapped(t *testing.T) {
	doc, err := Decode(LayoutFlat, []byte(`{"products":[{"name":"A","prices":{"p":1}}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)

	out, err := doc.WithPrices([]Write{{Path: doc.PricePath("", &doc.Products[0], "p"), Value: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"products":[{"name":"A","prices":{"p":2}}]}`, string(out.Bytes()))
}

func TestDecodeRows(t *testing.T) {
	doc, err := Decode(LayoutRows, []byte(rowsDoc))
	require.NoError(t, err)
	require.Len(t, doc.Sheets, 1)

	sheet, ok := doc.Sheet("Arkusz1")
	require.True(t, ok)
	row, ok := sheet.Row("B")
	require.True(t, ok)

	v, ok := row.Price("grupa I")
	assert.True(t, ok)
	assert.Equal(t, 1250.5, v)
	v, ok = row.Price("cena")
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	a, _ := sheet.Row("A")
	_, ok = a.Price("opis")
	assert.False(t, ok, "non-price columns are not cells")
}

func TestDecodeRowsCustomColumns(t *testing.T) {
	doc, err := Decode(LayoutRows, []byte(rowsDoc), WithRowPriceColumns([]string{"opis", "cena"}))
	require.NoError(t, err)

	sheet, _ := doc.Sheet("Arkusz1")
	a, _ := sheet.Row("A")
	_, ok := a.Price("grupa I")
	assert.False(t, ok)
	assert.True(t, doc.IsPriceColumn("cena"))
}

func TestDecodeShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		raw    string
	}{
		{"category from array", LayoutCategory, `[1,2]`},
		{"elements from string", LayoutElements, `"x"`},
		{"categories not object", LayoutCategory, `{"categories":[]}`},
		{"rows from array", LayoutRows, `[]`},
		{"flat products not array", LayoutFlat, `{"products":{}}`},
		{"flat from number", LayoutFlat, `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.layout, []byte(tt.raw))
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestDecodeMissingBranches(t *testing.T) {
	doc, err := Decode(LayoutCategory, []byte(`{"title":"empty"}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Categories)

	doc, err = Decode(LayoutFlat, []byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Products)
}

func TestDecodeUnknownLayout(t *testing.T) {
	_, err := Decode(Layout("xml"), []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestWithPricesPreservesBytes(t *testing.T) {
	doc, err := Decode(LayoutCategory, []byte(categoryDoc))
	require.NoError(t, err)

	p, cat, ok := doc.FindProduct("X")
	require.True(t, ok)

	out, err := doc.WithPrices([]Write{
		{Path: doc.PricePath(cat, p, "grupa I"), Value: 110},
		{Path: doc.SizePath(cat, p, &p.Sizes[0]), Value: 333.5},
	})
	require.NoError(t, err)

	want := strings.Replace(categoryDoc, `"grupa I":100`, `"grupa I":110`, 1)
	want = strings.Replace(want, `"prices":300`, `"prices":333.5`, 1)
	assert.Equal(t, want, string(out.Bytes()))

	// receiver untouched
	assert.Equal(t, categoryDoc, string(doc.Bytes()))

	x, _, _ := out.FindProduct("X")
	v, _ := x.Price("grupa I")
	assert.Equal(t, 110.0, v)
}

func TestWithPricesElementsAndRows(t *testing.T) {
	doc, err := Decode(LayoutElements, []byte(elementsDoc))
	require.NoError(t, err)
	p, cat, _ := doc.FindProduct("S")
	el, _ := p.Element("2R")

	out, err := doc.WithPrices([]Write{
		{Path: doc.ElementGroupPath(cat, p, el, "grupa I"), Value: 101},
		{Path: doc.ElementClassPath(cat, p, el, "grupa II", "A"), Value: 11},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out.Bytes()), `"2R":{"grupa I":101,"grupa II":{"A":11,"B":20}}`)

	rows, err := Decode(LayoutRows, []byte(rowsDoc))
	require.NoError(t, err)
	sheet, _ := rows.Sheet("Arkusz1")
	row, _ := sheet.Row("A")

	patched, err := rows.WithPrices([]Write{{Path: rows.RowPath("Arkusz1", row, "grupa I"), Value: 450}})
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(rowsDoc, `"grupa I":500`, `"grupa I":450`, 1), string(patched.Bytes()))
}

func TestWithPricesFlatElement(t *testing.T) {
	doc, err := Decode(LayoutFlat, []byte(flatDoc))
	require.NoError(t, err)
	a := &doc.Products[0]

	out, err := doc.WithPrices([]Write{
		{Path: doc.ElementPricePath(a, &a.Elements[0]), Value: 6},
		{Path: doc.ElementGroupPath("", a, &a.Elements[1], "g"), Value: 8},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out.Bytes()), `{"code":"E1","price":6}`)
	assert.Contains(t, string(out.Bytes()), `{"name":"E2","prices":{"g":8}}`)
}

func TestWithPricesMissingPath(t *testing.T) {
	doc, err := Decode(LayoutCategory, []byte(categoryDoc))
	require.NoError(t, err)

	_, err = doc.WithPrices([]Write{{Path: []string{"categories", "krzesła", "Z", "prices", "grupa I"}, Value: 1}})
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"category", LayoutCategory, false},
		{" Element-Grouped ", LayoutElements, false},
		{"list", LayoutFlat, false},
		{"row-table", LayoutRows, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLayout(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"1 250,50", 1250.5, true},
		{"1\u00a0250", 1250, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
