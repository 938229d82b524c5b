package pricediff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cenniki/pricelist-service/internal/catalog"
)

func decode(t *testing.T, layout catalog.Layout, raw string) *catalog.Document {
	t.Helper()
	doc, err := catalog.Decode(layout, []byte(raw))
	require.NoError(t, err)
	return doc
}

func TestDiffSinglePriceGroup(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutCategory, `{"categories":{"krzesła":{"X":{"prices":{"Grupa I":100}}}}}`)
	newDoc := decode(t, catalog.LayoutCategory, `{"categories":{"krzesła":{"X":{"prices":{"Grupa I":110}}}}}`)

	res := Diff(oldDoc, newDoc)

	require.Len(t, res.Changes, 1)
	c := res.Changes[0]
	assert.Equal(t, "cat:krzesła/prod:X/grp:Grupa I", c.ID)
	assert.Equal(t, "krzesła", c.Category)
	assert.Equal(t, "X", c.Product)
	assert.Equal(t, "Grupa I", c.PriceGroup)
	assert.Equal(t, 100.0, c.OldPrice)
	assert.Equal(t, 110.0, c.NewPrice)
	assert.Equal(t, 10.0, c.PercentChange)

	assert.Equal(t, Summary{TotalChanges: 1, Increased: 1, AvgChangePercent: 10}, res.Summary)
}

func TestDiffIdentical(t *testing.T) {
	docs := []struct {
		layout catalog.Layout
		raw    string
	}{
		{catalog.LayoutCategory, `{"categories":{"a":{"X":{"prices":{"g":1},"sizes":[{"dimension":"90","prices":2}]}}}}`},
		{catalog.LayoutElements, `{"categories":{"a":{"X":{"elements":{"E":{"g":{"A":1}}}}}}}`},
		{catalog.LayoutFlat, `[{"name":"X","elements":[{"code":"E","price":3}]}]`},
		{catalog.LayoutRows, `{"Arkusz1":[{"MODEL":"X","grupa I":500}]}`},
	}

	for _, tt := range docs {
		t.Run(string(tt.layout), func(t *testing.T) {
			doc := decode(t, tt.layout, tt.raw)
			res := Diff(doc, doc)
			assert.Empty(t, res.Changes)
			assert.Equal(t, 0, res.Summary.TotalChanges)
			assert.Equal(t, 0.0, res.Summary.AvgChangePercent)
		})
	}
}

func TestDiffSizes(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutCategory, `{"categories":{"łóżka":{"L":{"sizes":[
		{"dimension":"90x200","prices":1000},
		{"dimension":"160x200","prices":{"grupa I":1500}},
		{"dimension":"180x200","prices":2000}]}}}}`)
	newDoc := decode(t, catalog.LayoutCategory, `{"categories":{"łóżka":{"L":{"sizes":[
		{"dimension":"180x200","prices":2100},
		{"dimension":"160x200","prices":1600},
		{"dimension":"90x200","prices":1000}]}}}}`)

	res := Diff(oldDoc, newDoc)

	require.Len(t, res.Changes, 1, "compound price shapes are skipped")
	c := res.Changes[0]
	assert.Equal(t, "180x200", c.Dimension)
	assert.Equal(t, "cat:łóżka/prod:L/dim:180x200", c.ID)
	assert.Equal(t, 5.0, c.PercentChange)
}

func TestDiffElements(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutElements, `{"categories":{"sofy":{"S":{"elements":{
		"2R":{"grupa I":100,"grupa II":{"A":200,"B":300}},
		"1F":{"grupa I":50}}}}}}`)
	newDoc := decode(t, catalog.LayoutElements, `{"categories":{"sofy":{"S":{"elements":{
		"2R":{"grupa I":100,"grupa II":{"A":210,"B":300}},
		"1F":{"grupa I":45}}}}}}`)

	res := Diff(oldDoc, newDoc)

	require.Len(t, res.Changes, 2)
	assert.Equal(t, "cat:sofy/prod:S/el:2R/grp:grupa II/cls:A", res.Changes[0].ID)
	assert.Equal(t, 5.0, res.Changes[0].PercentChange)
	assert.Equal(t, "cat:sofy/prod:S/el:1F/grp:grupa I", res.Changes[1].ID)
	assert.Equal(t, -10.0, res.Changes[1].PercentChange)

	assert.Equal(t, 1, res.Summary.Increased)
	assert.Equal(t, 1, res.Summary.Decreased)
	assert.Equal(t, -2.5, res.Summary.AvgChangePercent)
}

func TestDiffFlat(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutFlat, `{"products":[
		{"name":"A","prices":{"p":10},"elements":[{"code":"E1","price":5},{"name":"E2","prices":{"g":7}},{"code":"E3","price":1}]},
		{"MODEL":"B","prices":{"p":3}}]}`)
	newDoc := decode(t, catalog.LayoutFlat, `{"products":[
		{"MODEL":"B","prices":{"p":3}},
		{"name":"A","prices":{"p":12},"elements":[{"code":"E1","price":6},{"name":"E2","prices":{"g":7}},{"code":"E3","prices":{"g":2}}]},
		{"name":"C","prices":{"p":1}}]}`)

	res := Diff(oldDoc, newDoc)

	require.Len(t, res.Changes, 2)
	assert.Equal(t, "prod:A/grp:p", res.Changes[0].ID)
	assert.Equal(t, 20.0, res.Changes[0].PercentChange)
	assert.Equal(t, "prod:A/el:E1", res.Changes[1].ID, "encodings differing across sides are not compared")

	assert.Equal(t, []ProductRef{{Product: "C"}}, res.Structural.Added)
	assert.Empty(t, res.Structural.Removed)
}

func TestDiffRows(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutRows, `{"Arkusz1":[{"MODEL":"M1","grupa I":500,"opis":"a"},{"MODEL":"M2","grupa I":100}]}`)
	newDoc := decode(t, catalog.LayoutRows, `{"Arkusz1":[{"MODEL":"M1","grupa I":450,"opis":"b"}]}`)

	res := Diff(oldDoc, newDoc)

	require.Len(t, res.Changes, 1)
	c := res.Changes[0]
	assert.Equal(t, "M1", c.Product)
	assert.Equal(t, "Arkusz1", c.Category)
	assert.Equal(t, "grupa I", c.PriceGroup)
	assert.Equal(t, -10.0, c.PercentChange)

	assert.Equal(t, []ProductRef{{Category: "Arkusz1", Product: "M2"}}, res.Structural.Removed)
}

func TestDiffStructuralCategories(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutCategory, `{"categories":{"a":{"X":{"prices":{"g":1}}},"b":{"Y":{"prices":{"g":1}}}}}`)
	newDoc := decode(t, catalog.LayoutCategory, `{"categories":{"a":{"X":{"prices":{"g":1}},"Z":{"prices":{"g":1}}}}}`)

	res := Diff(oldDoc, newDoc)

	assert.Empty(t, res.Changes)
	assert.Equal(t, []ProductRef{{Category: "a", Product: "Z"}}, res.Structural.Added)
	assert.Equal(t, []ProductRef{{Category: "b", Product: "Y"}}, res.Structural.Removed)
}

func TestDiffLayoutMismatch(t *testing.T) {
	oldDoc := decode(t, catalog.LayoutRows, `{"Arkusz1":[{"MODEL":"X","grupa I":1}]}`)
	newDoc := decode(t, catalog.LayoutCategory, `{"categories":{"a":{"X":{"prices":{"grupa I":2}}}}}`)

	res := Diff(oldDoc, newDoc)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 0, res.Summary.TotalChanges)
}

func TestDiffNilDocuments(t *testing.T) {
	res := Diff(nil, nil)
	assert.NotNil(t, res.Changes)
	assert.Empty(t, res.Changes)
}
