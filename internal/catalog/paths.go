package catalog

// Path builders for price cells. Each returns the jsonparser key path of a number inside
// the document's raw JSON, suitable for Write.Path.

func (d *Document) productPath(category string, p *Product) []string {
	if d.Layout.IsCategorized() {
		return []string{"categories", category, p.Key}
	}
	if d.flatKey != "" {
		return []string{d.flatKey, indexKey(p.Index)}
	}
	return []string{indexKey(p.Index)}
}

// PricePath addresses a product-level price group
func (d *Document) PricePath(category string, p *Product, group string) []string {
	return append(d.productPath(category, p), "prices", group)
}

// SizePath addresses the scalar price of a size entry
func (d *Document) SizePath(category string, p *Product, s *Size) []string {
	return append(d.productPath(category, p), "sizes", indexKey(s.Index), "prices")
}

// ElementGroupPath addresses an element's scalar price for a group
func (d *Document) ElementGroupPath(category string, p *Product, e *Element, group string) []string {
	if d.Layout.IsCategorized() {
		return append(d.productPath(category, p), "elements", e.Code, group)
	}
	return append(d.productPath(category, p), "elements", indexKey(e.Index), "prices", group)
}

// ElementClassPath addresses an element's price for a group and class
func (d *Document) ElementClassPath(category string, p *Product, e *Element, group, class string) []string {
	return append(d.productPath(category, p), "elements", e.Code, group, class)
}

// ElementPricePath addresses the scalar "price" of a flat-list element
func (d *Document) ElementPricePath(p *Product, e *Element) []string {
	return append(d.productPath("", p), "elements", indexKey(e.Index), "price")
}

// RowPath addresses a price column of a row
func (d *Document) RowPath(sheet string, r *Row, column string) []string {
	return []string{sheet, indexKey(r.Index), column}
}
