// Package links computes item-to-catalog association rows.
//
// Each item carries one optional primary catalog and any number of
// additional catalogs. The builder turns that into product_catalogs rows
// (primary at sort order 0, additional numbered from 1, primary wins on
// duplicates) and derives summary statistics. The store upserts catalog
// nodes and link rows, parents before children.
package links
