// internal/domain/catalog/entity.go
package catalog

import (
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// ListRequest filters a product listing
type ListRequest struct {
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
	CategoryID string `form:"category_id"`
}

func (r ListRequest) normalized() ListRequest {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return r
}

// ProductPage is a page of products
type ProductPage struct {
	Products []commerce.Product `json:"products"`
	Count    int                `json:"count"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// CategoryTree is a category with its nested children
type CategoryTree struct {
	commerce.Category
	Children []*CategoryTree `json:"children"`
}

// BuildTree nests categories under their parents. Categories whose parent
// is unknown are treated as roots.
func BuildTree(categories []commerce.Category) []*CategoryTree {
	nodes := make(map[string]*CategoryTree, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryTree{Category: c, Children: []*CategoryTree{}}
	}

	roots := []*CategoryTree{}
	for _, c := range categories {
		node := nodes[c.ID]
		if parent, ok := nodes[c.ParentCategoryID]; ok && c.ParentCategoryID != c.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}
