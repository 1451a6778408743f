package auth

import (
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Catalog Authorization
// =============================================================================

// CanManageCatalog checks if the caller can modify catalog data, content
// blocks, media and the inbox. Any authenticated admin can.
func CanManageCatalog(ctx Context) bool {
	return ctx.Authenticated && ctx.AdminID != ""
}

// CanViewProduct checks if the caller can see a product.
// Published products are visible to everyone; drafts only to admins.
func CanViewProduct(ctx Context, product domain.Product) bool {
	if product.Published {
		return true
	}
	return CanManageCatalog(ctx)
}

// CanViewBackground checks if the caller can see a content block.
// Active blocks are visible to everyone; inactive ones only to admins.
func CanViewBackground(ctx Context, bg domain.Background) bool {
	if bg.Active {
		return true
	}
	return CanManageCatalog(ctx)
}

// =============================================================================
// Filter Functions
// =============================================================================

// FilterVisibleProducts returns only products the caller can see.
func FilterVisibleProducts(ctx Context, products []domain.Product) []domain.Product {
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if CanViewProduct(ctx, p) {
			result = append(result, p)
		}
	}
	return result
}

// FilterVisibleBackgrounds returns only content blocks the caller can see.
func FilterVisibleBackgrounds(ctx Context, backgrounds []domain.Background) []domain.Background {
	result := make([]domain.Background, 0, len(backgrounds))
	for _, b := range backgrounds {
		if CanViewBackground(ctx, b) {
			result = append(result, b)
		}
	}
	return result
}
