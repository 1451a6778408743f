// Package domain contains the catalog's core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes per entity. IDs are opaque strings; the prefix only helps when
// reading logs and URLs.
const (
	PrefixAdmin        = "adm_"
	PrefixFile         = "file_"
	PrefixCategory     = "cat_"
	PrefixCategoryInfo = "cinf_"
	PrefixSubCategory  = "sub_"
	PrefixGroup        = "grp_"
	PrefixField        = "fld_"
	PrefixProduct      = "prd_"
	PrefixBackground   = "bg_"
	PrefixContact      = "ctc_"
	PrefixInfoRequest  = "inq_"
	PrefixReply        = "rpl_"
)

// NewID returns a new identifier with the given prefix.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
