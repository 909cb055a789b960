package domain

import "errors"

var (
	ErrAssetNotFound   = errors.New("asset not found")
	ErrInvalidAsset    = errors.New("invalid asset")
	ErrDuplicateAsset  = errors.New("asset with the same category and symbol already exists")
	ErrAssetReferenced = errors.New("asset is referenced by ledger records")
)
