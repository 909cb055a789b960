package dto

// PortfolioItem はポートフォリオ一覧・登録APIのレスポンス要素です。
type PortfolioItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

// UpsertPortfolioRequest はポートフォリオ登録APIのリクエストボディです。
type UpsertPortfolioRequest struct {
	Name     string `json:"name" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Timezone string `json:"timezone" binding:"required"`
}
