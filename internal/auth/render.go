package auth

import "github.com/gin-gonic/gin"

// Render はテンプレートを描画します。
// フラッシュメッセージ（あれば消費）と認証済みの識別情報を共通データとして注入します。
func (m *Manager) Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if flash := m.ConsumeFlash(c); flash != nil {
		data["Flash"] = flash
	}
	if identity, ok := m.CurrentIdentity(c); ok {
		data["Identity"] = identity
	}

	c.HTML(status, name, data)
}
