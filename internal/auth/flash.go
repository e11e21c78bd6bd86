package auth

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// FlashKind はフラッシュメッセージの種別です。
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash は次の描画で一度だけ表示される通知です。
type Flash struct {
	Kind FlashKind
	Text string
}

// SetFlash はフラッシュメッセージをセッションに書き込みます。
// キューではなく1件のみ保持し、後から書いたものが上書きします。
func (m *Manager) SetFlash(c *gin.Context, kind FlashKind, text string) {
	session := sessions.Default(c)
	session.Set(sessionKeyFlashKind, string(kind))
	session.Set(sessionKeyFlashText, text)
	if err := session.Save(); err != nil {
		log.Printf("failed to save flash message: %v", err)
	}
}

// ConsumeFlash はフラッシュメッセージを取り出し、セッションから消去します。
// メッセージが無い場合は nil を返します。
func (m *Manager) ConsumeFlash(c *gin.Context) *Flash {
	session := sessions.Default(c)

	text, ok := session.Get(sessionKeyFlashText).(string)
	if !ok || text == "" {
		return nil
	}
	kind, _ := session.Get(sessionKeyFlashKind).(string)

	session.Delete(sessionKeyFlashKind)
	session.Delete(sessionKeyFlashText)
	if err := session.Save(); err != nil {
		log.Printf("failed to clear flash message: %v", err)
	}

	return &Flash{Kind: FlashKind(kind), Text: text}
}
