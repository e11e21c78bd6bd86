// Package web はサーバーサイド描画用のHTMLテンプレートを埋め込みで提供します。
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var embedded embed.FS

// Templates は埋め込まれた全テンプレートをパースして返します。
func Templates() *template.Template {
	return template.Must(template.ParseFS(embedded, "templates/*.html"))
}
