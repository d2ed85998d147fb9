// Package migrations は発行台帳スキーマのSQLを同梱する。
package migrations

import "embed"

// Files はバイナリに埋め込まれたマイグレーションSQL。
//
//go:embed *.sql
var Files embed.FS
