package respond

import (
	"regexp"
)

var (
	// 接続文字列内のパスワードパターン（postgres/redis/proxy URL）
	urlCredentialPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)

	// key=value形式のDSNパスワードパターン
	dsnPasswordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// URL埋め込み認証情報のマスク（DSN、Redis、プロキシURL）
	msg = urlCredentialPattern.ReplaceAllString(msg, "://$1:****@")

	// key=value形式のパスワードのマスク
	msg = dsnPasswordPattern.ReplaceAllString(msg, "password=****")

	return msg
}
