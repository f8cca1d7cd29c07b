package backend

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message codes the backend may attach to a response.
const (
	CodeCreateSuccess = "common.create.success"
	CodeUpdateSuccess = "common.update.success"
	CodeDeleteSuccess = "common.delete.success"
	CodeConnected     = "common.connected"
	CodeDisconnected  = "common.disconnected"

	CodeConnectionClosed    = "websocket.error.connection_closed"
	CodeReadLimitExceeded   = "websocket.error.read_limit_exceeded"
	CodeConnectionTimeout   = "websocket.error.connection_timeout"
	CodeConnectionRefused   = "websocket.error.connection_refused"
	CodeNoRoute             = "websocket.error.no_route"
	CodeAuthFailed          = "websocket.error.auth_failed"
	CodeUnknownError        = "websocket.error.unknown_error"
	CodeInvalidCredentials  = "websocket.error.invalid_credentials"
	CodePermissionDenied    = "websocket.error.permission_denied"
	CodeHostUnreachable     = "websocket.error.host_unreachable"
	CodeSSHServiceDown      = "websocket.error.ssh_service_down"
	CodeNetworkError        = "websocket.error.network_error"
	CodeProtocolError       = "websocket.error.protocol_error"
	CodeResourceExhausted   = "websocket.error.resource_exhausted"
	CodeSessionEnded        = "websocket.info.session_ended"
	CodeFingerprintSend     = "websocket.error.failed_to_send_fingerprint_msg"
	CodeFingerprintRead     = "websocket.error.failed_to_read_fingerprint"
	CodeFingerprintParse    = "websocket.error.failed_to_parse_fingerprint"
	CodeFingerprintAdd      = "websocket.error.failed_to_add_fingerprint"
	CodeFingerprintRejected = "websocket.info.user_rejected_fingerprint"
)

// KeyPrefix namespaces backend codes within the message catalog.
const KeyPrefix = "backend."

// Key returns the catalog key for a backend code.
func Key(code string) string {
	return KeyPrefix + code
}

// Translator looks up display text for a catalog key.
type Translator interface {
	Translate(key string) (string, bool)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(key string) (string, bool)

// Translate calls f.
func (f TranslatorFunc) Translate(key string) (string, bool) {
	return f(key)
}

// Translate returns the translation of code, or fallback when code is
// empty or has no translation.
func Translate(tr Translator, code, fallback string) string {
	if tr == nil || strings.TrimSpace(code) == "" {
		return fallback
	}
	if text, ok := tr.Translate(Key(code)); ok && text != "" {
		return text
	}
	return fallback
}

var defaultMessages = map[language.Tag]map[string]string{
	language.English: {
		CodeCreateSuccess:       "Creation successful",
		CodeUpdateSuccess:       "Update successful",
		CodeDeleteSuccess:       "Deletion successful",
		CodeConnected:           "Connected",
		CodeDisconnected:        "Disconnected",
		CodeConnectionClosed:    "Connection closed",
		CodeReadLimitExceeded:   "Connection data exceeded limit",
		CodeConnectionTimeout:   "Connection timeout",
		CodeConnectionRefused:   "Connection refused",
		CodeNoRoute:             "No route to host",
		CodeAuthFailed:          "Authentication failed",
		CodeUnknownError:        "Connection failed",
		CodeInvalidCredentials:  "Invalid credentials",
		CodePermissionDenied:    "Permission denied",
		CodeHostUnreachable:     "Host unreachable",
		CodeSSHServiceDown:      "SSH service down",
		CodeNetworkError:        "Network error",
		CodeProtocolError:       "Protocol error",
		CodeResourceExhausted:   "Server resources exhausted",
		CodeSessionEnded:        "Session ended",
		CodeFingerprintSend:     "Failed to send fingerprint message",
		CodeFingerprintRead:     "Failed to read fingerprint confirmation",
		CodeFingerprintParse:    "Failed to parse fingerprint confirmation",
		CodeFingerprintAdd:      "Failed to add host fingerprint",
		CodeFingerprintRejected: "User rejected host fingerprint",
	},
	language.Chinese: {
		CodeCreateSuccess:       "创建成功",
		CodeUpdateSuccess:       "更新成功",
		CodeDeleteSuccess:       "删除成功",
		CodeConnected:           "已连接",
		CodeDisconnected:        "已断开连接",
		CodeConnectionClosed:    "连接已关闭",
		CodeReadLimitExceeded:   "连接数据超出限制",
		CodeConnectionTimeout:   "连接超时",
		CodeConnectionRefused:   "连接被拒绝",
		CodeNoRoute:             "无法路由到主机",
		CodeAuthFailed:          "认证失败",
		CodeUnknownError:        "连接失败",
		CodeInvalidCredentials:  "凭据无效",
		CodePermissionDenied:    "权限被拒绝",
		CodeHostUnreachable:     "主机不可达",
		CodeSSHServiceDown:      "SSH 服务不可用",
		CodeNetworkError:        "网络错误",
		CodeProtocolError:       "协议错误",
		CodeResourceExhausted:   "服务器资源耗尽",
		CodeSessionEnded:        "会话已结束",
		CodeFingerprintSend:     "发送指纹消息失败",
		CodeFingerprintRead:     "读取指纹确认失败",
		CodeFingerprintParse:    "解析指纹确认失败",
		CodeFingerprintAdd:      "添加主机指纹失败",
		CodeFingerprintRejected: "用户拒绝了主机指纹",
	},
}

// Catalog holds translated backend messages per language. Lookups that
// miss in the requested language fall back to English.
type Catalog struct {
	mu      sync.RWMutex
	builder *catalog.Builder
}

// NewCatalog returns a catalog preloaded with the English and Chinese
// messages for every known code.
func NewCatalog() *Catalog {
	c := &Catalog{builder: catalog.NewBuilder(catalog.Fallback(language.English))}
	for tag, msgs := range defaultMessages {
		for code, text := range msgs {
			// Keys and messages are static; SetString only fails on
			// malformed message selectors.
			_ = c.builder.SetString(tag, Key(code), text)
		}
	}
	return c
}

// Set adds or replaces the message for code in lang.
func (c *Catalog) Set(lang, code, text string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builder.SetString(tag, Key(code), text)
}

// Translator returns a Translator for the given language code, such as
// the preference store's resolved language.
func (c *Catalog) Translator(lang string) Translator {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	chain := []language.Tag{tag}
	if base, conf := tag.Base(); conf != language.No {
		chain = append(chain, language.Make(base.String()))
	}
	chain = append(chain, language.English)

	t := &catalogTranslator{cat: c}
	for _, tag := range chain {
		t.printers = append(t.printers, message.NewPrinter(tag, message.Catalog(c.builder)))
	}
	return t
}

type catalogTranslator struct {
	cat      *Catalog
	printers []*message.Printer
}

// Translate tries the requested language, then its base language, then
// English. A printer that echoes the key back has no message for it.
func (t *catalogTranslator) Translate(key string) (string, bool) {
	t.cat.mu.RLock()
	defer t.cat.mu.RUnlock()
	for _, p := range t.printers {
		if text := p.Sprintf(key); text != key {
			return text, true
		}
	}
	return "", false
}
