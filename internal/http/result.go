package httpapi

import "net/http"

// Result 健康检查会话与日报查询接口的响应包装（code 2000 成功，-1 失败）
// 旧接口（/ai/chat、/telegram/alert、/eldercare/send-report）不使用此包装，见 writeDetail
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	codeOK   = 2000
	codeFail = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: codeOK, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: codeFail, Type: "error", Message: message}
}

// 业务失败也返回 200，由 code 区分
func writeOk[T any](w http.ResponseWriter, result T) {
	writeJSON(w, http.StatusOK, Ok(result))
}

func writeFail(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Fail(message))
}
