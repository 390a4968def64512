package metadomain

import (
	"fmt"
	"net/http"
)

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// IsPermissionDenied cobre tokens válidos sem acesso ao objeto consultado
func (e *ErrorResponse) IsPermissionDenied() bool {
	return e.Error.Code == 10 || e.Error.Code == 102 || (e.Error.Code >= 200 && e.Error.Code <= 299)
}

// IsRateLimited cobre os limites de chamadas da Graph API e da Marketing API
func (e *ErrorResponse) IsRateLimited() bool {
	switch e.Error.Code {
	case 4, 17, 32, 613:
		return true
	}
	return e.Error.Code >= 80000 && e.Error.Code <= 80014
}

// RequestError é devolvido pelo client para respostas diferentes de 200
type RequestError struct {
	StatusCode int
	Response   *ErrorResponse
	Body       string
}

func (e *RequestError) Error() string {
	if e.Response != nil && e.Response.Error.Message != "" {
		return fmt.Sprintf("erro na resposta da API. Status: %d, Código: %d, Mensagem: %s",
			e.StatusCode, e.Response.Error.Code, e.Response.Error.Message)
	}
	return fmt.Sprintf("erro na resposta da API. Status: %d, Corpo: %s", e.StatusCode, e.Body)
}

func (e *RequestError) IsAuth() bool {
	if e.StatusCode == http.StatusUnauthorized {
		return true
	}
	return e.Response != nil && (e.Response.IsTokenExpired() || e.Response.IsPermissionDenied())
}

func (e *RequestError) IsTransient() bool {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError {
		return true
	}
	return e.Response != nil && e.Response.IsRateLimited()
}
