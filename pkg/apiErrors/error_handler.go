package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de autenticação
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrMethodNotAllowed    = "VAL_004" // Método não suportado pela rota

	// Recursos
	ErrResourceNotFound = "RES_001" // Recurso não encontrado

	// Erros de sincronização
	ErrSyncMissingCredentials  = "SYNC_001" // Plataforma sem credenciais configuradas
	ErrSyncPlatformAuth        = "SYNC_002" // Plataforma rejeitou as credenciais
	ErrSyncPlatformUnavailable = "SYNC_003" // Falha transitória na plataforma
	ErrSyncUnsupportedPlatform = "SYNC_004" // Plataforma sem adaptador
	ErrSyncStoreConflict       = "SYNC_005" // Conflito ao gravar a série histórica
	ErrSyncInProgress          = "SYNC_006" // Sincronização já em andamento
	ErrSyncCampaignNotActive   = "SYNC_007" // Campanha não está ativa

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
	ErrCommunication     = "SRV_004" // Erro de comunicação
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:            http.StatusUnauthorized,
	ErrExpiredToken:            http.StatusUnauthorized,
	ErrInsufficientPrivilege:   http.StatusForbidden,
	ErrInvalidRequest:          http.StatusBadRequest,
	ErrMissingRequiredData:     http.StatusBadRequest,
	ErrInvalidFormat:           http.StatusBadRequest,
	ErrMethodNotAllowed:        http.StatusMethodNotAllowed,
	ErrResourceNotFound:        http.StatusNotFound,
	ErrSyncMissingCredentials:  http.StatusInternalServerError,
	ErrSyncPlatformAuth:        http.StatusBadGateway,
	ErrSyncPlatformUnavailable: http.StatusServiceUnavailable,
	ErrSyncUnsupportedPlatform: http.StatusNotImplemented,
	ErrSyncStoreConflict:       http.StatusServiceUnavailable,
	ErrSyncInProgress:          http.StatusConflict,
	ErrSyncCampaignNotActive:   http.StatusConflict,
	ErrInternalServer:          http.StatusInternalServerError,
	ErrDatabaseOperation:       http.StatusInternalServerError,
	ErrExternalService:         http.StatusBadGateway,
	ErrCommunication:           http.StatusServiceUnavailable,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
