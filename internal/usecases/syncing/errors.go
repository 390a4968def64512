package syncing

import "errors"

var (
	// ErrEvaluationSkipped marca o resultado de um ciclo sem métricas novas:
	// os alertas não foram avaliados
	ErrEvaluationSkipped = errors.New("avaliação de alertas ignorada: sem métricas neste ciclo")
	ErrSyncInProgress    = errors.New("sincronização já em andamento para a campanha")
	ErrCampaignNotFound  = errors.New("campanha não encontrada")
	ErrCampaignNotActive = errors.New("campanha não está ativa")
)
