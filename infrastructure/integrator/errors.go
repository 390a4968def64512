package integrator

import (
	"errors"
	"fmt"

	"github.com/vfg2006/live-performance-api/internal/domain"
)

var (
	ErrMissingCredentials  = errors.New("credenciais da plataforma ausentes")
	ErrAuth                = errors.New("credenciais rejeitadas pela plataforma")
	ErrTransient           = errors.New("falha temporária na plataforma")
	ErrUnsupportedPlatform = errors.New("plataforma não suportada")
)

// AdapterError carrega o tipo da falha (Kind) e o erro original da plataforma
type AdapterError struct {
	Kind       error
	Platform   domain.Platform
	CampaignID string
	Err        error
}

func NewAdapterError(kind error, platform domain.Platform, err error) *AdapterError {
	return &AdapterError{
		Kind:     kind,
		Platform: platform,
		Err:      err,
	}
}

func (e *AdapterError) Error() string {
	msg := e.Kind.Error()
	if e.Platform != "" {
		msg = fmt.Sprintf("%s: %s", e.Platform, msg)
	}
	if e.CampaignID != "" {
		msg = fmt.Sprintf("%s (campanha %s)", msg, e.CampaignID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func (e *AdapterError) Is(target error) bool {
	return e.Kind == target
}

// WithCampaign retorna uma cópia do erro associada à campanha
func (e *AdapterError) WithCampaign(campaignID string) *AdapterError {
	c := *e
	c.CampaignID = campaignID
	return &c
}

func MissingCredentials(platform domain.Platform, field string) *AdapterError {
	return NewAdapterError(ErrMissingCredentials, platform, fmt.Errorf("campo obrigatório ausente: %s", field))
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Kind devolve o sentinel que classifica o erro, ou nil se não for de adaptador
func Kind(err error) error {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Kind
	}
	return nil
}

// KindName é usado como label de métricas e nos logs
func KindName(err error) string {
	switch Kind(err) {
	case ErrMissingCredentials:
		return "missing_credentials"
	case ErrAuth:
		return "auth"
	case ErrTransient:
		return "transient"
	case ErrUnsupportedPlatform:
		return "unsupported_platform"
	default:
		return "unknown"
	}
}
