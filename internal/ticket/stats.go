package ticket

import (
	"context"
	"fmt"
	"time"
)

// Contagem is one bucket of an aggregation (status, module, city or day).
type Contagem struct {
	Chave string `gorm:"column:chave" json:"chave"`
	Total int64  `gorm:"column:total" json:"total"`
}

// Estatisticas is the admin dashboard aggregate. Every field tolerates an
// empty database (zero values, empty slices).
type Estatisticas struct {
	TotalChamados    int64 `json:"total_chamados"`
	ChamadosHoje     int64 `json:"chamados_hoje"`
	Chamados7Dias    int64 `json:"chamados_7_dias"`
	Chamados30Dias   int64 `json:"chamados_30_dias"`
	PendentesTecnico int64 `json:"pendentes_tecnico"`
	TotalMensagens   int64 `json:"total_mensagens"`

	// Percentage of feedback-closed chamados the bot resolved.
	TaxaResolucaoBot int `json:"taxa_resolucao_bot"`

	DistanciaMediaKm float64 `json:"distancia_media_km"`

	PorStatus  []Contagem `json:"por_status"`
	PorModulo  []Contagem `json:"por_modulo"`
	TopCidades []Contagem `json:"top_cidades"`
	PorDia     []Contagem `json:"por_dia"`
}

// Estatisticas aggregates the read-side dashboard numbers.
func (s *Store) Estatisticas(ctx context.Context) (*Estatisticas, error) {
	db := s.db.WithContext(ctx)
	stats := &Estatisticas{
		PorStatus:  []Contagem{},
		PorModulo:  []Contagem{},
		TopCidades: []Contagem{},
		PorDia:     []Contagem{},
	}

	now := time.Now()
	hoje := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	counts := []struct {
		dst   *int64
		since time.Time
	}{
		{&stats.ChamadosHoje, hoje},
		{&stats.Chamados7Dias, now.AddDate(0, 0, -7)},
		{&stats.Chamados30Dias, now.AddDate(0, 0, -30)},
	}
	if err := db.Model(&Chamado{}).Count(&stats.TotalChamados).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: total: %w", err)
	}
	for _, c := range counts {
		if err := db.Model(&Chamado{}).Where("criado_em >= ?", c.since).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("ticket: estatísticas: período: %w", err)
		}
	}
	if err := db.Model(&Chamado{}).Where("status = ?", StatusPendenteTecnico).Count(&stats.PendentesTecnico).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: pendentes: %w", err)
	}
	if err := db.Model(&Mensagem{}).Count(&stats.TotalMensagens).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: mensagens: %w", err)
	}

	// Bot resolution rate: bot-resolved over chamados closed by customer
	// feedback (either outcome). Chamados still open or technician-closed
	// don't enter the denominator.
	var comFeedback, resolvidosBot int64
	if err := db.Model(&Chamado{}).
		Where("status IN ?", []Status{StatusResolvido, StatusNaoResolvido}).
		Count(&comFeedback).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: feedback: %w", err)
	}
	if err := db.Model(&Chamado{}).Where("resolvido_bot = ?", true).Count(&resolvidosBot).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: resolvidos bot: %w", err)
	}
	if comFeedback > 0 {
		stats.TaxaResolucaoBot = int(resolvidosBot * 100 / comFeedback)
	}

	if err := db.Model(&Chamado{}).
		Select("COALESCE(AVG(distancia_km), 0)").
		Where("distancia_km IS NOT NULL").
		Scan(&stats.DistanciaMediaKm).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: distância média: %w", err)
	}

	if err := db.Model(&Chamado{}).
		Select("status AS chave, COUNT(*) AS total").
		Group("status").
		Order("total DESC").
		Scan(&stats.PorStatus).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: por status: %w", err)
	}
	if err := db.Model(&Chamado{}).
		Select("modulo AS chave, COUNT(*) AS total").
		Group("modulo").
		Order("total DESC").
		Scan(&stats.PorModulo).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: por módulo: %w", err)
	}
	if err := db.Model(&Chamado{}).
		Select("cidade AS chave, COUNT(*) AS total").
		Where("cidade <> ''").
		Group("cidade").
		Order("total DESC").
		Limit(10).
		Scan(&stats.TopCidades).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: por cidade: %w", err)
	}
	if err := db.Model(&Chamado{}).
		Select("DATE(criado_em) AS chave, COUNT(*) AS total").
		Where("criado_em >= ?", now.AddDate(0, 0, -30)).
		Group("DATE(criado_em)").
		Order("chave ASC").
		Scan(&stats.PorDia).Error; err != nil {
		return nil, fmt.Errorf("ticket: estatísticas: histograma: %w", err)
	}

	return stats, nil
}
