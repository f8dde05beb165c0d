// Package ticket owns the chamado lifecycle and its persistence: creation,
// message appends, feedback, technician escalation/resolution, distance
// annotation and the admin read side. Two concurrent appends to the same
// chamado race on atualizado_em with last-write-wins semantics — acceptable
// for human-paced chat, so no locking is done here.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrChamadoNaoEncontrado = errors.New("ticket: chamado não encontrado")

// Open opens the sqlite database and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("ticket: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Chamado{}, &Mensagem{}, &Contato{}, &Localizacao{}, &Evento{}); err != nil {
		return nil, fmt.Errorf("ticket: migrate: %w", err)
	}
	return db, nil
}

type Store struct {
	db     *gorm.DB
	refLat float64
	refLng float64
}

func NewStore(db *gorm.DB, refLat, refLng float64) *Store {
	return &Store{db: db, refLat: refLat, refLng: refLng}
}

// NovoChamado carries the optional fields of ticket creation. Nil coordinates
// mean "not supplied" — no distance is computed.
type NovoChamado struct {
	SessionID       string
	NomeCliente     string
	TelefoneCliente string
	Modulo          string
	Cidade          string
	Latitude        *float64
	Longitude       *float64
}

// Criar opens a new chamado in aberto. When coordinates are supplied the
// distance to the reference point is computed and stored at creation.
func (s *Store) Criar(ctx context.Context, novo NovoChamado) (*Chamado, error) {
	c := &Chamado{
		SessionID:       novo.SessionID,
		NomeCliente:     novo.NomeCliente,
		TelefoneCliente: novo.TelefoneCliente,
		Modulo:          novo.Modulo,
		Cidade:          novo.Cidade,
		Status:          StatusAberto,
		Latitude:        novo.Latitude,
		Longitude:       novo.Longitude,
	}
	if novo.Latitude != nil && novo.Longitude != nil {
		d := Haversine(*novo.Latitude, *novo.Longitude, s.refLat, s.refLng)
		c.DistanciaKm = &d
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("ticket: criar chamado: %w", err)
	}
	s.registrarEvento(ctx, "chamado_criado", "novo chamado aberto", map[string]any{
		"chamado_id": c.ID, "session_id": c.SessionID, "modulo": c.Modulo,
	})
	return c, nil
}

// AnexarMensagem appends one message row and bumps the chamado's
// atualizado_em. The chamado must exist.
func (s *Store) AnexarMensagem(ctx context.Context, chamadoID uint64, tipo TipoMensagem, conteudo string) error {
	if err := s.exists(ctx, chamadoID); err != nil {
		return err
	}
	msg := &Mensagem{ChamadoID: chamadoID, Tipo: tipo, Conteudo: conteudo}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("ticket: anexar mensagem: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&Chamado{}).
		Where("id = ?", chamadoID).
		Update("atualizado_em", time.Now()).Error; err != nil {
		return fmt.Errorf("ticket: atualizar timestamp: %w", err)
	}
	return nil
}

// RegistrarFeedback closes the chamado from the customer's side. Idempotent:
// re-invocation overwrites prior feedback instead of erroring.
func (s *Store) RegistrarFeedback(ctx context.Context, chamadoID uint64, resolvido bool, comentario string) (*Chamado, error) {
	if err := s.exists(ctx, chamadoID); err != nil {
		return nil, err
	}
	status := StatusNaoResolvido
	if resolvido {
		status = StatusResolvido
	}
	now := time.Now()
	changes := map[string]any{
		"status":              status,
		"resolvido_bot":       resolvido,
		"comentario_feedback": comentario,
		"fechado_em":          now,
		"atualizado_em":       now,
	}
	if err := s.db.WithContext(ctx).Model(&Chamado{}).Where("id = ?", chamadoID).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("ticket: registrar feedback: %w", err)
	}
	if comentario != "" {
		msg := &Mensagem{ChamadoID: chamadoID, Tipo: MensagemFeedback, Conteudo: comentario}
		if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
			return nil, fmt.Errorf("ticket: gravar comentário: %w", err)
		}
	}
	s.registrarEvento(ctx, "feedback_registrado", "feedback do cliente", map[string]any{
		"chamado_id": chamadoID, "resolvido": resolvido,
	})
	return s.get(ctx, chamadoID)
}

// AcionarTecnico escalates the chamado to a human technician. No guard on the
// current status: escalating a closed chamado reopens it by overwrite.
func (s *Store) AcionarTecnico(ctx context.Context, chamadoID uint64) (*Chamado, error) {
	if err := s.exists(ctx, chamadoID); err != nil {
		return nil, err
	}
	changes := map[string]any{
		"status":           StatusPendenteTecnico,
		"tecnico_acionado": true,
		"atualizado_em":    time.Now(),
	}
	if err := s.db.WithContext(ctx).Model(&Chamado{}).Where("id = ?", chamadoID).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("ticket: acionar técnico: %w", err)
	}
	s.registrarEvento(ctx, "tecnico_acionado", "chamado escalado para técnico", map[string]any{
		"chamado_id": chamadoID,
	})
	return s.get(ctx, chamadoID)
}

// ResolverPorTecnico closes the chamado from the technician's side.
func (s *Store) ResolverPorTecnico(ctx context.Context, chamadoID uint64, observacao string) (*Chamado, error) {
	if err := s.exists(ctx, chamadoID); err != nil {
		return nil, err
	}
	now := time.Now()
	changes := map[string]any{
		"status":             StatusResolvidoTecnico,
		"resolvido_tecnico":  true,
		"observacao_tecnico": observacao,
		"fechado_em":         now,
		"atualizado_em":      now,
	}
	if err := s.db.WithContext(ctx).Model(&Chamado{}).Where("id = ?", chamadoID).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("ticket: resolver por técnico: %w", err)
	}
	s.registrarEvento(ctx, "resolvido_tecnico", "chamado resolvido pelo técnico", map[string]any{
		"chamado_id": chamadoID,
	})
	return s.get(ctx, chamadoID)
}

// AlterarStatus sets an arbitrary (valid) status from the admin panel.
func (s *Store) AlterarStatus(ctx context.Context, chamadoID uint64, status Status) (*Chamado, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("ticket: status inválido %q", status)
	}
	if err := s.exists(ctx, chamadoID); err != nil {
		return nil, err
	}
	changes := map[string]any{"status": status, "atualizado_em": time.Now()}
	if err := s.db.WithContext(ctx).Model(&Chamado{}).Where("id = ?", chamadoID).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("ticket: alterar status: %w", err)
	}
	s.registrarEvento(ctx, "status_alterado", "status alterado pelo admin", map[string]any{
		"chamado_id": chamadoID, "status": status,
	})
	return s.get(ctx, chamadoID)
}

// AtualizarLocalizacao recomputes and stores the distance annotation, and
// appends the sample to the location log.
func (s *Store) AtualizarLocalizacao(ctx context.Context, chamadoID uint64, lat, lng float64) error {
	if err := s.exists(ctx, chamadoID); err != nil {
		return err
	}
	d := Haversine(lat, lng, s.refLat, s.refLng)
	changes := map[string]any{"latitude": lat, "longitude": lng, "distancia_km": d}
	if err := s.db.WithContext(ctx).Model(&Chamado{}).Where("id = ?", chamadoID).Updates(changes).Error; err != nil {
		return fmt.Errorf("ticket: atualizar localização: %w", err)
	}
	return nil
}

// RegistrarLocalizacao appends one sample to the per-session location log.
func (s *Store) RegistrarLocalizacao(ctx context.Context, sessionID string, lat, lng float64) error {
	loc := &Localizacao{SessionID: sessionID, Latitude: lat, Longitude: lng}
	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("ticket: registrar localização: %w", err)
	}
	return nil
}

// SalvarContato upserts the customer's contact info keyed by session.
func (s *Store) SalvarContato(ctx context.Context, sessionID, nome, telefone string) error {
	contato := &Contato{SessionID: sessionID, Nome: nome, Telefone: telefone}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"nome", "telefone"}),
	}).Create(contato).Error
	if err != nil {
		return fmt.Errorf("ticket: salvar contato: %w", err)
	}
	return nil
}

// Buscar returns one chamado with its full message history, oldest first.
func (s *Store) Buscar(ctx context.Context, chamadoID uint64) (*Chamado, error) {
	var c Chamado
	err := s.db.WithContext(ctx).
		Preload("Mensagens", func(db *gorm.DB) *gorm.DB {
			return db.Order("criado_em ASC, id ASC")
		}).
		First(&c, chamadoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChamadoNaoEncontrado
		}
		return nil, fmt.Errorf("ticket: buscar chamado: %w", err)
	}
	c.TotalMensagens = int64(len(c.Mensagens))
	return &c, nil
}

// Filtro narrows the admin listing. Zero values mean "no filter". De and Ate
// bound the creation date; Ate is inclusive, covering the whole day.
type Filtro struct {
	Status        Status
	ModuloPrefixo string
	Cidade        string
	De            *time.Time
	Ate           *time.Time
	Limite        int
	Offset        int
}

// Listar returns chamados matching the filter ordered by last update
// descending, plus the unpaginated total. Zero matches yields an empty slice.
func (s *Store) Listar(ctx context.Context, f Filtro) ([]Chamado, int64, error) {
	tx := s.db.WithContext(ctx).Model(&Chamado{})
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.ModuloPrefixo != "" {
		tx = tx.Where("modulo LIKE ?", f.ModuloPrefixo+"%")
	}
	if f.Cidade != "" {
		tx = tx.Where("cidade LIKE ?", "%"+f.Cidade+"%")
	}
	if f.De != nil {
		tx = tx.Where("criado_em >= ?", *f.De)
	}
	if f.Ate != nil {
		tx = tx.Where("criado_em < ?", f.Ate.AddDate(0, 0, 1))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ticket: contar chamados: %w", err)
	}

	limite := f.Limite
	if limite <= 0 {
		limite = 20
	}
	tx = tx.Select("chamados.*, (SELECT COUNT(*) FROM mensagens WHERE mensagens.chamado_id = chamados.id) AS total_mensagens").
		Order("atualizado_em DESC").
		Limit(limite)
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}

	chamados := []Chamado{}
	if err := tx.Find(&chamados).Error; err != nil {
		return nil, 0, fmt.Errorf("ticket: listar chamados: %w", err)
	}
	return chamados, total, nil
}

// PendentesTecnico lists chamados waiting for a technician, most recent first.
func (s *Store) PendentesTecnico(ctx context.Context) ([]Chamado, error) {
	chamados := []Chamado{}
	err := s.db.WithContext(ctx).Model(&Chamado{}).
		Select("chamados.*, (SELECT COUNT(*) FROM mensagens WHERE mensagens.chamado_id = chamados.id) AS total_mensagens").
		Where("status = ?", StatusPendenteTecnico).
		Order("atualizado_em DESC").
		Find(&chamados).Error
	if err != nil {
		return nil, fmt.Errorf("ticket: listar pendentes: %w", err)
	}
	return chamados, nil
}

// Excluir purges a chamado and its messages. Messages are deleted first to
// keep referential integrity.
func (s *Store) Excluir(ctx context.Context, chamadoID uint64) error {
	if err := s.exists(ctx, chamadoID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chamado_id = ?", chamadoID).Delete(&Mensagem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Chamado{}, chamadoID).Error
	})
	if err != nil {
		return fmt.Errorf("ticket: excluir chamado: %w", err)
	}
	s.registrarEvento(ctx, "chamado_excluido", "chamado removido pelo admin", map[string]any{
		"chamado_id": chamadoID,
	})
	return nil
}

func (s *Store) exists(ctx context.Context, chamadoID uint64) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Chamado{}).Where("id = ?", chamadoID).Count(&count).Error; err != nil {
		return fmt.Errorf("ticket: verificar chamado: %w", err)
	}
	if count == 0 {
		return ErrChamadoNaoEncontrado
	}
	return nil
}

func (s *Store) get(ctx context.Context, chamadoID uint64) (*Chamado, error) {
	var c Chamado
	if err := s.db.WithContext(ctx).First(&c, chamadoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChamadoNaoEncontrado
		}
		return nil, fmt.Errorf("ticket: carregar chamado: %w", err)
	}
	return &c, nil
}

// registrarEvento writes one operational event row. Best-effort: a logging
// failure never fails the transition that triggered it.
func (s *Store) registrarEvento(ctx context.Context, tipo, mensagem string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("store: marshal evento %s: %v", tipo, err)
		return
	}
	ev := &Evento{Tipo: tipo, Mensagem: mensagem, Payload: string(data)}
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		log.Printf("store: gravar evento %s: %v", tipo, err)
	}
}
