package ticket

import "time"

// Status is the chamado lifecycle state. aberto is initial; resolvido,
// nao_resolvido and resolvido_tecnico are terminal. Escalation overwrites any
// status (including terminal ones — a closed chamado is implicitly reopened).
type Status string

const (
	StatusAberto           Status = "aberto"
	StatusResolvido        Status = "resolvido"
	StatusNaoResolvido     Status = "nao_resolvido"
	StatusPendenteTecnico  Status = "pendente_tecnico"
	StatusResolvidoTecnico Status = "resolvido_tecnico"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusAberto, StatusResolvido, StatusNaoResolvido, StatusPendenteTecnico, StatusResolvidoTecnico:
		return true
	}
	return false
}

// TipoMensagem is the sender kind of a message row.
type TipoMensagem string

const (
	MensagemUsuario    TipoMensagem = "user"
	MensagemAssistente TipoMensagem = "assistant"
	MensagemFeedback   TipoMensagem = "feedback"
)

// Chamado is one support case, from first message to closure.
type Chamado struct {
	ID              uint64 `gorm:"primaryKey" json:"id"`
	SessionID       string `gorm:"index;not null" json:"session_id"`
	NomeCliente     string `gorm:"type:varchar(255)" json:"nome_cliente,omitempty"`
	TelefoneCliente string `gorm:"type:varchar(32)" json:"telefone_cliente,omitempty"`
	Modulo          string `gorm:"type:varchar(64);index" json:"modulo"`
	Cidade          string `gorm:"type:varchar(128);index" json:"cidade,omitempty"`
	Status          Status `gorm:"type:varchar(32);index;not null" json:"status"`

	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	DistanciaKm *float64 `json:"distancia_km,omitempty"`

	ResolvidoBot     bool `json:"resolvido_bot"`
	TecnicoAcionado  bool `json:"tecnico_acionado"`
	ResolvidoTecnico bool `json:"resolvido_tecnico"`

	ComentarioFeedback string `gorm:"type:text" json:"comentario_feedback,omitempty"`
	ObservacaoTecnico  string `gorm:"type:text" json:"observacao_tecnico,omitempty"`

	CriadoEm     time.Time  `gorm:"autoCreateTime" json:"criado_em"`
	AtualizadoEm time.Time  `gorm:"autoUpdateTime" json:"atualizado_em"`
	FechadoEm    *time.Time `json:"fechado_em,omitempty"`

	Mensagens []Mensagem `gorm:"foreignKey:ChamadoID" json:"mensagens,omitempty"`

	// Filled by listing queries via subselect; not a column.
	TotalMensagens int64 `gorm:"->;-:migration" json:"total_mensagens"`
}

// Mensagem belongs to exactly one chamado. Append-only, immutable once
// written; ordering is by creation time ascending.
type Mensagem struct {
	ID        uint64       `gorm:"primaryKey" json:"id"`
	ChamadoID uint64       `gorm:"index;not null" json:"chamado_id"`
	Tipo      TipoMensagem `gorm:"type:varchar(16);not null" json:"tipo"`
	Conteudo  string       `gorm:"type:text" json:"conteudo"`
	CriadoEm  time.Time    `gorm:"autoCreateTime" json:"criado_em"`
}

// The English pluralizer would migrate this to "mensagems"; the listing
// subselect expects the Portuguese plural.
func (Mensagem) TableName() string { return "mensagens" }

// Contato stores the customer's self-reported contact info, upserted per
// session.
type Contato struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"uniqueIndex;not null" json:"session_id"`
	Nome      string    `gorm:"type:varchar(255)" json:"nome"`
	Telefone  string    `gorm:"type:varchar(32)" json:"telefone"`
	CriadoEm  time.Time `gorm:"autoCreateTime" json:"criado_em"`
}

// Localizacao is an append-only log of location samples per session. It is
// independent of the chamado row; distances are only written back to a
// chamado through an explicit update.
type Localizacao struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index;not null" json:"session_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CriadoEm  time.Time `gorm:"autoCreateTime" json:"criado_em"`
}

func (Localizacao) TableName() string { return "localizacoes" }

// Evento is the operational event log written best-effort on every state
// transition.
type Evento struct {
	ID       uint64    `gorm:"primaryKey" json:"id"`
	Tipo     string    `gorm:"type:varchar(64);index;not null" json:"tipo"`
	Mensagem string    `gorm:"type:text" json:"mensagem"`
	Payload  string    `gorm:"type:text" json:"payload,omitempty"`
	CriadoEm time.Time `gorm:"autoCreateTime" json:"criado_em"`
}
